package observability

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypePlan        EventType = "plan"
	EventTypeStep        EventType = "step"
	EventTypePolicyCheck EventType = "policy_check"
	EventTypeLLM         EventType = "llm"
	EventTypeResult      EventType = "result"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType
	RunID     string
	Level     zapcore.Level
	Message   string
	Data      any
	Timestamp time.Time
}

// Config controls where and how verbosely events are written. Console
// events go to stderr so stdout stays free for results.
type Config struct {
	Level   string
	File    string
	Console bool
}

// Logger handles structured logging.
type Logger struct {
	zl *zap.Logger
}

// NewLogger builds a production JSON logger writing to cfg.File and, when
// cfg.Console is set or no file is configured, to stderr.
func NewLogger(cfg Config) (*Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Sampling = nil
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}

	zc.OutputPaths = nil
	if cfg.Console || cfg.File == "" {
		zc.OutputPaths = append(zc.OutputPaths, "stderr")
	}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		zc.OutputPaths = append(zc.OutputPaths, cfg.File)
	}

	zl, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &Logger{zl: zl}, nil
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// FromZap wraps an existing zap logger.
func FromZap(zl *zap.Logger) *Logger {
	return &Logger{zl: zl}
}

func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

func (l *Logger) Sync() error {
	return l.zl.Sync()
}

// Log emits a structured event.
func (l *Logger) Log(evt Event) {
	if l == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	msg := evt.Message
	if msg == "" {
		msg = string(evt.Type)
	}

	fields := []zap.Field{
		zap.String("type", string(evt.Type)),
		zap.Time("event_time", evt.Timestamp),
	}
	if evt.RunID != "" {
		fields = append(fields, zap.String("run_id", evt.RunID))
	}
	if evt.Data != nil {
		fields = append(fields, zap.Any("data", evt.Data))
	}

	if ce := l.zl.Check(evt.Level, msg); ce != nil {
		ce.Write(fields...)
	}
}

// Helper methods for common events

func (l *Logger) LogPlan(runID, input string, steps int) {
	l.Log(Event{
		Type:    EventTypePlan,
		RunID:   runID,
		Level:   zapcore.InfoLevel,
		Message: "plan parsed",
		Data: map[string]any{
			"input": input,
			"steps": steps,
		},
	})
}

func (l *Logger) LogStep(runID string, index int, operation, description string, args []float64, result float64) {
	l.Log(Event{
		Type:    EventTypeStep,
		RunID:   runID,
		Level:   zapcore.InfoLevel,
		Message: "step executed",
		Data: map[string]any{
			"index":       index,
			"operation":   operation,
			"description": description,
			"args":        args,
			"result":      result,
		},
	})
}

func (l *Logger) LogStepFailure(runID string, index int, operation string, err error) {
	l.Log(Event{
		Type:    EventTypeStep,
		RunID:   runID,
		Level:   zapcore.ErrorLevel,
		Message: "step failed",
		Data: map[string]any{
			"index":     index,
			"operation": operation,
			"error":     err.Error(),
		},
	})
}

func (l *Logger) LogPolicyCheck(runID, operation, effect, reason string) {
	level := zapcore.DebugLevel
	if effect != "allow" {
		level = zapcore.WarnLevel
	}
	l.Log(Event{
		Type:    EventTypePolicyCheck,
		RunID:   runID,
		Level:   level,
		Message: "policy check",
		Data: map[string]string{
			"operation": operation,
			"effect":    effect,
			"reason":    reason,
		},
	})
}

func (l *Logger) LogLLM(runID, model, prompt, response string) {
	l.Log(Event{
		Type:    EventTypeLLM,
		RunID:   runID,
		Level:   zapcore.DebugLevel,
		Message: "llm exchange",
		Data: map[string]string{
			"model":    model,
			"prompt":   prompt,
			"response": response,
		},
	})
}

func (l *Logger) LogResult(runID string, success bool, stepsExecuted int, detail string) {
	level := zapcore.InfoLevel
	if !success {
		level = zapcore.ErrorLevel
	}
	l.Log(Event{
		Type:    EventTypeResult,
		RunID:   runID,
		Level:   level,
		Message: "run finished",
		Data: map[string]any{
			"success":        success,
			"steps_executed": stepsExecuted,
			"detail":         detail,
		},
	})
}

type runIDKey struct{}

// WithRunID attaches a run identifier to ctx so collaborators that only see
// the context can tag their events.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFrom returns the run identifier stored in ctx, if any.
func RunIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
