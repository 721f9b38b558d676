package agent

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rahul/abacus/internal/fault"
	"github.com/rahul/abacus/internal/observability"
	"github.com/rahul/abacus/internal/plan"
)

// DefaultPlanningTimeout bounds a producer call when none is configured.
const DefaultPlanningTimeout = 60 * time.Second

// Producer turns a natural-language request into plan text. Its output is
// untrusted and is parsed before anything runs.
type Producer interface {
	Produce(ctx context.Context, input string) (string, error)
}

// ProducerFunc adapts a function to Producer.
type ProducerFunc func(ctx context.Context, input string) (string, error)

func (f ProducerFunc) Produce(ctx context.Context, input string) (string, error) {
	return f(ctx, input)
}

// Envelope is the single result shape returned for every request.
type Envelope struct {
	Success             bool       `json:"success"`
	Input               string     `json:"input"`
	Plan                *plan.Plan `json:"plan,omitempty"`
	StepsExecuted       int        `json:"steps_executed"`
	IntermediateResults []float64  `json:"intermediate_results"`
	FinalResult         *float64   `json:"final_result"`
	Error               string     `json:"error,omitempty"`
	ErrorKind           fault.Kind `json:"error_kind,omitempty"`
	RunID               string     `json:"run_id"`
}

// Pipeline plans a request, executes the plan and consolidates the result.
type Pipeline struct {
	Producer        Producer
	Interpreter     *Interpreter
	Logger          *observability.Logger
	Stats           *observability.Stats
	PlanningTimeout time.Duration
	NewRunID        func() string
}

func NewPipeline(producer Producer, interpreter *Interpreter, logger *observability.Logger) *Pipeline {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Pipeline{
		Producer:        producer,
		Interpreter:     interpreter,
		Logger:          logger,
		Stats:           observability.NewStats(),
		PlanningTimeout: DefaultPlanningTimeout,
		NewRunID:        uuid.NewString,
	}
}

// Run never fails: every error is reported inside the returned Envelope.
func (p *Pipeline) Run(ctx context.Context, input string) Envelope {
	runID := p.NewRunID()
	ctx = observability.WithRunID(ctx, runID)

	env := Envelope{
		Input:               input,
		IntermediateResults: []float64{},
		RunID:               runID,
	}

	pl, err := p.plan(ctx, input)
	if err != nil {
		return p.finish(env, err)
	}
	env.Plan = pl
	p.Logger.LogPlan(runID, input, len(pl.Steps))

	results, err := p.Interpreter.Execute(ctx, pl.Steps)
	if results != nil {
		env.IntermediateResults = results
	}
	env.StepsExecuted = len(results)
	if err != nil {
		return p.finish(env, err)
	}

	env.Success = true
	if n := len(results); n > 0 {
		final := results[n-1]
		env.FinalResult = &final
	}
	return p.finish(env, nil)
}

func (p *Pipeline) finish(env Envelope, err error) Envelope {
	var kind fault.Kind
	detail := "null"
	if err != nil {
		kind = fault.KindOf(err)
		if kind == "" {
			kind = fault.KindPlanningFailed
		}
		env.Success = false
		env.FinalResult = nil
		env.Error = err.Error()
		env.ErrorKind = kind
		detail = env.Error
	} else if env.FinalResult != nil {
		detail = strconv.FormatFloat(*env.FinalResult, 'g', -1, 64)
	}

	if p.Stats != nil {
		p.Stats.Record(string(kind))
	}
	p.Logger.LogResult(env.RunID, env.Success, env.StepsExecuted, detail)
	return env
}

type produced struct {
	text string
	err  error
}

// plan calls the producer under the planning timeout and parses its output.
// The call runs on its own goroutine so a producer that ignores ctx cannot
// hold the run past the deadline.
func (p *Pipeline) plan(ctx context.Context, input string) (*plan.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, fault.Wrapf(fault.KindCancelled, err, "run cancelled before planning")
	}

	pctx := ctx
	if p.PlanningTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, p.PlanningTimeout)
		defer cancel()
	}

	done := make(chan produced, 1)
	go func() {
		text, err := p.Producer.Produce(pctx, input)
		done <- produced{text: text, err: err}
	}()

	var out produced
	select {
	case out = <-done:
	case <-pctx.Done():
		return nil, p.planningInterrupted(ctx)
	}

	if out.err != nil {
		if errors.Is(out.err, context.DeadlineExceeded) || errors.Is(out.err, context.Canceled) {
			if pctx.Err() != nil {
				return nil, p.planningInterrupted(ctx)
			}
		}
		if fault.KindOf(out.err) != "" {
			return nil, out.err
		}
		return nil, fault.Wrapf(fault.KindPlanningFailed, out.err, "plan producer failed")
	}

	return plan.Parse(out.text)
}

func (p *Pipeline) planningInterrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fault.Wrapf(fault.KindCancelled, err, "run cancelled during planning")
	}
	return fault.Newf(fault.KindPlanningTimeout, "planning timed out after %s", p.PlanningTimeout)
}

// String renders the envelope outcome on one line.
func (e Envelope) String() string {
	if !e.Success {
		return fmt.Sprintf("error (%s): %s", e.ErrorKind, e.Error)
	}
	if e.FinalResult == nil {
		return "no result"
	}
	return strconv.FormatFloat(*e.FinalResult, 'g', -1, 64)
}
