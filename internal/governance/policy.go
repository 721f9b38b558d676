package governance

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rahul/abacus/internal/fault"
	"github.com/rahul/abacus/internal/observability"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the context of an operation to be evaluated.
type Request struct {
	Operation string
	RunID     string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates operation requests against a set of rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// Denial is an audit record of a rejected operation.
type Denial struct {
	Operation string
	RunID     string
	Reason    string
	At        time.Time
}

// DenialSink receives every denial for auditing.
type DenialSink interface {
	RecordDenial(ctx context.Context, d Denial) error
}

// Config is the allow-list policy. Enabled=false lets every operation
// through and must be chosen explicitly.
type Config struct {
	Enabled bool
	Allowed []string
}

// Gate is an allow-list PolicyEngine over operation names. It never sees
// operation arguments.
type Gate struct {
	enabled bool
	allowed map[string]struct{}
	logger  *observability.Logger
	sinks   []DenialSink
	denials atomic.Uint64
}

type Option func(*Gate)

func WithLogger(l *observability.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

func WithDenialSink(s DenialSink) Option {
	return func(g *Gate) { g.sinks = append(g.sinks, s) }
}

func NewGate(cfg Config, opts ...Option) *Gate {
	g := &Gate{
		enabled: cfg.Enabled,
		allowed: make(map[string]struct{}, len(cfg.Allowed)),
		logger:  observability.NewNopLogger(),
	}
	for _, name := range cfg.Allowed {
		g.allowed[name] = struct{}{}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gate) Evaluate(ctx context.Context, req Request) (Result, error) {
	if !g.enabled {
		return Result{
			Effect: EffectAllow,
			Reason: "Sandbox disabled",
		}, nil
	}

	if _, ok := g.allowed[req.Operation]; !ok {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Operation '%s' is not in the allowed set", req.Operation),
		}, nil
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Listed in allowed operations",
	}, nil
}

// Check returns a PermissionDenied error unless operation may run. Denials
// are counted, logged and forwarded to every sink; sink failures are logged
// and do not change the outcome.
func (g *Gate) Check(ctx context.Context, operation string) error {
	runID := observability.RunIDFrom(ctx)
	res, err := g.Evaluate(ctx, Request{Operation: operation, RunID: runID})
	if err != nil {
		return err
	}
	g.logger.LogPolicyCheck(runID, operation, string(res.Effect), res.Reason)
	if res.Effect == EffectAllow {
		return nil
	}

	g.denials.Add(1)
	d := Denial{Operation: operation, RunID: runID, Reason: res.Reason, At: time.Now()}
	for _, s := range g.sinks {
		if err := s.RecordDenial(ctx, d); err != nil {
			g.logger.Zap().Warn("failed to record denial: " + err.Error())
		}
	}

	return fault.Newf(fault.KindPermissionDenied, "operation %q is not permitted", operation)
}

// Denials returns how many checks have been rejected.
func (g *Gate) Denials() uint64 {
	return g.denials.Load()
}

func (g *Gate) Enabled() bool {
	return g.enabled
}

// Allowed returns the allow-set in sorted order.
func (g *Gate) Allowed() []string {
	names := make([]string, 0, len(g.allowed))
	for name := range g.allowed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
