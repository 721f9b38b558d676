package agent

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rahul/abacus/internal/fault"
	"github.com/rahul/abacus/internal/observability"
	"github.com/rahul/abacus/internal/operations"
	"github.com/rahul/abacus/internal/plan"
)

// Checker decides whether an operation may run.
type Checker interface {
	Check(ctx context.Context, operation string) error
}

// Interpreter executes plan steps in order, feeding earlier results into
// later steps through back-references.
type Interpreter struct {
	Registry operations.Resolver
	Gate     Checker
	Logger   *observability.Logger

	// StepTimeout bounds a single operation. Zero runs operations inline
	// with no budget.
	StepTimeout time.Duration
}

func NewInterpreter(registry operations.Resolver, gate Checker, logger *observability.Logger) *Interpreter {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Interpreter{
		Registry: registry,
		Gate:     gate,
		Logger:   logger,
	}
}

// Execute runs steps and returns one result per step. It stops at the first
// failing step and returns the results produced before it along with the
// error; nothing after the failing step runs.
func (in *Interpreter) Execute(ctx context.Context, steps []plan.Step) ([]float64, error) {
	runID := observability.RunIDFrom(ctx)
	results := make([]float64, 0, len(steps))

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return results, fault.Wrapf(fault.KindCancelled, err, "run cancelled before step %d", i)
		}

		args, value, err := in.executeStep(ctx, i, step, results)
		if err != nil {
			in.Logger.LogStepFailure(runID, i, step.Operation, err)
			return results, err
		}

		results = append(results, value)
		in.Logger.LogStep(runID, i, step.Operation, step.Description, args, value)
	}

	return results, nil
}

func (in *Interpreter) executeStep(ctx context.Context, i int, step plan.Step, results []float64) ([]float64, float64, error) {
	args, err := resolveArgs(i, step.Args, results)
	if err != nil {
		return nil, 0, err
	}

	if err := in.Gate.Check(ctx, step.Operation); err != nil {
		return args, 0, err
	}

	op, err := in.Registry.Resolve(step.Operation)
	if err != nil {
		return args, 0, err
	}

	if !op.Arity().Accepts(len(args)) {
		return args, 0, fault.Newf(fault.KindInsufficientOperands,
			"step %d: %s expects %s operand(s), got %d", i, op.Name(), op.Arity(), len(args))
	}

	res, err := in.invoke(ctx, i, op, args)
	if err != nil {
		return args, 0, err
	}
	if res.Err != nil {
		return args, 0, fault.Wrapf(fault.KindOperationFailed, res.Err, "step %d: %s failed", i, op.Name())
	}
	if math.IsNaN(res.Value) || math.IsInf(res.Value, 0) {
		return args, 0, fault.Newf(fault.KindOperationFailed, "step %d: %s produced a non-finite result", i, op.Name())
	}

	return args, res.Value, nil
}

// resolveArgs substitutes back-references with earlier results. A reference
// must point strictly before step i.
func resolveArgs(i int, args []plan.Argument, results []float64) ([]float64, error) {
	out := make([]float64, len(args))
	for k, a := range args {
		if !a.IsReference() {
			out[k] = a.Value()
			continue
		}
		j := a.Index()
		if j < 0 || j >= i || j >= len(results) {
			return nil, fault.Newf(fault.KindInvalidReference,
				"step %d: invalid reference %s: %d earlier result(s) available", i, a, len(results))
		}
		out[k] = results[j]
	}
	return out, nil
}

func (in *Interpreter) invoke(ctx context.Context, i int, op operations.Operation, args []float64) (operations.Result, error) {
	if in.StepTimeout <= 0 {
		return apply(op, args), nil
	}

	done := make(chan operations.Result, 1)
	go func() {
		done <- apply(op, args)
	}()

	timer := time.NewTimer(in.StepTimeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res, nil
	case <-timer.C:
		return operations.Result{}, fault.Newf(fault.KindStepTimeout,
			"step %d: %s exceeded its %s budget", i, op.Name(), in.StepTimeout)
	case <-ctx.Done():
		return operations.Result{}, fault.Wrapf(fault.KindCancelled, ctx.Err(), "run cancelled during step %d", i)
	}
}

func apply(op operations.Operation, args []float64) (res operations.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = operations.Fail(fmt.Errorf("panic: %v", r))
		}
	}()
	return op.Apply(args)
}
