package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rahul/abacus/internal/fault"
	"github.com/rahul/abacus/internal/governance"
	"github.com/rahul/abacus/internal/operations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticProducer(text string) Producer {
	return ProducerFunc(func(ctx context.Context, input string) (string, error) {
		return text, nil
	})
}

func newTestPipeline(producer Producer, gate Checker) *Pipeline {
	if gate == nil {
		gate = openGate()
	}
	p := NewPipeline(producer, NewInterpreter(operations.NewDefaultRegistry(), gate, nil), nil)
	p.NewRunID = func() string { return "run-test" }
	return p
}

func TestPipeline_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		plan      string
		gate      Checker
		success   bool
		final     float64
		steps     int
		results   []float64
		kind      fault.Kind
		errSubstr string
	}{
		{
			name:    "single add",
			plan:    `{"steps": [{"operation": "add", "args": [15, 25]}]}`,
			success: true, final: 40, steps: 1, results: []float64{40},
		},
		{
			name: "chained reference",
			plan: `{"steps": [
				{"operation": "add", "args": [5, 3]},
				{"operation": "multiply", "args": ["$result_0", 2]}]}`,
			success: true, final: 16, steps: 2, results: []float64{8, 16},
		},
		{
			name:      "division by zero",
			plan:      `{"steps": [{"operation": "divide", "args": [10, 0]}]}`,
			kind:      fault.KindOperationFailed,
			errSubstr: "division by zero",
			results:   []float64{},
		},
		{
			name:      "negative square root",
			plan:      `{"steps": [{"operation": "sqrt", "args": [-4]}]}`,
			kind:      fault.KindOperationFailed,
			errSubstr: "negative",
			results:   []float64{},
		},
		{
			name:      "operation not allowed",
			plan:      `{"steps": [{"operation": "multiply", "args": [2, 3]}]}`,
			gate:      governance.NewGate(governance.Config{Enabled: true, Allowed: []string{"add"}}),
			kind:      fault.KindPermissionDenied,
			errSubstr: "multiply",
			results:   []float64{},
		},
		{
			name:      "reference before any result",
			plan:      `{"steps": [{"operation": "mean", "args": ["$result_0"]}]}`,
			kind:      fault.KindInvalidReference,
			errSubstr: "$result_0",
			results:   []float64{},
		},
		{
			name: "failure keeps earlier results",
			plan: `{"steps": [
				{"operation": "add", "args": [1, 2]},
				{"operation": "divide", "args": ["$result_0", 0]}]}`,
			kind:    fault.KindOperationFailed,
			steps:   1,
			results: []float64{3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestPipeline(staticProducer(tt.plan), tt.gate).Run(context.Background(), "request")

			assert.Equal(t, tt.success, env.Success)
			assert.Equal(t, "request", env.Input)
			assert.Equal(t, tt.steps, env.StepsExecuted)
			assert.Equal(t, tt.results, env.IntermediateResults)
			require.NotNil(t, env.Plan, "the parsed plan is kept for diagnostics")

			if tt.success {
				require.NotNil(t, env.FinalResult)
				assert.Equal(t, tt.final, *env.FinalResult)
				assert.Empty(t, env.Error)
				assert.Empty(t, env.ErrorKind)
				return
			}
			assert.Nil(t, env.FinalResult)
			assert.Equal(t, tt.kind, env.ErrorKind)
			assert.Contains(t, env.Error, tt.errSubstr)
		})
	}
}

func TestPipeline_EmptyPlanIsNoOp(t *testing.T) {
	env := newTestPipeline(staticProducer(`{"steps": []}`), nil).Run(context.Background(), "nothing")

	assert.True(t, env.Success)
	assert.Nil(t, env.FinalResult)
	assert.Zero(t, env.StepsExecuted)
	assert.Equal(t, []float64{}, env.IntermediateResults)
}

func TestPipeline_MalformedPlan(t *testing.T) {
	env := newTestPipeline(staticProducer(`I'd rather not.`), nil).Run(context.Background(), "x")

	assert.False(t, env.Success)
	assert.Equal(t, fault.KindMalformedPlan, env.ErrorKind)
	assert.Nil(t, env.Plan)
}

func TestPipeline_ProducerError(t *testing.T) {
	producer := ProducerFunc(func(ctx context.Context, input string) (string, error) {
		return "", errors.New("connection refused")
	})
	env := newTestPipeline(producer, nil).Run(context.Background(), "x")

	assert.False(t, env.Success)
	assert.Equal(t, fault.KindPlanningFailed, env.ErrorKind)
	assert.Contains(t, env.Error, "connection refused")
}

func TestPipeline_PlanningTimeout(t *testing.T) {
	producer := ProducerFunc(func(ctx context.Context, input string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	p := newTestPipeline(producer, nil)
	p.PlanningTimeout = 10 * time.Millisecond

	env := p.Run(context.Background(), "x")
	assert.False(t, env.Success)
	assert.Equal(t, fault.KindPlanningTimeout, env.ErrorKind)
}

func TestPipeline_PlanningTimeoutWithStubbornProducer(t *testing.T) {
	release := make(chan struct{})
	producer := ProducerFunc(func(ctx context.Context, input string) (string, error) {
		<-release
		return `{"steps": []}`, nil
	})
	p := newTestPipeline(producer, nil)
	p.PlanningTimeout = 10 * time.Millisecond

	env := p.Run(context.Background(), "x")
	close(release)

	assert.Equal(t, fault.KindPlanningTimeout, env.ErrorKind)
}

func TestPipeline_CancelledByCaller(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := newTestPipeline(staticProducer(`{"steps": []}`), nil).Run(ctx, "x")
	assert.False(t, env.Success)
	assert.Equal(t, fault.KindCancelled, env.ErrorKind)
}

func TestPipeline_RecordsStats(t *testing.T) {
	p := newTestPipeline(staticProducer(`{"steps": [{"operation": "sqrt", "args": [-1]}]}`), nil)
	p.Run(context.Background(), "a")
	p.Run(context.Background(), "b")

	snap := p.Stats.Snapshot()
	assert.Equal(t, 2, snap.Runs)
	assert.Equal(t, 2, snap.Failures[string(fault.KindOperationFailed)])
}

func TestEnvelope_JSON(t *testing.T) {
	env := newTestPipeline(staticProducer(`{"steps": [
		{"operation": "add", "args": [5, 3], "description": "add"},
		{"operation": "multiply", "args": ["$result_0", 2]}]}`), nil).Run(context.Background(), "calc")

	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": true,
		"input": "calc",
		"plan": {"steps": [
			{"operation": "add", "args": [5, 3], "description": "add"},
			{"operation": "multiply", "args": ["$result_0", 2]}
		]},
		"steps_executed": 2,
		"intermediate_results": [8, 16],
		"final_result": 16,
		"run_id": "run-test"
	}`, string(data))

	failed := newTestPipeline(staticProducer(`nope`), nil).Run(context.Background(), "calc")
	data, err = json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"input": "calc",
		"steps_executed": 0,
		"intermediate_results": [],
		"final_result": null,
		"error": "malformed plan: no JSON object in producer output",
		"error_kind": "MalformedPlan",
		"run_id": "run-test"
	}`, string(data))
}

func TestEnvelope_String(t *testing.T) {
	v := 16.0
	assert.Equal(t, "16", Envelope{Success: true, FinalResult: &v}.String())
	assert.Equal(t, "no result", Envelope{Success: true}.String())
	assert.Equal(t, "error (MalformedPlan): bad", Envelope{ErrorKind: fault.KindMalformedPlan, Error: "bad"}.String())
}
