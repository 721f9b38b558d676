package gateway

import (
	"context"
	"testing"

	"github.com/rahul/abacus/internal/agent"
	"github.com/rahul/abacus/internal/plan"
	"github.com/stretchr/testify/assert"
)

type stubRunner struct {
	env   agent.Envelope
	calls []string
}

func (s *stubRunner) Run(ctx context.Context, input string) agent.Envelope {
	s.calls = append(s.calls, input)
	return s.env
}

func TestRender(t *testing.T) {
	final := 16.0
	env := agent.Envelope{
		Success:       true,
		StepsExecuted: 2,
		Plan: &plan.Plan{Steps: []plan.Step{
			{Operation: "add", Description: "Add 5 + 3"},
			{Operation: "multiply"},
		}},
		IntermediateResults: []float64{8, 16},
		FinalResult:         &final,
	}

	assert.Equal(t, "✅ Result: 16\n\n0. Add 5 + 3 → 8\n1. multiply → 16", Render(env))

	single := 40.0
	assert.Equal(t, "✅ Result: 40", Render(agent.Envelope{Success: true, StepsExecuted: 1, FinalResult: &single}))
	assert.Equal(t, "🤷 Nothing to calculate.", Render(agent.Envelope{Success: true}))
	assert.Equal(t, "❌ Error: boom", Render(agent.Envelope{Error: "boom"}))
}

func TestHandleText(t *testing.T) {
	r := &stubRunner{env: agent.Envelope{Error: "nope"}}

	assert.Contains(t, HandleText(context.Background(), r, "/help"), "plain words")
	assert.Empty(t, r.calls)

	assert.Equal(t, "❌ Error: nope", HandleText(context.Background(), r, "  add 1 and 2 "))
	assert.Equal(t, []string{"add 1 and 2"}, r.calls)
}
