package plan

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/rahul/abacus/internal/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_WithReferences(t *testing.T) {
	raw := `Sure! Here is the plan:
{
  "steps": [
    {"operation": "add", "args": [5, 3], "description": "Add 5 + 3"},
    {"operation": "multiply", "args": ["$result_0", 2], "description": "Double it"}
  ]
}
Let me know if you need anything else.`

	p, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, p.Steps, 2)

	assert.Equal(t, "add", p.Steps[0].Operation)
	assert.Equal(t, []Argument{Literal(5), Literal(3)}, p.Steps[0].Args)
	assert.Equal(t, "Add 5 + 3", p.Steps[0].Description)

	ref := p.Steps[1].Args[0]
	assert.True(t, ref.IsReference())
	assert.Equal(t, 0, ref.Index())
	assert.Equal(t, Literal(2), p.Steps[1].Args[1])
}

func TestParse_EmptySteps(t *testing.T) {
	p, err := Parse(`{"steps": []}`)
	require.NoError(t, err)
	assert.Empty(t, p.Steps)
}

func TestParse_MissingArgsIsEmpty(t *testing.T) {
	p, err := Parse(`{"steps": [{"operation": "add"}]}`)
	require.NoError(t, err)
	assert.Empty(t, p.Steps[0].Args)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no json", "I cannot help with that"},
		{"invalid json", `{"steps": [}`},
		{"missing steps", `{"plan": []}`},
		{"null steps", `{"steps": null}`},
		{"steps not array", `{"steps": {"operation": "add"}}`},
		{"step not object", `{"steps": [42]}`},
		{"missing operation", `{"steps": [{"args": [1, 2]}]}`},
		{"empty operation", `{"steps": [{"operation": " ", "args": [1]}]}`},
		{"operation not string", `{"steps": [{"operation": 7, "args": [1]}]}`},
		{"args not array", `{"steps": [{"operation": "add", "args": 5}]}`},
		{"null argument", `{"steps": [{"operation": "add", "args": [null]}]}`},
		{"bool argument", `{"steps": [{"operation": "add", "args": [true]}]}`},
		{"numeric string", `{"steps": [{"operation": "add", "args": ["5"]}]}`},
		{"bad token", `{"steps": [{"operation": "add", "args": ["$result_x"]}]}`},
		{"negative token", `{"steps": [{"operation": "add", "args": ["$result_-1"]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, fault.ErrMalformedPlan), "got %v", err)
		})
	}
}

func TestParseToken(t *testing.T) {
	arg, err := ParseToken("$result_12")
	require.NoError(t, err)
	assert.Equal(t, Reference(12), arg)

	_, err = ParseToken("result_1")
	assert.Error(t, err)
}

func TestPlan_MarshalKeepsTokenForm(t *testing.T) {
	p := Plan{Steps: []Step{
		{Operation: "multiply", Args: []Argument{Reference(0), Literal(2.5)}},
	}}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"steps":[{"operation":"multiply","args":["$result_0",2.5]}]}`, string(data))
}

func TestPlan_UnmarshalRoundTrip(t *testing.T) {
	var p Plan
	require.NoError(t, json.Unmarshal([]byte(`{"steps":[{"operation":"add","args":["$result_3",1]}]}`), &p))
	assert.Equal(t, []Argument{Reference(3), Literal(1)}, p.Steps[0].Args)

	assert.Error(t, json.Unmarshal([]byte(`{"steps":[{"operation":"add","args":[true]}]}`), &p))
}
