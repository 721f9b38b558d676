package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rahul/abacus/internal/fault"
)

var referencePattern = regexp.MustCompile(`^\$result_(\d+)$`)

// Extract returns the span from the first '{' to the last '}' in raw.
// Producers tend to wrap the JSON object in prose.
func Extract(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return "", fault.Newf(fault.KindMalformedPlan, "malformed plan: no JSON object in producer output")
	}
	return raw[start : end+1], nil
}

// Parse validates producer output and converts it to a Plan. Every shape
// problem is reported as a MalformedPlan error.
func Parse(raw string) (*Plan, error) {
	body, err := Extract(raw)
	if err != nil {
		return nil, err
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &top); err != nil {
		return nil, malformed(err, "invalid JSON")
	}

	rawSteps, ok := top["steps"]
	if !ok || isNull(rawSteps) {
		return nil, malformed(nil, "missing 'steps' field")
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(rawSteps, &entries); err != nil {
		return nil, malformed(nil, "'steps' is not an array")
	}

	p := &Plan{Steps: make([]Step, 0, len(entries))}
	for i, entry := range entries {
		step, err := parseStep(entry)
		if err != nil {
			return nil, malformed(err, fmt.Sprintf("step %d", i))
		}
		p.Steps = append(p.Steps, step)
	}
	return p, nil
}

func parseStep(data json.RawMessage) (Step, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return Step{}, errors.New("not an object")
	}

	var raw struct {
		Operation   *string           `json:"operation"`
		Args        []json.RawMessage `json:"args"`
		Description *string           `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Step{}, err
	}
	if raw.Operation == nil || strings.TrimSpace(*raw.Operation) == "" {
		return Step{}, errors.New("missing operation")
	}

	step := Step{
		Operation: strings.TrimSpace(*raw.Operation),
		Args:      make([]Argument, 0, len(raw.Args)),
	}
	if raw.Description != nil {
		step.Description = *raw.Description
	}

	for j, a := range raw.Args {
		arg, err := ParseArgument(a)
		if err != nil {
			return Step{}, fmt.Errorf("argument %d: %w", j, err)
		}
		step.Args = append(step.Args, arg)
	}
	return step, nil
}

// ParseArgument decodes a single JSON argument: a number or a "$result_N"
// token.
func ParseArgument(data json.RawMessage) (Argument, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || isNull(data) {
		return Argument{}, errors.New("null argument")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Argument{}, err
		}
		return ParseToken(s)
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return Argument{}, fmt.Errorf("expected number or %sN, got %s", ReferencePrefix, data)
	}
	return Literal(v), nil
}

// ParseToken parses the "$result_N" back-reference form.
func ParseToken(s string) (Argument, error) {
	m := referencePattern.FindStringSubmatch(s)
	if m == nil {
		return Argument{}, fmt.Errorf("invalid reference token %q", s)
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil {
		return Argument{}, fmt.Errorf("invalid reference token %q: %w", s, err)
	}
	return Reference(idx), nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func malformed(err error, reason string) error {
	if err != nil {
		return fault.Wrapf(fault.KindMalformedPlan, err, "malformed plan: %s", reason)
	}
	return fault.Newf(fault.KindMalformedPlan, "malformed plan: %s", reason)
}
