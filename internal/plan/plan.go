// Package plan holds the structured form of an operation plan and the
// parser that turns producer text into it.
package plan

import (
	"encoding/json"
	"strconv"
)

// ReferencePrefix starts a back-reference token such as "$result_0".
const ReferencePrefix = "$result_"

// Plan is an ordered list of steps executed strictly in sequence.
type Plan struct {
	Steps []Step `json:"steps"`
}

// Step is one operation invocation.
type Step struct {
	Operation   string     `json:"operation"`
	Args        []Argument `json:"args"`
	Description string     `json:"description,omitempty"`
}

// Argument is either a numeric literal or a reference to the result of an
// earlier step.
type Argument struct {
	ref   bool
	value float64
	index int
}

func Literal(v float64) Argument {
	return Argument{value: v}
}

func Reference(index int) Argument {
	return Argument{ref: true, index: index}
}

func (a Argument) IsReference() bool {
	return a.ref
}

// Value is the literal value. Zero for references.
func (a Argument) Value() float64 {
	return a.value
}

// Index is the referenced step index. Zero for literals.
func (a Argument) Index() int {
	return a.index
}

func (a Argument) String() string {
	if a.ref {
		return ReferencePrefix + strconv.Itoa(a.index)
	}
	return strconv.FormatFloat(a.value, 'g', -1, 64)
}

// MarshalJSON writes literals as numbers and references in token form.
func (a Argument) MarshalJSON() ([]byte, error) {
	if a.ref {
		return json.Marshal(a.String())
	}
	return json.Marshal(a.value)
}

// UnmarshalJSON accepts the same forms the parser does.
func (a *Argument) UnmarshalJSON(data []byte) error {
	arg, err := ParseArgument(data)
	if err != nil {
		return err
	}
	*a = arg
	return nil
}
