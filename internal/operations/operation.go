package operations

import (
	"errors"
	"fmt"
)

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrNegativeRoot   = errors.New("square root of a negative number")
	ErrNotReal        = errors.New("result is not a real number")
)

// Result is the outcome of applying an Operation: either a value or an error.
type Result struct {
	Value float64
	Err   error
}

func Ok(v float64) Result {
	return Result{Value: v}
}

func Fail(err error) Result {
	return Result{Err: err}
}

// Arity describes how many operands an Operation accepts.
// Max < 0 means there is no upper bound.
type Arity struct {
	Min int
	Max int
}

// Accepts reports whether n operands satisfy the arity.
func (a Arity) Accepts(n int) bool {
	if n < a.Min {
		return false
	}
	return a.Max < 0 || n <= a.Max
}

func (a Arity) Variadic() bool {
	return a.Max < 0
}

func (a Arity) String() string {
	switch {
	case a.Variadic():
		return fmt.Sprintf("at least %d", a.Min)
	case a.Min == a.Max:
		return fmt.Sprintf("exactly %d", a.Min)
	default:
		return fmt.Sprintf("%d to %d", a.Min, a.Max)
	}
}

// Operation is a named, pure numeric function. Apply must be deterministic
// and must not retain args.
type Operation interface {
	Name() string
	Description() string
	Arity() Arity
	Apply(args []float64) Result
}

type funcOperation struct {
	name        string
	description string
	arity       Arity
	fn          func(args []float64) Result
}

func (o *funcOperation) Name() string                { return o.name }
func (o *funcOperation) Description() string         { return o.description }
func (o *funcOperation) Arity() Arity                { return o.arity }
func (o *funcOperation) Apply(args []float64) Result { return o.fn(args) }

// Fixed returns an Operation taking exactly n operands.
func Fixed(name, description string, n int, fn func(args []float64) Result) Operation {
	return &funcOperation{name: name, description: description, arity: Arity{Min: n, Max: n}, fn: fn}
}

// Variadic returns an Operation taking min or more operands.
func Variadic(name, description string, min int, fn func(args []float64) Result) Operation {
	return &funcOperation{name: name, description: description, arity: Arity{Min: min, Max: -1}, fn: fn}
}
