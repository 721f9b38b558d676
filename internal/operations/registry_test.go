package operations

import (
	"errors"
	"testing"

	"github.com/rahul/abacus/internal/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Resolve(t *testing.T) {
	r := NewDefaultRegistry()

	op, err := r.Resolve("add")
	require.NoError(t, err)
	assert.Equal(t, "add", op.Name())

	_, err = r.Resolve("modulo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrUnknownOperation))
	assert.Contains(t, err.Error(), "modulo")
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := NewRegistry()
	r.Register(Fixed("double", "first", 1, func(a []float64) Result { return Ok(a[0] * 2) }))
	r.Register(Fixed("double", "second", 1, func(a []float64) Result { return Ok(a[0] + a[0]) }))

	op, err := r.Resolve("double")
	require.NoError(t, err)
	assert.Equal(t, "second", op.Description())
	assert.Len(t, r.List(), 1)
}

func TestRegistry_Names(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Equal(t,
		[]string{"add", "divide", "mean", "median", "multiply", "power", "sqrt", "subtract"},
		r.Names())
}

func TestArity(t *testing.T) {
	fixed := Arity{Min: 2, Max: 2}
	assert.True(t, fixed.Accepts(2))
	assert.False(t, fixed.Accepts(1))
	assert.False(t, fixed.Accepts(3))
	assert.Equal(t, "exactly 2", fixed.String())

	variadic := Arity{Min: 1, Max: -1}
	assert.True(t, variadic.Variadic())
	assert.False(t, variadic.Accepts(0))
	assert.True(t, variadic.Accepts(50))
	assert.Equal(t, "at least 1", variadic.String())
}
