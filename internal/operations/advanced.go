package operations

import "math"

// Advanced returns sqrt and power.
func Advanced() []Operation {
	return []Operation{
		Fixed("sqrt", "Square root of a non-negative number", 1, sqrt),
		Fixed("power", "Raise the first number to the power of the second", 2, power),
	}
}

func sqrt(args []float64) Result {
	if args[0] < 0 {
		return Fail(ErrNegativeRoot)
	}
	return Ok(math.Sqrt(args[0]))
}

func power(args []float64) Result {
	v := math.Pow(args[0], args[1])
	if math.IsNaN(v) {
		return Fail(ErrNotReal)
	}
	return Ok(v)
}
