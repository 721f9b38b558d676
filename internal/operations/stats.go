package operations

import "sort"

// Statistics returns mean and median. Both need at least one operand.
func Statistics() []Operation {
	return []Operation{
		Variadic("mean", "Arithmetic mean of N numbers", 1, mean),
		Variadic("median", "Median of N numbers", 1, median),
	}
}

func mean(args []float64) Result {
	var sum float64
	for _, v := range args {
		sum += v
	}
	return Ok(sum / float64(len(args)))
}

func median(args []float64) Result {
	sorted := make([]float64, len(args))
	copy(sorted, args)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return Ok(sorted[mid])
	}
	return Ok((sorted[mid-1] + sorted[mid]) / 2)
}
