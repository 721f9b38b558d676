package operations

// Basic returns add, subtract, multiply and divide.
func Basic() []Operation {
	return []Operation{
		Variadic("add", "Sum of N numbers", 0, add),
		Fixed("subtract", "Subtract the second number from the first", 2, subtract),
		Variadic("multiply", "Product of N numbers", 0, multiply),
		Fixed("divide", "Divide the first number by the second", 2, divide),
	}
}

func add(args []float64) Result {
	var sum float64
	for _, v := range args {
		sum += v
	}
	return Ok(sum)
}

func subtract(args []float64) Result {
	return Ok(args[0] - args[1])
}

func multiply(args []float64) Result {
	product := 1.0
	for _, v := range args {
		product *= v
	}
	return Ok(product)
}

func divide(args []float64) Result {
	if args[1] == 0 {
		return Fail(ErrDivisionByZero)
	}
	return Ok(args[0] / args[1])
}
