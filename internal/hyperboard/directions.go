package hyperboard

// Direction is a unit-step vector through the grid: one component per
// dimension, each in {-1, 0, +1}.
type Direction []int

// Directions returns one representative for every line direction in
// n-dimensional space. A vector and its negation describe the same line,
// so of each pair only the vector whose first non-zero component is +1
// is kept, which leaves (3^n-1)/2 vectors in lexicographic order.
// Dimensions below 1 yield an empty catalog.
func Directions(dimensions int) []Direction {
	if dimensions < 1 {
		return nil
	}

	total := 1
	for d := 0; d < dimensions; d++ {
		total *= 3
	}

	catalog := make([]Direction, 0, (total-1)/2)

	for code := 0; code < total; code++ {
		direction := make(Direction, dimensions)

		rest := code
		for d := dimensions - 1; d >= 0; d-- {
			direction[d] = rest%3 - 1
			rest /= 3
		}

		if leadingComponent(direction) == 1 {
			catalog = append(catalog, direction)
		}
	}

	return catalog
}

func leadingComponent(direction Direction) int {
	for _, step := range direction {
		if step != 0 {
			return step
		}
	}
	return 0
}
