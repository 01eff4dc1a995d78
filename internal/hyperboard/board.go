package hyperboard

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSideLength = errors.New("side length must be at least 1")
	ErrInvalidDimensions = errors.New("dimensions must be at least 1")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrOutOfBounds       = errors.New("position is outside the board")
)

// cell holds at most one marker. The filled flag keeps "empty" distinct
// from any real marker value, including the marker type's zero value.
type cell[M comparable] struct {
	marker M
	filled bool
}

// Board is an n-dimensional hypercubic tic-tac-toe board. Cells live in
// a single flat buffer addressed by mixed-radix position encoding; the
// direction catalog is computed once at construction. A Board is a plain
// mutable value, callers needing concurrent access must serialize it.
type Board[M comparable] struct {
	sideLength int
	dimensions int

	cells      []cell[M]
	placed     int
	directions []Direction
	winner     *M
}

// New allocates an empty board of sideLength^dimensions cells.
func New[M comparable](sideLength, dimensions int) (*Board[M], error) {
	if sideLength < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSideLength, sideLength)
	}

	if dimensions < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDimensions, dimensions)
	}

	size := 1
	for d := 0; d < dimensions; d++ {
		size *= sideLength
	}

	return &Board[M]{
		sideLength: sideLength,
		dimensions: dimensions,
		cells:      make([]cell[M], size),
		directions: Directions(dimensions),
	}, nil
}

// Place puts marker at position and reports whether it completes a
// full-length line. The first winning placement is latched as the board
// winner; later placements keep working and still report completed
// lines, but never replace the recorded winner.
func (that *Board[M]) Place(marker M, position []int) (bool, error) {
	idx, err := that.index(position)
	if err != nil {
		return false, err
	}

	if that.cells[idx].filled {
		return false, fmt.Errorf("%w: position %v", ErrCellOccupied, position)
	}

	that.cells[idx] = cell[M]{marker: marker, filled: true}
	that.placed++

	for _, direction := range that.directions {
		if !that.completesLine(position, direction) {
			continue
		}

		if that.winner == nil {
			winner := marker
			that.winner = &winner
		}

		return true, nil
	}

	return false, nil
}

// completesLine reports whether the line through position along
// direction fits the whole side length inside the grid and holds a
// single marker with no gaps.
func (that *Board[M]) completesLine(position []int, direction Direction) bool {
	// Multipliers i with position+i*direction in bounds form a
	// contiguous interval [low, high). The seed is wide enough to be
	// unconstrained: any non-zero component tightens it to at most
	// sideLength steps, and every direction has one.
	low, high := -that.sideLength, that.sideLength+1

	for d, step := range direction {
		coordinate := position[d]

		switch step {
		case 1:
			low = max(low, -coordinate)
			high = min(high, that.sideLength-coordinate)
		case -1:
			low = max(low, 1-(that.sideLength-coordinate))
			high = min(high, coordinate+1)
		}
	}

	if high-low != that.sideLength {
		return false
	}

	var owner M

	for i := low; i < high; i++ {
		idx := 0
		for d := 0; d < that.dimensions; d++ {
			idx = idx*that.sideLength + position[d] + i*direction[d]
		}

		current := that.cells[idx]
		if !current.filled {
			return false
		}

		if i == low {
			owner = current.marker
			continue
		}

		if current.marker != owner {
			return false
		}
	}

	return true
}

// Winner returns the marker of the first winning placement, if any.
func (that *Board[M]) Winner() (M, bool) {
	if that.winner == nil {
		var zero M
		return zero, false
	}

	return *that.winner, true
}

// Cell returns the marker at position and whether the cell is occupied.
func (that *Board[M]) Cell(position []int) (M, bool, error) {
	idx, err := that.index(position)
	if err != nil {
		var zero M
		return zero, false, err
	}

	return that.cells[idx].marker, that.cells[idx].filled, nil
}

// Shape returns the board dimensions, every entry equal to the side
// length.
func (that *Board[M]) Shape() []int {
	shape := make([]int, that.dimensions)
	for d := range shape {
		shape[d] = that.sideLength
	}

	return shape
}

func (that *Board[M]) SideLength() int {
	return that.sideLength
}

func (that *Board[M]) Dimensions() int {
	return that.dimensions
}

// Full reports whether every cell is occupied.
func (that *Board[M]) Full() bool {
	return that.placed == len(that.cells)
}

// index maps a position tuple to its flat cell offset, validating arity
// and range. Bounds checking for the whole board is centralized here.
func (that *Board[M]) index(position []int) (int, error) {
	if len(position) != that.dimensions {
		return 0, fmt.Errorf("%w: want %d coordinates, got %d", ErrOutOfBounds, that.dimensions, len(position))
	}

	idx := 0
	for _, coordinate := range position {
		if coordinate < 0 || coordinate >= that.sideLength {
			return 0, fmt.Errorf("%w: coordinate %d not in [0, %d)", ErrOutOfBounds, coordinate, that.sideLength)
		}

		idx = idx*that.sideLength + coordinate
	}

	return idx, nil
}
