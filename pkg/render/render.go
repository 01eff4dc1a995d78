package render

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// BoardView is the read-only surface the renderer needs from a board.
type BoardView interface {
	Shape() []int
	Cell(position []int) (string, bool, error)
	Winner() (string, bool)
}

const emptyCell = "."

var palette = []termenv.Color{
	termenv.ANSIRed,
	termenv.ANSIBlue,
	termenv.ANSIGreen,
	termenv.ANSIYellow,
	termenv.ANSIMagenta,
	termenv.ANSICyan,
}

// Renderer draws boards of up to 3 dimensions as text grids, coloring
// each marker consistently. Higher dimensionalities get a summary line
// instead of a projection nobody can read.
type Renderer struct {
	output *termenv.Output
	colors map[string]termenv.Color
}

func New(output *termenv.Output) *Renderer {
	return &Renderer{
		output: output,
		colors: make(map[string]termenv.Color),
	}
}

func (that *Renderer) Render(board BoardView) (string, error) {
	shape := board.Shape()

	var builder strings.Builder

	switch len(shape) {
	case 1:
		if err := that.renderRow(&builder, board, nil); err != nil {
			return "", err
		}
	case 2:
		if err := that.renderGrid(&builder, board, nil); err != nil {
			return "", err
		}
	case 3:
		for z := 0; z < shape[0]; z++ {
			fmt.Fprintf(&builder, "slice %d:\n", z)
			if err := that.renderGrid(&builder, board, []int{z}); err != nil {
				return "", err
			}
		}
	default:
		fmt.Fprintf(&builder, "%d-dimensional board with side length of %d\n", len(shape), shape[0])
	}

	if winner, won := board.Winner(); won {
		fmt.Fprintf(&builder, "winner: %s\n", that.markerStyle(winner))
	}

	return builder.String(), nil
}

// renderGrid draws one 2D slice, prefix holding the fixed leading
// coordinates.
func (that *Renderer) renderGrid(builder *strings.Builder, board BoardView, prefix []int) error {
	side := board.Shape()[0]

	for row := 0; row < side; row++ {
		if err := that.renderRow(builder, board, append(prefix, row)); err != nil {
			return err
		}
	}

	return nil
}

func (that *Renderer) renderRow(builder *strings.Builder, board BoardView, prefix []int) error {
	side := board.Shape()[0]

	cells := make([]string, 0, side)
	for col := 0; col < side; col++ {
		position := make([]int, 0, len(prefix)+1)
		position = append(position, prefix...)
		position = append(position, col)

		marker, filled, err := board.Cell(position)
		if err != nil {
			return fmt.Errorf("failed to read cell %v: %w", position, err)
		}

		if !filled {
			cells = append(cells, emptyCell)
			continue
		}

		cells = append(cells, that.markerStyle(marker))
	}

	builder.WriteString(strings.Join(cells, " "))
	builder.WriteByte('\n')

	return nil
}

// markerStyle colors a marker, assigning palette entries in order of
// first appearance.
func (that *Renderer) markerStyle(marker string) string {
	color, ok := that.colors[marker]
	if !ok {
		color = palette[len(that.colors)%len(palette)]
		that.colors[marker] = color
	}

	return that.output.String(marker).Foreground(color).Bold().String()
}
