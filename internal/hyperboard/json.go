package hyperboard

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedBoard = errors.New("malformed board payload")

// boardJSON is the wire form of a board. Empty cells travel as null so
// no marker value has to double as an in-band sentinel.
type boardJSON[M comparable] struct {
	SideLength int  `json:"side_length"`
	Dimensions int  `json:"dimensions"`
	Cells      []*M `json:"cells"`
	Winner     *M   `json:"winner,omitempty"`
}

func (that *Board[M]) MarshalJSON() ([]byte, error) {
	wire := boardJSON[M]{
		SideLength: that.sideLength,
		Dimensions: that.dimensions,
		Cells:      make([]*M, len(that.cells)),
	}

	for i, cell := range that.cells {
		if cell.filled {
			marker := cell.marker
			wire.Cells[i] = &marker
		}
	}

	if that.winner != nil {
		winner := *that.winner
		wire.Winner = &winner
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}

	return data, nil
}

func (that *Board[M]) UnmarshalJSON(data []byte) error {
	var wire boardJSON[M]
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("failed to unmarshal board: %w", err)
	}

	restored, err := New[M](wire.SideLength, wire.Dimensions)
	if err != nil {
		return err
	}

	if len(wire.Cells) != len(restored.cells) {
		return fmt.Errorf("%w: want %d cells, got %d", ErrMalformedBoard, len(restored.cells), len(wire.Cells))
	}

	for i, marker := range wire.Cells {
		if marker == nil {
			continue
		}

		restored.cells[i] = cell[M]{marker: *marker, filled: true}
		restored.placed++
	}

	restored.winner = wire.Winner

	*that = *restored

	return nil
}
