package entity

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/hypergrid/hyperttt-backend/internal/apperror"
	"github.com/hypergrid/hyperttt-backend/internal/hyperboard"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"
)

const (
	PublicType  = "public"
	PrivateType = "private"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

type Game struct {
	ID      string                    `json:"id"`
	Board   *hyperboard.Board[string] `json:"board"`
	Winner  string                    `json:"winner"`
	Status  string                    `json:"status"`
	Turn    string                    `json:"player_turn"`
	Players []*Player                 `json:"players,omitempty"`
	Type    string                    `json:"type,omitempty"`
}

func NewGame(id, gameType string, sideLength, dimensions int) (*Game, error) {
	board, err := hyperboard.New[string](sideLength, dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	return &Game{
		ID:     id,
		Board:  board,
		Turn:   PlayerX,
		Status: StatusWaiting,
		Type:   gameType,
	}, nil
}

func (that *Game) MakeTurn(playerMark string, position []int) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if that.Turn != playerMark {
		return apperror.ErrNotYourTurn
	}

	wins, err := that.Board.Place(playerMark, position)
	if errors.Is(err, hyperboard.ErrCellOccupied) {
		return apperror.ErrCellOccupied
	}

	if err != nil {
		return fmt.Errorf("failed to place marker: %w", err)
	}

	that.updateGameState(playerMark, wins)

	return nil
}

// updateGameState finishes the game on a win or a full board, otherwise
// passes the turn. The board itself keeps accepting placements after a
// win; game-over enforcement lives here, not in the engine.
func (that *Game) updateGameState(playerMark string, wins bool) {
	switch {
	// the placement completed a line
	case wins:
		that.Winner = playerMark
		that.Status = StatusFinished
		that.Turn = ""
	// nobody won and no cell is left
	case that.Board.Full():
		that.Winner = PlayerTie
		that.Status = StatusFinished
		that.Turn = ""
	// game continue
	default:
		that.Turn = toggleMark(playerMark)
	}
}

func toggleMark(currentMark string) string {
	if currentMark == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsPublic() bool {
	return that.Type == PublicType
}

func (that *Game) GetRandomMarks() (string, string) {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return PlayerX, PlayerO
	}
	return PlayerO, PlayerX
}
