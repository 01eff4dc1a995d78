package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypergrid/hyperttt-backend/internal/apperror"
)

func TestNewGame(t *testing.T) {
	t.Run("Creates a waiting game", func(t *testing.T) {
		// When: create a new 3x3 game
		game, err := NewGame("000", PrivateType, 3, 2)

		// Then: the game is waiting for an opponent, X to move
		require.NoError(t, err)
		require.NotNil(t, game)
		require.Equal(t, "000", game.ID)
		require.Equal(t, StatusWaiting, game.Status)
		require.Equal(t, PlayerX, game.Turn)
		require.Empty(t, game.Winner)
		require.Equal(t, []int{3, 3}, game.Board.Shape())
	})

	t.Run("Rejects a degenerate board", func(t *testing.T) {
		// When: create a game with an invalid geometry
		_, err := NewGame("000", PrivateType, 0, 2)

		// Then: game creation fails
		require.Error(t, err)
	})
}

func TestGame_MakeTurn(t *testing.T) {
	newOngoingGame := func(t *testing.T, sideLength, dimensions int) *Game {
		t.Helper()

		game, err := NewGame("000", PrivateType, sideLength, dimensions)
		require.NoError(t, err)
		game.Status = StatusOngoing

		return game
	}

	t.Run("Turn passes to the opponent", func(t *testing.T) {
		// Given: an ongoing 3x3 game
		game := newOngoingGame(t, 3, 2)

		// When: X makes a move
		err := game.MakeTurn(PlayerX, []int{0, 0})

		// Then: the move lands and it is O's turn
		require.NoError(t, err)
		require.Equal(t, PlayerO, game.Turn)
		require.Equal(t, StatusOngoing, game.Status)

		marker, filled, err := game.Board.Cell([]int{0, 0})
		require.NoError(t, err)
		require.True(t, filled)
		require.Equal(t, PlayerX, marker)
	})

	t.Run("Error on playing out of turn", func(t *testing.T) {
		// Given: an ongoing game with X to move
		game := newOngoingGame(t, 3, 2)

		// When: O tries to move first
		err := game.MakeTurn(PlayerO, []int{0, 0})

		// Then: an ErrNotYourTurn error should be returned
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		require.Equal(t, PlayerX, game.Turn)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: an ongoing game with X on the center
		game := newOngoingGame(t, 3, 2)
		require.NoError(t, game.MakeTurn(PlayerX, []int{1, 1}))

		// When: O targets the same cell
		err := game.MakeTurn(PlayerO, []int{1, 1})

		// Then: an ErrCellOccupied error should be returned and the turn
		// stays with O
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		require.Equal(t, PlayerO, game.Turn)
	})

	t.Run("Win finishes the game", func(t *testing.T) {
		// Given: an ongoing 3-dimensional game
		game := newOngoingGame(t, 3, 3)

		// When: X builds the space diagonal while O plays elsewhere
		require.NoError(t, game.MakeTurn(PlayerX, []int{0, 0, 0}))
		require.NoError(t, game.MakeTurn(PlayerO, []int{0, 0, 1}))
		require.NoError(t, game.MakeTurn(PlayerX, []int{1, 1, 1}))
		require.NoError(t, game.MakeTurn(PlayerO, []int{0, 0, 2}))
		require.NoError(t, game.MakeTurn(PlayerX, []int{2, 2, 2}))

		// Then: X wins and the game is finished
		require.Equal(t, PlayerX, game.Winner)
		require.Equal(t, StatusFinished, game.Status)
		require.Empty(t, game.Turn)

		// Then: further moves are rejected
		err := game.MakeTurn(PlayerO, []int{1, 0, 0})
		assert.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Full board without a winner is a tie", func(t *testing.T) {
		// Given: an ongoing 1-dimensional game of length 2
		game := newOngoingGame(t, 2, 1)

		// When: both cells are taken by different marks
		require.NoError(t, game.MakeTurn(PlayerX, []int{0}))
		require.NoError(t, game.MakeTurn(PlayerO, []int{1}))

		// Then: the game ends in a tie
		require.Equal(t, PlayerTie, game.Winner)
		require.Equal(t, StatusFinished, game.Status)
	})
}

func TestGame_ConfirmOngoingState(t *testing.T) {
	game, err := NewGame("000", PublicType, 3, 2)
	require.NoError(t, err)

	// Then: a waiting game is not playable yet
	require.ErrorIs(t, game.ConfirmOngoingState(), apperror.ErrGameIsNotStarted)

	// Then: an ongoing game is playable
	game.Status = StatusOngoing
	require.NoError(t, game.ConfirmOngoingState())

	// Then: a finished game is rejected
	game.Status = StatusFinished
	require.ErrorIs(t, game.ConfirmOngoingState(), apperror.ErrGameFinished)

	// Then: anything else is unknown
	game.Status = "paused"
	require.ErrorIs(t, game.ConfirmOngoingState(), ErrUnknownGameStatus)
}
