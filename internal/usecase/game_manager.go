package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hypergrid/hyperttt-backend/internal/apperror"
	"github.com/hypergrid/hyperttt-backend/internal/config"
	"github.com/hypergrid/hyperttt-backend/internal/entity"
	"github.com/hypergrid/hyperttt-backend/internal/pkg"
	"github.com/hypergrid/hyperttt-backend/internal/repository"
)

var ErrBoardTooLarge = errors.New("requested board exceeds the configured limits")

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	SetWaitingPublicGame(ctx context.Context, gameID string) error
	GetWaitingPublicGame(ctx context.Context) (string, error)
	ClearWaitingPublicGame(ctx context.Context) error
}

type gameArchive interface {
	Save(ctx context.Context, game *entity.Game) error
}

type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	archive    gameArchive

	boardConf config.Board
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, archive gameArchive, boardConf config.Board) *GameManager {
	return &GameManager{
		logger: logger,

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		archive:    archive,

		boardConf: boardConf,
	}
}

func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		return that.createPlayer(ctx)
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		return that.createPlayer(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed get player by id: %w", err)
	}

	return player, nil
}

// GetOrCreateGame returns the player's current game or creates a new
// one with the requested geometry. Zero geometry falls back to the
// configured defaults.
func (that *GameManager) GetOrCreateGame(ctx context.Context, playerID, gameType string, sideLength, dimensions int) (*entity.Game, error) {
	player, err := that.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed get player by id: %w", err)
	}

	if player.GameID != "" {
		existingGame, err := that.getGameByID(ctx, player.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed get game: %w", err)
		}

		return existingGame, nil
	}

	existingGame, err := that.createGame(ctx, player, gameType, sideLength, dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed create game: %w", err)
	}

	return existingGame, nil
}

// CreateOrJoinToPublicGame pairs the player with the public game
// waiting for an opponent, or opens a new one and leaves it waiting.
func (that *GameManager) CreateOrJoinToPublicGame(ctx context.Context, playerID string, sideLength, dimensions int) (*entity.Game, error) {
	player, err := that.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed get player by id: %w", err)
	}

	if player.GameID != "" {
		existingGame, err := that.getGameByID(ctx, player.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed get game: %w", err)
		}

		return existingGame, nil
	}

	waitingGameID, err := that.gameRepo.GetWaitingPublicGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed get waiting public game: %w", err)
	}

	if waitingGameID != "" {
		joinedGame, err := that.JoinGameByID(ctx, waitingGameID, player.ID)
		if err == nil {
			if clearErr := that.gameRepo.ClearWaitingPublicGame(ctx); clearErr != nil {
				that.logger.Error("failed to clear matchmaking entry", "gameID", waitingGameID, "error", clearErr)
			}

			return joinedGame, nil
		}

		if !errors.Is(err, repository.ErrGameNotFound) {
			return nil, fmt.Errorf("failed join public game: %w", err)
		}

		// the waiting game is gone, drop the stale matchmaking entry
		if err = that.gameRepo.ClearWaitingPublicGame(ctx); err != nil {
			return nil, fmt.Errorf("failed clear matchmaking entry: %w", err)
		}
	}

	game, err := that.createGame(ctx, player, entity.PublicType, sideLength, dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed create game: %w", err)
	}

	if err = that.gameRepo.SetWaitingPublicGame(ctx, game.ID); err != nil {
		return nil, fmt.Errorf("failed set waiting public game: %w", err)
	}

	return game, nil
}

func (that *GameManager) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	existingGame, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed get game by id: %w", err)
	}

	player, err := that.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed get player by id: %w", err)
	}

	if player.GameID == existingGame.ID {
		return existingGame, nil
	}

	if player.GameID != "" {
		return nil, fmt.Errorf("%w: player %s is seated in game %s", apperror.ErrGameAlreadyExists, player.ID, player.GameID)
	}

	if len(existingGame.Players) == 2 {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameIsFull, gameID)
	}

	player.GameID = existingGame.ID
	player.Mark = entity.PlayerO
	if len(existingGame.Players) == 1 && existingGame.Players[0].Mark == entity.PlayerO {
		player.Mark = entity.PlayerX
	}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed update player by id: %w", err)
	}

	existingGame.Status = entity.StatusOngoing
	existingGame.Players = append(existingGame.Players, player)
	if err = that.updateGame(ctx, existingGame); err != nil {
		return nil, fmt.Errorf("failed update game by id: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) MakeTurn(ctx context.Context, playerID string, position []int) (*entity.Game, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed get player by id: %w", err)
	}

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed get game by id: %w", err)
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, err
	}

	if err = game.MakeTurn(player.Mark, position); err != nil {
		return game, fmt.Errorf("failed make turn: %w", err)
	}

	if game.IsFinished() {
		that.finishGame(ctx, game)

		return game, apperror.ErrGameFinished
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed update game: %w", err)
	}

	return game, nil
}

// EndGame removes the game and detaches its players, archiving the
// result if one was reached.
func (that *GameManager) EndGame(ctx context.Context, game *entity.Game) error {
	that.finishGame(ctx, game)

	return nil
}

// finishGame archives and deletes a game; both are best effort, losing
// the record must not fail the turn that ended the game.
func (that *GameManager) finishGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "finishGame", "gameID", game.ID)

	if game.Winner != "" {
		if err := that.archive.Save(ctx, game); err != nil {
			log.Error("failed to archive game", "error", err)
		}
	}

	// a public game torn down before an opponent arrived must not stay
	// in the matchmaking slot
	if game.IsPublic() && game.IsWaiting() {
		if err := that.gameRepo.ClearWaitingPublicGame(ctx); err != nil {
			log.Error("failed to clear matchmaking entry", "error", err)
		}
	}

	for _, player := range game.Players {
		player.GameID = ""
		player.Mark = ""

		if err := that.updatePlayer(ctx, player); err != nil {
			log.Error("failed to detach player", "playerID", player.ID, "error", err)
		}
	}

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}
}

func (that *GameManager) createPlayer(ctx context.Context) (*entity.Player, error) {
	player := &entity.Player{
		ID: pkg.GenerateNewSessionID(),
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed create player: %w", err)
	}

	return player, nil
}

func (that *GameManager) createGame(ctx context.Context, player *entity.Player, gameType string, sideLength, dimensions int) (*entity.Game, error) {
	if sideLength == 0 {
		sideLength = that.boardConf.SideLength
	}

	if dimensions == 0 {
		dimensions = that.boardConf.Dimensions
	}

	if sideLength > that.boardConf.MaxSideLength || dimensions > that.boardConf.MaxDimensions {
		return nil, fmt.Errorf("%w: %dx%d", ErrBoardTooLarge, sideLength, dimensions)
	}

	game, err := entity.NewGame(pkg.GenerateNewSessionID(), gameType, sideLength, dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed create game: %w", err)
	}

	mark, _ := game.GetRandomMarks()
	player.Mark = mark
	player.GameID = game.ID

	game.Players = append(game.Players, player)

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed update player: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed update game: %w", err)
	}

	return game, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed get game by id: %w", err)
	}

	return game, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed update game: %w", err)
	}

	return nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed update player: %w", err)
	}

	return nil
}
