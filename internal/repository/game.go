package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hypergrid/hyperttt-backend/internal/entity"
)

var ErrGameNotFound = errors.New("game not found")

// waitingPublicGameKey holds the ID of the public game currently
// waiting for an opponent; matchmaking pairs at most one at a time.
const waitingPublicGameKey = "matchmaking:public"

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	SetWaitingPublicGame(ctx context.Context, gameID string) error
	GetWaitingPublicGame(ctx context.Context) (string, error)
	ClearWaitingPublicGame(ctx context.Context) error
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	gameKey := "game:" + game.ID
	err = that.client.Set(ctx, gameKey, gameJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	gameKey := "game:" + id

	response, err := that.client.Get(ctx, gameKey).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Game{}, ErrGameNotFound
	}

	if err != nil {
		return &entity.Game{}, fmt.Errorf("failed to get game by ID: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return &entity.Game{}, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	gameKey := "game:" + id

	err := that.client.Del(ctx, gameKey).Err()
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	return nil
}

func (that *dbGame) SetWaitingPublicGame(ctx context.Context, gameID string) error {
	err := that.client.Set(ctx, waitingPublicGameKey, gameID, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set waiting public game: %w", err)
	}

	return nil
}

func (that *dbGame) GetWaitingPublicGame(ctx context.Context) (string, error) {
	gameID, err := that.client.Get(ctx, waitingPublicGameKey).Result()

	if errors.Is(err, redis.Nil) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to get waiting public game: %w", err)
	}

	return gameID, nil
}

func (that *dbGame) ClearWaitingPublicGame(ctx context.Context) error {
	err := that.client.Del(ctx, waitingPublicGameKey).Err()
	if err != nil {
		return fmt.Errorf("failed to clear waiting public game: %w", err)
	}

	return nil
}
