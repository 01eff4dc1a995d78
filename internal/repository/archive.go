package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hypergrid/hyperttt-backend/internal/entity"
)

// ArchivedGame is the flattened record of a finished game.
type ArchivedGame struct {
	GameID     string
	Winner     string
	SideLength int
	Dimensions int
	PlayerIDs  []string
	FinishedAt time.Time
}

type GameArchive interface {
	Save(ctx context.Context, game *entity.Game) error
	ListRecent(ctx context.Context, limit int) ([]ArchivedGame, error)
}

type dbArchive struct {
	conn *sql.DB
}

func NewGameArchive(conn *sql.DB) GameArchive {
	return &dbArchive{
		conn: conn,
	}
}

func (that *dbArchive) Save(ctx context.Context, game *entity.Game) error {
	playerIDs := make([]string, 0, len(game.Players))
	for _, player := range game.Players {
		playerIDs = append(playerIDs, player.ID)
	}

	query := `INSERT OR REPLACE INTO finished_games
		(game_id, winner, side_length, dimensions, player_ids, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query,
		game.ID,
		game.Winner,
		game.Board.SideLength(),
		game.Board.Dimensions(),
		strings.Join(playerIDs, ","),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to archive game: %w", err)
	}

	return nil
}

func (that *dbArchive) ListRecent(ctx context.Context, limit int) ([]ArchivedGame, error) {
	query := `SELECT game_id, winner, side_length, dimensions, player_ids, finished_at
		FROM finished_games ORDER BY finished_at DESC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived games: %w", err)
	}
	defer rows.Close()

	var archived []ArchivedGame
	for rows.Next() {
		var record ArchivedGame
		var playerIDs string

		if err = rows.Scan(&record.GameID, &record.Winner, &record.SideLength,
			&record.Dimensions, &playerIDs, &record.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan archived game: %w", err)
		}

		if playerIDs != "" {
			record.PlayerIDs = strings.Split(playerIDs, ",")
		}

		archived = append(archived, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read archived games: %w", err)
	}

	return archived, nil
}
