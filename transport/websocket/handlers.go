package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/hypergrid/hyperttt-backend/internal/apperror"
	"github.com/hypergrid/hyperttt-backend/internal/entity"
)

const (
	payloadActionGameLeave = "game:leave"

	gameStatusLeave       = "leave"
	gameStatusOpponentOut = "opponent_out"
)

func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	playerID := ""
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Error("failed to create or get player", "error", err)

		return that.sendErrorResponse(conn, msg.Action, "failed to create a new player")
	}

	that.registerConnection(player.ID, conn)

	payloadResp := Payload{
		Player: player,
	}

	if player.GameID != "" {
		game, err := that.gameUseCase.GetGameByPlayerID(ctx, player.ID)
		if err != nil {
			log.Error("failed to get game", "gameID", player.GameID, "error", err)
			return that.sendErrorResponse(conn, msg.Action, "failed to get the game")
		}

		payloadResp.Game = maskGameDetails(game)
	}

	if err = that.sendMessage(conn, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleNewGame")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	that.registerConnection(payloadReq.Player.ID, conn)

	gameType := entity.PrivateType
	if payloadReq.Game != nil && payloadReq.Game.Type != "" {
		gameType = payloadReq.Game.Type
	}

	var game *entity.Game
	var err error

	if payloadReq.Game != nil && payloadReq.Game.IsPublic() {
		game, err = that.gameUseCase.CreateOrJoinToPublicGame(ctx, payloadReq.Player.ID,
			payloadReq.SideLength, payloadReq.Dimensions)
	} else {
		game, err = that.gameUseCase.GetOrCreateGame(ctx, payloadReq.Player.ID, gameType,
			payloadReq.SideLength, payloadReq.Dimensions)
	}

	if err != nil {
		log.Error("failed to create or get game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, fmt.Sprintf("failed to create a new game: %v", err))
	}

	log = log.With("gameID", game.ID)

	that.broadcastGame(msg.Action, game)

	log.Info("game created")

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleJoinGame")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	if payloadReq.Game == nil {
		log.Error("Game is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Game is required")
	}

	that.registerConnection(payloadReq.Player.ID, conn)

	log = log.With("playerID", payloadReq.Player.ID)

	game, err := that.gameUseCase.JoinGameByID(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to join game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, fmt.Sprintf("game %s: %v", payloadReq.Game.ID, err))
	}

	log = log.With("gameID", game.ID)

	that.broadcastGame(msg.Action, game)

	log.Info("Player joined game")

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleGameTurn")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	if payloadReq.Position == nil {
		log.Error("Position is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Position is required")
	}

	that.registerConnection(payloadReq.Player.ID, conn)

	log = log.With("playerID", payloadReq.Player.ID)

	game, err := that.gameUseCase.MakeTurn(ctx, payloadReq.Player.ID, payloadReq.Position)

	switch {
	case errors.Is(err, apperror.ErrGameFinished):
		// the turn ended the game, everyone gets the final board
		that.broadcastGame(msg.Action, game)

		log.Info("Game finished", "gameID", game.ID, "winner", game.Winner)

		return nil
	case errors.Is(err, apperror.ErrGameIsNotStarted),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrCellOccupied):
		return that.sendErrorResponse(conn, msg.Action, fmt.Sprintf("game %s: %v", game.ID, err))
	case err != nil:
		log.Error("failed to make turn", "error", err)
		return that.sendErrorResponse(conn, msg.Action, fmt.Sprintf("failed to make turn: %v", err))
	}

	log = log.With("gameID", game.ID)

	that.broadcastGame(msg.Action, game)

	log.Info("Player made a turn")

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleGameLeave")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	that.registerConnection(payloadReq.Player.ID, conn)

	log = log.With("playerID", payloadReq.Player.ID)

	game, err := that.gameUseCase.GetGameByPlayerID(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to get game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "game doesn't exist")
	}

	if err = that.gameUseCase.EndGame(ctx, game); err != nil {
		log.Error("failed to end game", "gameID", game.ID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to leave the game")
	}

	that.broadcastGameWithStatus(msg.Action, game, gameStatusLeave)

	log.Info("Player left game", "gameID", game.ID)

	return nil
}

// handleOpponentOut tears down the game of a player whose connection
// never came back and tells the remaining players.
func (that *Server) handleOpponentOut(ctx context.Context, playerID string) {
	log := that.logger.With("method", "handleOpponentOut", "playerID", playerID)

	game, err := that.gameUseCase.GetGameByPlayerID(ctx, playerID)
	if errors.Is(err, apperror.ErrNoActiveGames) {
		return
	}

	if err != nil {
		log.Error("failed to get game", "error", err)
		return
	}

	if err = that.gameUseCase.EndGame(ctx, game); err != nil {
		log.Error("failed to end game", "gameID", game.ID, "error", err)
		return
	}

	that.broadcastGameWithStatus(payloadActionGameLeave, game, gameStatusOpponentOut)

	log.Info("Opponent released from abandoned game", "gameID", game.ID)
}

// broadcastGame pushes the game state to every seated player with a
// live connection.
func (that *Server) broadcastGame(action string, game *entity.Game) {
	log := that.logger.With("method", "broadcastGame", "gameID", game.ID)

	for _, player := range game.Players {
		conn, ok := that.connectionByPlayerID(player.ID)
		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		payloadResp := Payload{
			Player: player,
			Game:   maskGameDetails(game),
		}

		if err := that.sendMessage(conn, action, payloadResp); err != nil {
			log.Error("failed to send game update", "error", err)
		}
	}
}

// broadcastGameWithStatus pushes the game with an overridden status,
// used for teardown notifications after the game left the repository.
func (that *Server) broadcastGameWithStatus(action string, game *entity.Game, status string) {
	log := that.logger.With("method", "broadcastGameWithStatus", "gameID", game.ID)

	for _, player := range game.Players {
		conn, ok := that.connectionByPlayerID(player.ID)
		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		masked := maskGameDetails(game)
		masked.Status = status

		payloadResp := Payload{
			Player: player,
			Game:   masked,
		}

		if err := that.sendMessage(conn, action, payloadResp); err != nil {
			log.Error("failed to send game update", "error", err)
		}
	}
}

// maskGameDetails hides the opponent roster from the game payload.
func maskGameDetails(game *entity.Game) *entity.Game {
	masked := *game
	masked.Players = nil
	return &masked
}
