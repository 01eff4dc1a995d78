package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hypergrid/hyperttt-backend/internal/entity"
)

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	GetOrCreateGame(ctx context.Context, playerID, gameType string, sideLength, dimensions int) (*entity.Game, error)
	CreateOrJoinToPublicGame(ctx context.Context, playerID string, sideLength, dimensions int) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error)
	MakeTurn(ctx context.Context, playerID string, position []int) (*entity.Game, error)
	EndGame(ctx context.Context, game *entity.Game) error
}

// A dropped connection keeps its game alive for the grace period so the
// player can reconnect; after that the opponent is released.
const (
	disconnectGracePeriod   = 30 * time.Second
	disconnectSweepInterval = 5 * time.Second
)

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	handlers map[string]func(ctx context.Context, message *Message, conn *websocket.Conn) error

	connectionsMutex sync.RWMutex
	connections      map[string]*websocket.Conn

	disconnectedMutex   sync.Mutex
	disconnectedPlayers map[string]time.Time

	writeMutex sync.Mutex
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger,
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},

		handlers:            make(map[string]func(context.Context, *Message, *websocket.Conn) error),
		connections:         make(map[string]*websocket.Conn),
		disconnectedPlayers: make(map[string]time.Time),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["game:new"] = server.handleNewGame
	server.handlers["game:join"] = server.handleJoinGame
	server.handlers["game:turn"] = server.handleGameTurn
	server.handlers[payloadActionGameLeave] = server.handleGameLeave

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	go that.reapDisconnected(ctx)

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveConnection upgrades the request and runs the message loop until
// the client goes away.
func (that *Server) serveConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer func() {
		that.handleDisconnect(conn)
		_ = conn.Close()
	}()

	log.Info("WebSocket connection established")

	for {
		var message Message
		if err = conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("client errored", "error", err)
			}
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)

			if err = that.sendErrorResponse(conn, message.Action, "unknown action"); err != nil {
				log.Error("failed to send error response", "error", err)
			}
			continue
		}

		if err = handler(ctx, &message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// registerConnection binds a player ID to its connection for pushes to
// every participant of a game.
func (that *Server) registerConnection(playerID string, conn *websocket.Conn) {
	that.connectionsMutex.Lock()
	that.connections[playerID] = conn
	that.connectionsMutex.Unlock()

	that.playerReconnected(playerID)
}

func (that *Server) playerReconnected(playerID string) {
	that.disconnectedMutex.Lock()
	delete(that.disconnectedPlayers, playerID)
	that.disconnectedMutex.Unlock()
}

func (that *Server) connectionByPlayerID(playerID string) (*websocket.Conn, bool) {
	that.connectionsMutex.RLock()
	conn, ok := that.connections[playerID]
	that.connectionsMutex.RUnlock()

	return conn, ok
}

func (that *Server) handleDisconnect(conn *websocket.Conn) {
	log := that.logger.With("method", "handleDisconnect")

	disconnectedPlayerID := ""

	that.connectionsMutex.Lock()
	for playerID, connection := range that.connections {
		if connection == conn {
			delete(that.connections, playerID)
			disconnectedPlayerID = playerID
			break
		}
	}
	that.connectionsMutex.Unlock()

	if disconnectedPlayerID == "" {
		return
	}

	that.disconnectedMutex.Lock()
	that.disconnectedPlayers[disconnectedPlayerID] = time.Now()
	that.disconnectedMutex.Unlock()

	log.Info("player disconnected", "playerID", disconnectedPlayerID)
}

// reapDisconnected releases the opponents of players whose grace
// period expired without a reconnect.
func (that *Server) reapDisconnected(ctx context.Context) {
	ticker := time.NewTicker(disconnectSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var expired []string

		that.disconnectedMutex.Lock()
		for playerID, since := range that.disconnectedPlayers {
			if time.Since(since) >= disconnectGracePeriod {
				delete(that.disconnectedPlayers, playerID)
				expired = append(expired, playerID)
			}
		}
		that.disconnectedMutex.Unlock()

		for _, playerID := range expired {
			that.handleOpponentOut(ctx, playerID)
		}
	}
}

func (that *Server) sendMessage(conn *websocket.Conn, action string, payload Payload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response := Message{
		Action:  action,
		Payload: payloadJSON,
	}

	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	if err = conn.WriteJSON(response); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(conn *websocket.Conn, action, errorMsg string) error {
	payload := Payload{Error: errorMsg}
	if err := that.sendMessage(conn, action, payload); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
