package websocket

import (
	"encoding/json"

	"github.com/hypergrid/hyperttt-backend/internal/entity"
)

// Message is one client request or server push, routed by action.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload carries the request and response bodies of every action.
type Payload struct {
	Player     *entity.Player `json:"player,omitempty"`
	Game       *entity.Game   `json:"game,omitempty"`
	Position   []int          `json:"position,omitempty"`
	SideLength int            `json:"side_length,omitempty"`
	Dimensions int            `json:"dimensions,omitempty"`
	Error      string         `json:"error,omitempty"`
}
