package pkg

import "github.com/google/uuid"

// GenerateNewSessionID returns a unique identifier for players and
// games.
func GenerateNewSessionID() string {
	return uuid.NewString()
}
