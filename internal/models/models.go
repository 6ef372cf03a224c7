// internal/models/models.go
package models

import "github.com/google/uuid"

// User is the identity behind a seat. Authentication is handled outside this
// service; the username is display-only.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Player is a participant in a lobby or game.
type Player struct {
	ID        uuid.UUID `json:"id"`
	User      *User     `json:"user"`
	Connected bool      `json:"connected"`
	IsBot     bool      `json:"isBot"`
}

// NewPlayer returns a connected human player with a fresh user record.
func NewPlayer(id uuid.UUID, username string) *Player {
	return &Player{
		ID:        id,
		User:      &User{ID: id, Username: username},
		Connected: true,
	}
}

// NewBot returns a bot player. Bots are always considered connected.
func NewBot(username string) *Player {
	id := uuid.New()
	return &Player{
		ID:        id,
		User:      &User{ID: id, Username: username},
		Connected: true,
		IsBot:     true,
	}
}

// Name returns the display name, falling back to the id.
func (p *Player) Name() string {
	if p.User != nil && p.User.Username != "" {
		return p.User.Username
	}
	return p.ID.String()
}

// GameAction is an incoming player request, from REST or WebSocket.
type GameAction struct {
	ActionType string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
