// internal/handlers/hub.go
package handlers

import (
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/domino/internal/game"
	log "github.com/sirupsen/logrus"
)

// sendBuffer is how many outgoing frames a slow client may fall behind before
// frames are dropped. The next sync state repairs a dropped frame.
const sendBuffer = 64

// serverMessage is any frame the server sends that is not a GameEvent.
type serverMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type client struct {
	gameID   uuid.UUID
	playerID uuid.UUID
	conn     *websocket.Conn
	send     chan []byte
}

// Hub fans game events out to WebSocket clients. One connection per player
// per game; a reconnect replaces the old connection.
type Hub struct {
	mu    sync.RWMutex
	games map[uuid.UUID]map[uuid.UUID]*client
}

func NewHub() *Hub {
	return &Hub{games: make(map[uuid.UUID]map[uuid.UUID]*client)}
}

// Attach installs the hub as g's broadcaster.
func (h *Hub) Attach(g *game.DominoGame) {
	gameID := g.ID
	g.BroadcastFn = func(ev game.GameEvent) {
		h.broadcast(gameID, ev)
	}
	g.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.GameEvent) {
		h.sendToPlayer(gameID, playerID, ev)
	}
}

// register adds c, closing any connection it replaces.
func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.games[c.gameID]
	if !ok {
		conns = make(map[uuid.UUID]*client)
		h.games[c.gameID] = conns
	}
	if old, ok := conns[c.playerID]; ok {
		log.Printf("Hub: Player %s reconnected to game %s, replacing old connection.", c.playerID, c.gameID)
		close(old.send)
	}
	conns[c.playerID] = c
}

// unregister removes c. It returns false when c was already replaced, in
// which case the player is still connected.
func (h *Hub) unregister(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.games[c.gameID]
	if conns[c.playerID] != c {
		return false
	}
	delete(conns, c.playerID)
	close(c.send)
	if len(conns) == 0 {
		delete(h.games, c.gameID)
	}
	return true
}

// CloseGame drops every connection of a finished game.
func (h *Hub) CloseGame(gameID uuid.UUID) {
	h.mu.Lock()
	conns := h.games[gameID]
	delete(h.games, gameID)
	h.mu.Unlock()
	for _, c := range conns {
		c.conn.Close(websocket.StatusNormalClosure, "game over")
	}
}

// Connected returns how many players of the game have a live connection.
func (h *Hub) Connected(gameID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

func (h *Hub) broadcast(gameID uuid.UUID, ev game.GameEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Error: Hub: Marshal %s for game %s: %v", ev.Type, gameID, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.games[gameID] {
		c.enqueue(data)
	}
}

func (h *Hub) sendToPlayer(gameID, playerID uuid.UUID, ev game.GameEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Error: Hub: Marshal %s for player %s: %v", ev.Type, playerID, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.games[gameID][playerID]; ok {
		c.enqueue(data)
	}
}

// reply sends a non-event frame to one client.
func (h *Hub) reply(c *client, msg serverMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error: Hub: Marshal %s reply: %v", msg.Type, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.games[c.gameID][c.playerID] == c {
		c.enqueue(data)
	}
}

// enqueue never blocks; game callbacks run under the game lock.
// Assumes the hub read lock is held, so send is still open.
func (c *client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Warnf("Hub: Dropping frame for player %s in game %s, send buffer full.", c.playerID, c.gameID)
	}
}
