// internal/handlers/ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/jason-s-yu/domino/internal/game"
	"github.com/jason-s-yu/domino/internal/models"
	log "github.com/sirupsen/logrus"
)

const pingInterval = 15 * time.Second

// handleWS upgrades GET /ws/{game}/{player} and keeps the player attached to
// the game until the socket closes. Clients may send ping or any action.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(r.PathValue("game"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "invalid game id")
		return
	}
	playerID, err := uuid.Parse(r.PathValue("player"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "invalid player id")
		return
	}
	g, ok := s.Games.Get(gameID)
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", game.ErrGameNotFound.Error())
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: s.InsecureOrigins})
	if err != nil {
		log.Printf("WS: Accept failed for player %s in game %s: %v", playerID, gameID, err)
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &client{gameID: gameID, playerID: playerID, conn: conn, send: make(chan []byte, sendBuffer)}
	s.Hub.register(c)

	g.Mu.Lock()
	seated := g.HandleReconnect(playerID)
	g.Mu.Unlock()
	if !seated {
		s.Hub.unregister(c)
		conn.Close(websocket.StatusPolicyViolation, "not a player of this game")
		return
	}
	log.Printf("WS: Player %s connected to game %s.", playerID, gameID)

	go writePump(ctx, c)
	s.readPump(ctx, c, g)

	if s.Hub.unregister(c) {
		g.Mu.Lock()
		g.HandleDisconnect(playerID)
		g.Mu.Unlock()
	}
	conn.Close(websocket.StatusNormalClosure, "")
	log.Printf("WS: Player %s left game %s.", playerID, gameID)
}

// readPump handles incoming frames until the connection fails.
func (s *Server) readPump(ctx context.Context, c *client, g *game.DominoGame) {
	for {
		var msg models.GameAction
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status == -1 && !errors.Is(err, context.Canceled) {
				log.Debugf("WS: Read from player %s: %v", c.playerID, err)
			}
			return
		}
		switch msg.ActionType {
		case "ping":
			s.Hub.reply(c, serverMessage{Type: "pong"})
		case "sync":
			g.Mu.Lock()
			state := g.GetCurrentObfuscatedGameState(c.playerID)
			g.Mu.Unlock()
			s.Hub.sendToPlayer(c.gameID, c.playerID, game.GameEvent{Type: game.EventPrivateSyncState, State: &state})
		default:
			g.Mu.Lock()
			res := g.HandlePlayerAction(c.playerID, msg)
			g.Mu.Unlock()
			s.Hub.reply(c, serverMessage{Type: "action_result", Payload: res})
		}
	}
}

// writePump drains c.send onto the socket and keeps the connection alive.
func writePump(ctx context.Context, c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusGoingAway, "replaced")
				return
			}
			if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, pingInterval)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
