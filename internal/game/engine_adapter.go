// internal/game/engine_adapter.go
package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/domino/engine"
	"github.com/jason-s-yu/domino/internal/models"
	log "github.com/sirupsen/logrus"
)

// HandlePlayerAction routes an incoming request (play, draw, pass) to the engine.
// A rejected request never changes state; the player gets a private fail event
// and a fresh sync so the client can re-render.
// Assumes lock is held by the caller.
func (g *DominoGame) HandlePlayerAction(playerID uuid.UUID, action models.GameAction) ActionResult {
	if !g.Started || g.GameOver {
		return g.reject(playerID, action.ActionType, engine.KindInvalidTurn.String(), "game is not in progress")
	}
	if g.getPlayerByID(playerID) == nil {
		return g.reject(playerID, action.ActionType, engine.KindInvalidTurn.String(), "player is not seated in this game")
	}

	switch action.ActionType {
	case ActionPlay:
		return g.handlePlay(playerID, action.Payload)
	case ActionDraw:
		return g.handleDraw(playerID)
	case ActionPass:
		return g.handlePass(playerID)
	}
	log.Printf("Game %s: Unknown action type '%s' received from player %s.", g.ID, action.ActionType, playerID)
	return g.reject(playerID, action.ActionType, ErrInvalidAction, "unknown action type")
}

func (g *DominoGame) handlePlay(playerID uuid.UUID, payload map[string]interface{}) ActionResult {
	tile, side, err := parseMovePayload(payload)
	if err != nil {
		return g.reject(playerID, ActionPlay, ErrInvalidAction, err.Error())
	}
	if err := g.Engine.ApplyMove(playerID.String(), tile, side); err != nil {
		return g.rejectRule(playerID, ActionPlay, err)
	}
	g.announcePlay(playerID, engine.Move{Tile: tile, Side: side})
	res := g.outcome()
	g.afterMutation(true)
	res.SessionOver = g.GameOver
	return res
}

func (g *DominoGame) handleDraw(playerID uuid.UUID) ActionResult {
	tile, err := g.Engine.DrawTile(playerID.String())
	if err != nil {
		return g.rejectRule(playerID, ActionDraw, err)
	}
	g.announceDraw(playerID, tile, g.Engine.BoneyardCount())
	res := g.outcome()
	tv := tileView(tile)
	res.Tile = &tv
	g.afterMutation(false)
	return res
}

func (g *DominoGame) handlePass(playerID uuid.UUID) ActionResult {
	if err := g.Engine.PassTurn(playerID.String()); err != nil {
		return g.rejectRule(playerID, ActionPass, err)
	}
	g.announcePass(playerID)
	res := g.outcome()
	g.afterMutation(true)
	res.SessionOver = g.GameOver
	return res
}

// outcome reads the result fields off the engine before afterMutation can
// replace it with the next game.
func (g *DominoGame) outcome() ActionResult {
	res := ActionResult{
		Success:       true,
		BoneyardCount: g.Engine.BoneyardCount(),
		GameOver:      g.Engine.IsTerminal(),
		IsFish:        g.Engine.IsFish,
	}
	if w := g.Engine.WinnerID(); w != "" {
		id := g.engineToPlayer[w]
		res.WinnerID = &id
	}
	return res
}

func (g *DominoGame) rejectRule(playerID uuid.UUID, action string, err error) ActionResult {
	kind := engine.KindOf(err)
	if kind == engine.KindNone {
		log.Printf("Error: Game %s: Unclassified engine error for %s from %s: %v", g.ID, action, playerID, err)
		return g.reject(playerID, action, ErrInvalidAction, err.Error())
	}
	return g.reject(playerID, action, kind.String(), err.Error())
}

// reject reports a failed request to the player.
// Assumes lock is held by caller.
func (g *DominoGame) reject(playerID uuid.UUID, action, kind, msg string) ActionResult {
	log.Printf("Game %s: %s from %s rejected: %s", g.ID, action, playerID, msg)
	g.logAction(playerID, "action_rejected", map[string]interface{}{"action": action, "error": kind})
	g.fireEventToPlayer(playerID, GameEvent{
		Type:    EventPrivateActionFail,
		Payload: map[string]interface{}{"action": action, "error": kind, "message": msg},
	})
	if g.Started {
		g.sendSyncState(playerID)
	}
	return ActionResult{Success: false, Error: kind, Message: msg, BoneyardCount: g.Engine.BoneyardCount()}
}

// announcePlay emits the public event for a placed tile.
// Assumes lock is held by caller.
func (g *DominoGame) announcePlay(playerID uuid.UUID, m engine.Move) {
	tv := tileView(m.Tile)
	left, right, _ := g.Engine.Ends()
	payload := map[string]interface{}{
		"leftEnd":    left,
		"rightEnd":   right,
		"boardSize":  g.Engine.BoardLen(),
		"tilesLeft":  len(g.Engine.HandOf(playerID.String())),
		"turnNumber": g.Engine.TurnNumber,
	}
	g.fireEvent(GameEvent{Type: EventPlayerPlay, User: g.eventUser(playerID), Tile: &tv, Side: m.Side.String(), Payload: payload})
	g.logAction(playerID, string(EventPlayerPlay), map[string]interface{}{"tile": m.Tile.String(), "side": m.Side.String()})
}

// announceDraw emits the public draw (tile hidden) and the private reveal.
// Assumes lock is held by caller.
func (g *DominoGame) announceDraw(playerID uuid.UUID, t engine.Tile, boneyardLeft int) {
	g.fireEvent(GameEvent{
		Type: EventPlayerDraw,
		User: g.eventUser(playerID),
		Payload: map[string]interface{}{
			"boneyardCount": boneyardLeft,
			"tileCount":     len(g.Engine.HandOf(playerID.String())),
		},
	})
	tv := tileView(t)
	g.fireEventToPlayer(playerID, GameEvent{Type: EventPrivateDraw, Tile: &tv})
	g.logAction(playerID, string(EventPlayerDraw), map[string]interface{}{"tile": t.String(), "boneyardCount": boneyardLeft})
}

// announcePass emits the public pass event.
// Assumes lock is held by caller.
func (g *DominoGame) announcePass(playerID uuid.UUID) {
	g.fireEvent(GameEvent{Type: EventPlayerPass, User: g.eventUser(playerID), Payload: map[string]interface{}{"turnNumber": g.Engine.TurnNumber}})
	g.logAction(playerID, string(EventPlayerPass), nil)
}

// currentPlayerID maps the engine's current seat to the service player.
// Assumes lock is held by caller.
func (g *DominoGame) currentPlayerID() uuid.UUID {
	return g.engineToPlayer[g.Engine.CurrentPlayerID()]
}

var errMissingTile = errors.New("missing tile")

// parseMovePayload reads {"tile": "3-5" | {"left":3,"right":5}, "side": "left"|"right"}.
// side defaults to left, which is what an opening play uses.
func parseMovePayload(payload map[string]interface{}) (engine.Tile, engine.Side, error) {
	raw, ok := payload["tile"]
	if !ok || raw == nil {
		return engine.EmptyTile, engine.SideLeft, errMissingTile
	}
	tile, err := parseTileValue(raw)
	if err != nil {
		return engine.EmptyTile, engine.SideLeft, err
	}
	side := engine.SideLeft
	if s, ok := payload["side"]; ok && s != nil {
		str, ok := s.(string)
		if !ok {
			return tile, side, fmt.Errorf("side must be a string, got %T", s)
		}
		if side, err = engine.ParseSide(str); err != nil {
			return tile, side, err
		}
	}
	return tile, side, nil
}

func parseTileValue(raw interface{}) (engine.Tile, error) {
	switch v := raw.(type) {
	case string:
		return engine.ParseTile(v)
	case map[string]interface{}:
		a, err := pipValue(v["left"])
		if err != nil {
			return engine.EmptyTile, fmt.Errorf("tile left: %w", err)
		}
		b, err := pipValue(v["right"])
		if err != nil {
			return engine.EmptyTile, fmt.Errorf("tile right: %w", err)
		}
		return engine.NewTile(a, b), nil
	}
	return engine.EmptyTile, fmt.Errorf("unsupported tile value %T", raw)
}

func pipValue(raw interface{}) (uint8, error) {
	var n int64
	switch v := raw.(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("pip %v is not whole", v)
		}
		n = int64(v)
	case int:
		n = int64(v)
	case json.Number:
		var err error
		if n, err = v.Int64(); err != nil {
			return 0, err
		}
	case string:
		var err error
		if n, err = strconv.ParseInt(v, 10, 8); err != nil {
			return 0, err
		}
	case nil:
		return 0, errors.New("missing pip")
	default:
		return 0, fmt.Errorf("unsupported pip %T", raw)
	}
	if n < 0 || n > int64(engine.MaxPip) {
		return 0, fmt.Errorf("pip %d out of range", n)
	}
	return uint8(n), nil
}
