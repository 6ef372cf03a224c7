// internal/game/takeover.go
package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/domino/engine/agent"
	log "github.com/sirupsen/logrus"
)

// startTurn arms the timers for the engine's current player and announces the turn.
// Assumes lock is held by caller.
func (g *DominoGame) startTurn() {
	if g.GameOver || g.Engine.IsTerminal() {
		g.stopTimers()
		return
	}
	g.armTurn()
	g.broadcastPlayerTurn()
}

// armTurn (re)starts the current turn's timers under a new TurnID, so any
// callback already queued for an older TurnID becomes a no-op.
// Assumes lock is held by caller.
func (g *DominoGame) armTurn() {
	g.stopTimers()
	g.TurnID++
	g.Engine.ClearTurnDeadline()
	if g.GameOver || !g.Started || g.Engine.IsTerminal() {
		return
	}
	current := g.currentPlayerID()
	p := g.getPlayerByID(current)
	if p == nil {
		log.Printf("Game %s: Cannot arm turn, current player %s not found.", g.ID, current)
		return
	}
	switch {
	case p.IsBot:
		g.scheduleAutoTurn(current, g.botPolicy, g.BotDelay)
	case !p.Connected && g.TurnDuration <= 0:
		g.scheduleAutoTurn(current, g.takeoverPolicy, g.BotDelay)
	default:
		g.scheduleTurnTimer(current)
	}
}

// isAutoSeat reports whether the server plays this seat without waiting for a timer.
// Assumes lock is held by caller.
func (g *DominoGame) isAutoSeat(id uuid.UUID) bool {
	p := g.getPlayerByID(id)
	return p != nil && p.IsBot
}

// stopTimers cancels the pending turn timer and auto turn.
// Assumes lock is held by caller.
func (g *DominoGame) stopTimers() {
	if g.turnTimer != nil {
		g.turnTimer.Stop()
		g.turnTimer = nil
	}
	if g.autoTimer != nil {
		g.autoTimer.Stop()
		g.autoTimer = nil
	}
}

// scheduleTurnTimer starts the human turn timer and publishes its deadline.
// Assumes lock is held by caller.
func (g *DominoGame) scheduleTurnTimer(playerID uuid.UUID) {
	if g.TurnDuration <= 0 {
		return
	}
	g.Engine.SetTurnDeadline(time.Now().Add(g.TurnDuration))
	curTurnID := g.TurnID
	g.turnTimer = time.AfterFunc(g.TurnDuration, func() {
		go func(expectedTurnID int) {
			g.Mu.Lock()
			defer g.Mu.Unlock()

			if !g.GameOver && g.Started && g.TurnID == expectedTurnID {
				log.Printf("Game %s, Turn %d: Timer fired for player %s.", g.ID, g.TurnID, playerID)
				g.handleTimeout(playerID)
			}
		}(curTurnID)
	})
}

// scheduleAutoTurn plays playerID's turn with policy after delay.
// Assumes lock is held by caller.
func (g *DominoGame) scheduleAutoTurn(playerID uuid.UUID, policy agent.Policy, delay time.Duration) {
	curTurnID := g.TurnID
	g.autoTimer = time.AfterFunc(delay, func() {
		go func(expectedTurnID int) {
			g.Mu.Lock()
			defer g.Mu.Unlock()

			if !g.GameOver && g.Started && g.TurnID == expectedTurnID {
				g.takeTurn(playerID, policy)
			}
		}(curTurnID)
	})
}

// handleTimeout plays the rest of a timed-out player's turn for them.
// Assumes lock is held by caller.
func (g *DominoGame) handleTimeout(playerID uuid.UUID) {
	log.Printf("Game %s: Player %s timed out on turn %d.", g.ID, playerID, g.Engine.TurnNumber)
	g.logAction(playerID, string(EventPlayerTimeout), map[string]interface{}{"turn": g.Engine.TurnNumber})
	g.fireEvent(GameEvent{
		Type:    EventPlayerTimeout,
		User:    g.eventUser(playerID),
		Payload: map[string]interface{}{"turnNumber": g.Engine.TurnNumber},
	})
	g.takeTurn(playerID, g.takeoverPolicy)
}

// takeTurn finishes playerID's turn through agent.PlayTurn and emits an
// event per step, exactly as if the moves had come from a client.
// Assumes lock is held by caller.
func (g *DominoGame) takeTurn(playerID uuid.UUID, policy agent.Policy) {
	if g.currentPlayerID() != playerID {
		log.Printf("Game %s: Skipping automatic turn for %s, not their turn.", g.ID, playerID)
		return
	}
	boneyard := g.Engine.BoneyardCount()
	steps, err := agent.PlayTurn(&g.Engine, playerID.String(), policy)
	turnEnded := false
	for _, s := range steps {
		switch s.Kind {
		case agent.StepDraw:
			boneyard--
			g.announceDraw(playerID, s.Tile, boneyard)
		case agent.StepPlay:
			g.announcePlay(playerID, s.Move)
			turnEnded = true
		case agent.StepPass:
			g.announcePass(playerID)
			turnEnded = true
		}
	}
	if err != nil {
		log.Printf("Error: Game %s: Automatic turn for %s failed after %d steps: %v", g.ID, playerID, len(steps), err)
	}
	if len(steps) == 0 {
		return
	}
	g.afterMutation(turnEnded)
}

// broadcastPlayerTurn notifies all players of the current player's turn.
// Assumes lock is held by caller.
func (g *DominoGame) broadcastPlayerTurn() {
	if g.GameOver || !g.Started || g.Engine.IsTerminal() {
		return
	}
	current := g.currentPlayerID()
	payload := map[string]interface{}{
		"turnNumber": g.Engine.TurnNumber,
		"gameNumber": g.GameNumber,
	}
	if dl, ok := g.Engine.Deadline(); ok {
		payload["deadline"] = dl.UnixMilli()
	}
	g.fireEvent(GameEvent{Type: EventGamePlayerTurn, User: g.eventUser(current), Payload: payload})
	g.logAction(current, string(EventGamePlayerTurn), map[string]interface{}{"turn": g.Engine.TurnNumber})
}
