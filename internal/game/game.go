// internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/domino/engine"
	"github.com/jason-s-yu/domino/engine/agent"
	"github.com/jason-s-yu/domino/internal/cache"
	"github.com/jason-s-yu/domino/internal/database"
	"github.com/jason-s-yu/domino/internal/models"
	log "github.com/sirupsen/logrus"
)

// ErrAlreadyStarted is returned by Start on a game that has already begun.
var ErrAlreadyStarted = errors.New("game already started")

// OnSessionEndFunc is called once the last game of a session has been scored.
type OnSessionEndFunc func(g *DominoGame, leaderboard []Standing)

// GameEventType represents the type of a game-related event broadcast via WebSockets.
type GameEventType string

const (
	EventGameStart         GameEventType = "game_start"          // Public: a game of the session was dealt.
	EventPlayerPlay        GameEventType = "player_play"         // Public: a tile was placed.
	EventPlayerDraw        GameEventType = "player_draw"         // Public: player drew from the boneyard (tile hidden).
	EventPrivateDraw       GameEventType = "private_draw"        // Private: the tile that was drawn.
	EventPlayerPass        GameEventType = "player_pass"         // Public: player passed.
	EventPlayerTimeout     GameEventType = "player_timeout"      // Public: turn timer expired, the server plays for them.
	EventGamePlayerTurn    GameEventType = "game_player_turn"    // Public: whose turn it is.
	EventPrivateSyncState  GameEventType = "private_sync_state"  // Private: full view for one player.
	EventPrivateActionFail GameEventType = "private_action_fail" // Private: a request was rejected.
	EventGameOver          GameEventType = "game_over"           // Public: one game of the session finished.
	EventSessionEnd        GameEventType = "session_end"         // Public: session finished, with results.
)

// Action types accepted by HandlePlayerAction.
const (
	ActionPlay = "action_play"
	ActionDraw = "action_draw"
	ActionPass = "action_pass"
)

// ErrInvalidAction classifies a malformed request (bad payload, unknown action).
// Rule violations use the engine's kinds instead.
const ErrInvalidAction = "InvalidAction"

// EventUser identifies a user within a GameEvent payload.
type EventUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username,omitempty"`
}

// GameEvent is the standard structure for broadcasting game state changes and actions.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	User    *EventUser             `json:"user,omitempty"`
	Tile    *TileView              `json:"tile,omitempty"`
	Side    string                 `json:"side,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *ObfGameState          `json:"state,omitempty"`
}

// ActionResult is the outcome of HandlePlayerAction. Error carries the
// classification string (InvalidTurn, IllegalPass, ..., or InvalidAction).
type ActionResult struct {
	Success       bool       `json:"success"`
	Error         string     `json:"error,omitempty"`
	Message       string     `json:"message,omitempty"`
	Tile          *TileView  `json:"tile,omitempty"` // the drawn tile, only for action_draw
	BoneyardCount int        `json:"boneyardCount"`
	GameOver      bool       `json:"gameOver,omitempty"`
	IsFish        bool       `json:"isFish,omitempty"`
	WinnerID      *uuid.UUID `json:"winnerId,omitempty"`
	SessionOver   bool       `json:"sessionOver,omitempty"`
}

// Standing is one leaderboard row of a session.
type Standing struct {
	PlayerID uuid.UUID `json:"playerId"`
	Username string    `json:"username"`
	Wins     int       `json:"wins"`
}

// GameSummary is one finished game of a session.
type GameSummary struct {
	GameNumber int            `json:"gameNumber"`
	WinnerID   *uuid.UUID     `json:"winnerId,omitempty"`
	IsFish     bool           `json:"isFish"`
	Pips       map[string]int `json:"pips"`
}

// DominoGame runs one session (GamesPerSession games) for a fixed roster.
// Every exported method that does not take the lock itself says so.
type DominoGame struct {
	ID        uuid.UUID // Unique identifier for this game instance.
	GroupID   string    // Group (chat, table) the session belongs to.
	SessionID uuid.UUID // Identifier the results are persisted under.

	HouseRules HouseRules
	Players    []*models.Player // Roster in lobby order.
	Seed       uint64           // Session seed; chosen at Start when zero.

	// Engine integration. Engine is the authoritative state of the current game.
	Session        *engine.Session
	Engine         engine.GameState
	GameNumber     int
	engineToPlayer map[string]uuid.UUID

	botPolicy      agent.Policy
	takeoverPolicy agent.Policy

	// Turn management. TurnID changes every time the current turn's timers are armed.
	TurnID       int
	TurnDuration time.Duration
	BotDelay     time.Duration
	turnTimer    *time.Timer
	autoTimer    *time.Timer
	actionIndex  int

	Started    bool // Session has been dealt.
	GameOver   bool // Session is over; no further actions are accepted.
	StartedAt  time.Time
	FinishedAt time.Time

	Mu sync.Mutex

	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)
	OnSessionEnd        OnSessionEndFunc
}

// NewDominoGame creates a game for the roster. Nothing is dealt until Start.
func NewDominoGame(groupID string, players []*models.Player, rules HouseRules) *DominoGame {
	return &DominoGame{
		ID:             uuid.New(),
		GroupID:        groupID,
		SessionID:      uuid.New(),
		HouseRules:     rules,
		Players:        players,
		engineToPlayer: make(map[string]uuid.UUID, len(players)),
		TurnDuration:   time.Duration(rules.TurnTimerSec) * time.Second,
		BotDelay:       time.Duration(rules.BotDelayMs) * time.Millisecond,
	}
}

// Start deals the first game of the session and begins the turn cycle.
func (g *DominoGame) Start() error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Started || g.GameOver {
		return ErrAlreadyStarted
	}
	rules, err := g.HouseRules.engineRules()
	if err != nil {
		return fmt.Errorf("game %s: %w", g.ID, err)
	}
	level, err := agent.ParseLevel(g.HouseRules.BotLevel)
	if err != nil {
		return fmt.Errorf("game %s: %w", g.ID, err)
	}

	roster := make([]string, len(g.Players))
	for i, p := range g.Players {
		roster[i] = p.ID.String()
		g.engineToPlayer[roster[i]] = p.ID
	}
	if g.Seed == 0 {
		g.Seed = uint64(time.Now().UnixNano())
	}
	sess, first, err := engine.StartSession(g.Seed, roster, g.HouseRules.GamesPerSession, rules)
	if err != nil {
		return fmt.Errorf("game %s: start session: %w", g.ID, err)
	}

	g.Session = sess
	g.Engine = first
	g.GameNumber = 1
	g.botPolicy = agent.NewPolicy(level, g.Seed^0xB07)
	g.takeoverPolicy = agent.FirstLegal
	g.Started = true
	g.StartedAt = time.Now()
	log.Printf("Game %s: Session started for group %s with %d players, %d games.", g.ID, g.GroupID, len(g.Players), sess.TotalGames)

	g.persistPlayers()
	g.beginGame()
	return nil
}

// beginGame announces the freshly dealt g.Engine and starts its first turn.
// Assumes lock is held by caller.
func (g *DominoGame) beginGame() {
	seats := g.Engine.PlayerIDs()
	order := make([]uuid.UUID, len(seats))
	for i, id := range seats {
		order[i] = g.engineToPlayer[id]
	}
	payload := map[string]interface{}{
		"gameNumber":    g.GameNumber,
		"totalGames":    g.Session.TotalGames,
		"seatOrder":     order,
		"firstPlayerId": g.currentPlayerID(),
	}
	g.logAction(uuid.Nil, string(EventGameStart), payload)
	g.fireEvent(GameEvent{Type: EventGameStart, Payload: payload})

	g.startTurn()
	g.broadcastSyncStateToAll()
	g.saveSnapshot()
}

// afterMutation runs once per successful engine change: ends the game on a
// terminal state, otherwise moves the turn cycle on and syncs every client.
// Assumes lock is held by caller.
func (g *DominoGame) afterMutation(turnEnded bool) {
	if g.Engine.IsTerminal() {
		g.endCurrentGame()
		return
	}
	if turnEnded {
		g.startTurn()
	} else if !g.isAutoSeat(g.currentPlayerID()) {
		// A draw earns the player a fresh timer.
		g.armTurn()
	}
	g.broadcastSyncStateToAll()
	g.saveSnapshot()
}

// endCurrentGame records the finished game into the session and deals the
// next one, or ends the session.
// Assumes lock is held by caller.
func (g *DominoGame) endCurrentGame() {
	g.stopTimers()
	g.Engine.ClearTurnDeadline()

	if err := g.Session.RecordGameResult(g.Engine.Result()); err != nil {
		log.Printf("Error: Game %s: Recording result of game %d: %v", g.ID, g.GameNumber, err)
		g.endSession()
		return
	}
	results := g.Session.Results()
	summary := g.summarize(results[len(results)-1])
	nextGame := !g.Session.IsComplete()

	payload := map[string]interface{}{
		"gameNumber": summary.GameNumber,
		"isFish":     summary.IsFish,
		"pips":       summary.Pips,
		"nextGame":   nextGame,
	}
	var winner *EventUser
	if summary.WinnerID != nil {
		payload["winnerId"] = *summary.WinnerID
		winner = g.eventUser(*summary.WinnerID)
	}
	g.logAction(uuid.Nil, string(EventGameOver), payload)
	g.broadcastSyncStateToAll()
	g.fireEvent(GameEvent{Type: EventGameOver, User: winner, Payload: payload})
	if winner != nil {
		log.Printf("Game %s: Game %d of %d won by %s.", g.ID, summary.GameNumber, g.Session.TotalGames, winner.Username)
	} else {
		log.Printf("Game %s: Game %d of %d blocked (fish).", g.ID, summary.GameNumber, g.Session.TotalGames)
	}

	if !nextGame {
		g.endSession()
		return
	}
	next, err := g.Session.NextGame()
	if err != nil {
		log.Printf("Error: Game %s: Dealing game %d: %v", g.ID, g.GameNumber+1, err)
		g.endSession()
		return
	}
	g.Engine = next
	g.GameNumber++
	g.beginGame()
}

// endSession seals the session, persists it and announces the results.
// Assumes lock is held by caller.
func (g *DominoGame) endSession() {
	if g.GameOver {
		return
	}
	g.GameOver = true
	g.Started = false
	g.FinishedAt = time.Now()
	g.stopTimers()

	results := g.Results()
	board := g.Leaderboard()
	winners := make([]uuid.UUID, 0, 1)
	for _, id := range g.Session.Winners() {
		winners = append(winners, g.engineToPlayer[id])
	}

	g.logAction(uuid.Nil, string(EventSessionEnd), map[string]interface{}{
		"games": len(results),
		"fish":  g.Session.FishCount(),
	})
	g.persistSession(results)
	g.fireEvent(GameEvent{
		Type: EventSessionEnd,
		Payload: map[string]interface{}{
			"results":     results,
			"leaderboard": board,
			"winners":     winners,
			"fishCount":   g.Session.FishCount(),
		},
	})
	g.saveSnapshot()
	log.Printf("Game %s: Session over after %d games. Leaderboard: %+v", g.ID, len(results), board)

	if g.OnSessionEnd != nil {
		g.OnSessionEnd(g, board)
	}
}

// Results returns the finished games of the session so far.
// Assumes lock is held by caller.
func (g *DominoGame) Results() []GameSummary {
	if g.Session == nil {
		return nil
	}
	rs := g.Session.Results()
	out := make([]GameSummary, len(rs))
	for i, r := range rs {
		out[i] = g.summarize(r)
	}
	return out
}

// Leaderboard returns session standings, most wins first, ties in roster order.
// Assumes lock is held by caller.
func (g *DominoGame) Leaderboard() []Standing {
	if g.Session == nil {
		return nil
	}
	st := g.Session.Leaderboard()
	out := make([]Standing, len(st))
	for i, s := range st {
		id := g.engineToPlayer[s.PlayerID]
		out[i] = Standing{PlayerID: id, Username: g.username(id), Wins: s.Wins}
	}
	return out
}

func (g *DominoGame) summarize(r engine.GameResult) GameSummary {
	s := GameSummary{GameNumber: r.GameNumber, IsFish: r.IsFish, Pips: r.Pips}
	if r.WinnerID != "" {
		id := g.engineToPlayer[r.WinnerID]
		s.WinnerID = &id
	}
	return s
}

// HandleDisconnect marks a player as disconnected. If it is their turn and
// there is no turn timer to rescue the game, the server plays for them.
// Assumes lock is held by caller.
func (g *DominoGame) HandleDisconnect(playerID uuid.UUID) {
	p := g.getPlayerByID(playerID)
	if p == nil {
		log.Printf("Game %s: Disconnected player %s not found.", g.ID, playerID)
		return
	}
	if !p.Connected {
		return
	}
	p.Connected = false
	log.Printf("Game %s: Player %s disconnected.", g.ID, playerID)
	g.logAction(playerID, "player_disconnect", nil)
	g.broadcastSyncStateToAll()

	if g.Started && !g.GameOver && g.currentPlayerID() == playerID && g.TurnDuration <= 0 {
		log.Printf("Game %s: Current player %s left with no turn timer, taking over.", g.ID, playerID)
		g.armTurn()
	}
}

// HandleReconnect marks a player as connected and sends them the current state.
// Returns false if the player is not part of this game.
// Assumes lock is held by caller.
func (g *DominoGame) HandleReconnect(playerID uuid.UUID) bool {
	p := g.getPlayerByID(playerID)
	if p == nil {
		log.Printf("Game %s: Reconnecting player %s not found in game.", g.ID, playerID)
		g.logAction(playerID, "player_reconnect_fail", map[string]interface{}{"reason": "player not found"})
		return false
	}
	wasConnected := p.Connected
	p.Connected = true
	g.logAction(playerID, "player_reconnect", map[string]interface{}{"username": p.Name()})

	if !wasConnected && g.Started && !g.GameOver && g.currentPlayerID() == playerID && !p.IsBot {
		log.Printf("Game %s: Player %s reconnected on their turn. Rearming timer.", g.ID, playerID)
		g.armTurn()
	}
	g.broadcastSyncStateToAll()
	return true
}

// fireEvent broadcasts an event to all connected players via the BroadcastFn callback.
// Assumes lock is held by caller.
func (g *DominoGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	} else {
		log.Debugf("Game %s: BroadcastFn is nil, dropping event %s.", g.ID, ev.Type)
	}
}

// fireEventToPlayer sends an event to one connected human player.
// Assumes lock is held by caller.
func (g *DominoGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		log.Debugf("Game %s: BroadcastToPlayerFn is nil, dropping private event %s.", g.ID, ev.Type)
		return
	}
	p := g.getPlayerByID(playerID)
	if p != nil && p.Connected && !p.IsBot {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

// sendSyncState sends the player their projection of the current game.
// Assumes lock is held by caller.
func (g *DominoGame) sendSyncState(playerID uuid.UUID) {
	state := g.GetCurrentObfuscatedGameState(playerID)
	g.fireEventToPlayer(playerID, GameEvent{Type: EventPrivateSyncState, State: &state})
}

// broadcastSyncStateToAll sends each connected player their own projection.
// Assumes lock is held by caller.
func (g *DominoGame) broadcastSyncStateToAll() {
	for _, p := range g.Players {
		if p.Connected && !p.IsBot {
			g.sendSyncState(p.ID)
		}
	}
}

// getPlayerByID finds a player struct by ID within the game's Players slice.
// Assumes lock is held by caller.
func (g *DominoGame) getPlayerByID(playerID uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (g *DominoGame) username(id uuid.UUID) string {
	if p := g.getPlayerByID(id); p != nil {
		return p.Name()
	}
	return ""
}

func (g *DominoGame) eventUser(id uuid.UUID) *EventUser {
	return &EventUser{ID: id, Username: g.username(id)}
}

// logAction publishes one entry of the action log to Redis.
// Assumes lock is held by caller.
func (g *DominoGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	if cache.Rdb == nil {
		return
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		GameNumber:    g.GameNumber,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			log.Printf("Error: Game %s: Failed publishing action %d ('%s') to Redis: %v", rec.GameID, rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}

// saveSnapshot caches the spectator view so the game can be read after the
// process restarts or from another instance.
// Assumes lock is held by caller.
func (g *DominoGame) saveSnapshot() {
	if cache.Rdb == nil {
		return
	}
	snap := g.GetCurrentObfuscatedGameState(uuid.Nil)
	go func(id uuid.UUID) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.SaveGameSnapshot(ctx, id, snap); err != nil {
			log.Printf("Error: Game %s: Failed caching snapshot: %v", id, err)
		}
	}(g.ID)
}

// persistPlayers records the roster under the group so leaderboard names resolve.
// Assumes lock is held by caller.
func (g *DominoGame) persistPlayers() {
	store := database.DB
	if store == nil {
		return
	}
	recs := g.playerRecords()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, r := range recs {
			if err := store.EnsurePlayer(ctx, r); err != nil {
				log.Printf("Error: Game %s: Failed saving player %s: %v", g.ID, r.ID, err)
			}
		}
	}()
}

// persistSession writes the finished session and its games.
// Assumes lock is held by caller.
func (g *DominoGame) persistSession(results []GameSummary) {
	store := database.DB
	if store == nil || len(results) == 0 {
		return
	}
	rec := database.SessionRecord{
		ID:         g.SessionID,
		GroupID:    g.GroupID,
		Players:    g.playerRecords(),
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
	}
	for _, r := range results {
		gr := database.GameRecord{GameNumber: r.GameNumber, IsFish: r.IsFish}
		if r.WinnerID != nil {
			gr.WinnerID = *r.WinnerID
		}
		rec.Games = append(rec.Games, gr)
	}
	go func(rec database.SessionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.SaveSession(ctx, rec); err != nil {
			log.Printf("Error: Game %s: Failed saving session %s: %v", g.ID, rec.ID, err)
			return
		}
		log.Printf("Game %s: Session %s saved (%d games).", g.ID, rec.ID, len(rec.Games))
	}(rec)
}

func (g *DominoGame) playerRecords() []database.PlayerRecord {
	recs := make([]database.PlayerRecord, len(g.Players))
	for i, p := range g.Players {
		recs[i] = database.PlayerRecord{ID: p.ID, GroupID: g.GroupID, DisplayName: p.Name(), IsBot: p.IsBot}
	}
	return recs
}
