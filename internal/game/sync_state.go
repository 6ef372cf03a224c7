// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	engine "github.com/jason-s-yu/domino/engine"
)

// TileView is a tile as sent to clients.
type TileView struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

func tileView(t engine.Tile) TileView {
	return TileView{Left: int(t.Low()), Right: int(t.High())}
}

// BoardTileView is a placed tile with the values it exposes on each side.
type BoardTileView struct {
	Tile         TileView `json:"tile"`
	ExposedLeft  int      `json:"exposedLeft"`
	ExposedRight int      `json:"exposedRight"`
}

// MoveView is one legal move of the requesting player.
type MoveView struct {
	Tile TileView `json:"tile"`
	Side string   `json:"side"`
}

// ObfPlayerState represents one seat, obfuscated for a specific observer.
type ObfPlayerState struct {
	PlayerID       uuid.UUID `json:"playerId"`
	Username       string    `json:"username"`
	IsBot          bool      `json:"isBot"`
	Connected      bool      `json:"connected"`
	TileCount      int       `json:"tileCount"`
	PassedLastTurn bool      `json:"passedLastTurn"`
	IsCurrentTurn  bool      `json:"isCurrentTurn"`
	// Hand is populated only for the player requesting the state.
	Hand []TileView `json:"hand,omitempty"`
}

// ObfGameState represents the game as one observer may see it.
type ObfGameState struct {
	GameID          uuid.UUID        `json:"gameId"`
	GroupID         string           `json:"groupId"`
	GameNumber      int              `json:"gameNumber"`
	TotalGames      int              `json:"totalGames"`
	Status          string           `json:"status"`
	Started         bool             `json:"started"`
	GameOver        bool             `json:"gameOver"` // the whole session is over
	CurrentPlayerID uuid.UUID        `json:"currentPlayerId"`
	TurnID          int              `json:"turnId"`
	TurnNumber      int              `json:"turnNumber"`
	TurnDeadline    int64            `json:"turnDeadline,omitempty"` // unix millis
	Board           []BoardTileView  `json:"board"`
	FirstTileIndex  int              `json:"firstTileIndex"`
	LeftEnd         *int             `json:"leftEnd"`
	RightEnd        *int             `json:"rightEnd"`
	BoneyardCount   int              `json:"boneyardCount"`
	Players         []ObfPlayerState `json:"players"`
	LegalMoves      []MoveView       `json:"legalMoves,omitempty"`
	WinnerID        *uuid.UUID       `json:"winnerId,omitempty"`
	IsFish          bool             `json:"isFish"`
	HouseRules      HouseRules       `json:"houseRules"`
}

// GetCurrentObfuscatedGameState builds forUser's view of the current game.
// uuid.Nil gives the spectator view with every hand hidden.
// This function assumes the game lock is HELD by the caller.
func (g *DominoGame) GetCurrentObfuscatedGameState(forUser uuid.UUID) ObfGameState {
	obf := ObfGameState{
		GameID:         g.ID,
		GroupID:        g.GroupID,
		GameNumber:     g.GameNumber,
		Started:        g.Started,
		GameOver:       g.GameOver,
		TurnID:         g.TurnID,
		Board:          []BoardTileView{},
		FirstTileIndex: -1,
		HouseRules:     g.HouseRules,
	}
	if g.Session == nil {
		obf.Status = engine.StatusWaiting.String()
		obf.Players = make([]ObfPlayerState, len(g.Players))
		for i, p := range g.Players {
			obf.Players[i] = ObfPlayerState{PlayerID: p.ID, Username: p.Name(), IsBot: p.IsBot, Connected: p.Connected}
		}
		return obf
	}

	observer := ""
	if forUser != uuid.Nil {
		observer = forUser.String()
	}
	v := g.Engine.ProjectFor(observer)

	obf.TotalGames = g.Session.TotalGames
	obf.Status = v.Status.String()
	obf.TurnNumber = v.TurnNumber
	obf.TurnDeadline = v.TurnDeadline
	obf.FirstTileIndex = v.FirstTileIndex
	obf.BoneyardCount = v.BoneyardCount
	obf.IsFish = v.IsFish
	if v.Status == engine.StatusActive {
		obf.CurrentPlayerID = g.engineToPlayer[v.CurrentPlayer]
	}
	if v.WinnerID != "" {
		id := g.engineToPlayer[v.WinnerID]
		obf.WinnerID = &id
	}
	if v.HasEnds {
		l, r := int(v.LeftEnd), int(v.RightEnd)
		obf.LeftEnd, obf.RightEnd = &l, &r
	}

	obf.Board = make([]BoardTileView, len(v.Board))
	for i, bt := range v.Board {
		obf.Board[i] = BoardTileView{Tile: tileView(bt.Tile), ExposedLeft: int(bt.Left), ExposedRight: int(bt.Right)}
	}
	for _, m := range v.LegalMoves {
		obf.LegalMoves = append(obf.LegalMoves, MoveView{Tile: tileView(m.Tile), Side: m.Side.String()})
	}

	obf.Players = make([]ObfPlayerState, len(v.Players))
	for i, sv := range v.Players {
		id := g.engineToPlayer[sv.ID]
		ps := ObfPlayerState{
			PlayerID:       id,
			TileCount:      sv.TileCount,
			PassedLastTurn: sv.PassedLastTurn,
			IsCurrentTurn:  sv.IsCurrent,
		}
		if p := g.getPlayerByID(id); p != nil {
			ps.Username = p.Name()
			ps.IsBot = p.IsBot
			ps.Connected = p.Connected
		}
		if sv.Hand != nil {
			ps.Hand = make([]TileView, len(sv.Hand))
			for j, t := range sv.Hand {
				ps.Hand[j] = tileView(t)
			}
		}
		obf.Players[i] = ps
	}
	return obf
}

// LegalMovesFor returns the player's legal moves in the current game.
// Assumes lock is held by caller.
func (g *DominoGame) LegalMovesFor(playerID uuid.UUID) []MoveView {
	moves := g.Engine.LegalMoves(playerID.String())
	out := make([]MoveView, len(moves))
	for i, m := range moves {
		out[i] = MoveView{Tile: tileView(m.Tile), Side: m.Side.String()}
	}
	return out
}
