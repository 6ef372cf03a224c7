// Package engine implements the domino rules and session scoring.
//
// The package is pure: no I/O, no goroutines, no locking. GameState is a flat
// value type, so a plain assignment is a complete snapshot. Callers that share
// a game between goroutines must serialise mutations themselves.
package engine

import (
	"fmt"
	"math"
	"time"
)

const (
	MaxPlayers = 6
	SetSize    = 28
	MinPlayers = 2
)

// PlayerState holds one seat's identity, private hand and pass flag.
type PlayerState struct {
	ID             string
	Hand           [SetSize]Tile
	HandLen        uint8
	PassedLastTurn bool
}

// Tiles returns the hand as a slice view in hand order.
func (p *PlayerState) Tiles() []Tile { return p.Hand[:p.HandLen] }

// indexOf returns the hand position of t, or -1.
func (p *PlayerState) indexOf(t Tile) int {
	for i := uint8(0); i < p.HandLen; i++ {
		if p.Hand[i] == t {
			return int(i)
		}
	}
	return -1
}

// removeAt deletes the tile at i, keeping hand order.
func (p *PlayerState) removeAt(i int) {
	copy(p.Hand[i:p.HandLen], p.Hand[i+1:p.HandLen])
	p.HandLen--
	p.Hand[p.HandLen] = EmptyTile
}

// boardOrigin is where the first placed tile lives inside BoardTiles.
const boardOrigin = SetSize

// GameState holds the complete, self-contained state of one domino game.
type GameState struct {
	Players       [MaxPlayers]PlayerState
	NumPlayers    uint8
	CurrentPlayer uint8

	// Board is a ring laid out around boardOrigin: left plays grow BoardStart
	// downwards, right plays grow BoardEnd upwards.
	BoardTiles [2 * SetSize]BoardTile
	BoardStart uint8
	BoardEnd   uint8

	Boneyard [SetSize]Tile
	BoneLen  uint8

	Status            Status
	Winner            int8 // seat index, -1 = none
	IsFish            bool
	ConsecutivePasses uint8
	TurnNumber        uint16
	TurnDeadline      int64 // unix millis, 0 = unset
	Opener            Tile  // qualifying double, EmptyTile if none

	RNG   uint64
	Rules HouseRules
}

// ---------------------------------------------------------------------------
// xorshift64 RNG
// ---------------------------------------------------------------------------

func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a uniformly distributed number in [0, n).
// Draws above the largest multiple of n are rejected to avoid modulo bias.
func (g *GameState) randN(n uint64) uint64 {
	limit := math.MaxUint64 - math.MaxUint64%n
	for {
		if x := g.nextRand(); x < limit {
			return x % n
		}
	}
}

// ---------------------------------------------------------------------------
// NewGame and Deal
// ---------------------------------------------------------------------------

// NewGame validates the roster and builds an undealt game holding the full set
// in its boneyard. Status is StatusWaiting until Deal is called.
func NewGame(seed uint64, players []string, rules HouseRules) (GameState, error) {
	var g GameState
	n := len(players)
	if n < MinPlayers || n > MaxPlayers {
		return g, fmt.Errorf("%w: need %d-%d players, got %d", ErrInvalidPlayerCount, MinPlayers, MaxPlayers, n)
	}
	hs := rules.handSize(n)
	if hs == 0 || int(hs)*n > SetSize {
		return g, fmt.Errorf("%w: %d players x %d tiles exceeds the %d-tile set", ErrInvalidPlayerCount, n, hs, SetSize)
	}
	seen := make(map[string]bool, n)
	for i, id := range players {
		if id == "" {
			return g, fmt.Errorf("%w: empty player id at seat %d", ErrInvalidRoster, i)
		}
		if seen[id] {
			return g, fmt.Errorf("%w: duplicate player id %q", ErrInvalidRoster, id)
		}
		seen[id] = true
	}

	g.RNG = seed
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}
	g.Rules = rules
	g.NumPlayers = uint8(n)
	g.Winner = -1
	g.Opener = EmptyTile
	g.BoardStart = boardOrigin
	g.BoardEnd = boardOrigin

	for i := range g.Players {
		for j := range g.Players[i].Hand {
			g.Players[i].Hand[j] = EmptyTile
		}
	}
	for i, id := range players {
		g.Players[i].ID = id
	}

	g.Boneyard = FullSet()
	g.BoneLen = SetSize
	g.Status = StatusWaiting
	return g, nil
}

// Deal shuffles the set, deals each seat its hand in turn order, leaves the
// remainder as the boneyard and picks the opening player.
func (g *GameState) Deal() error {
	if g.Status != StatusWaiting {
		return fmt.Errorf("deal: game is %s", g.Status)
	}

	// Fisher-Yates shuffle.
	for i := int(g.BoneLen) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		g.Boneyard[i], g.Boneyard[j] = g.Boneyard[j], g.Boneyard[i]
	}

	hs := g.Rules.handSize(int(g.NumPlayers))
	for p := uint8(0); p < g.NumPlayers; p++ {
		for c := uint8(0); c < hs; c++ {
			g.BoneLen--
			g.Players[p].Hand[c] = g.Boneyard[g.BoneLen]
			g.Boneyard[g.BoneLen] = EmptyTile
		}
		g.Players[p].HandLen = hs
	}

	seat, opener := firstPlayerPolicy(g.Rules.FirstPlayer)(g)
	g.CurrentPlayer = seat
	g.Opener = opener
	g.Status = StatusActive
	return nil
}

// DealGame constructs and deals a game in one step.
func DealGame(seed uint64, players []string, rules HouseRules) (GameState, error) {
	g, err := NewGame(seed, players, rules)
	if err != nil {
		return g, err
	}
	if err := g.Deal(); err != nil {
		return g, err
	}
	return g, nil
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// IsTerminal returns true when the game is over.
func (g *GameState) IsTerminal() bool { return g.Status == StatusFinished }

// SeatOf returns the seat index of playerID.
func (g *GameState) SeatOf(playerID string) (uint8, bool) {
	for i := uint8(0); i < g.NumPlayers; i++ {
		if g.Players[i].ID == playerID {
			return i, true
		}
	}
	return 0, false
}

// CurrentPlayerID returns the id of the player whose turn it is.
func (g *GameState) CurrentPlayerID() string {
	if g.NumPlayers == 0 {
		return ""
	}
	return g.Players[g.CurrentPlayer].ID
}

// WinnerID returns the winner's id, or "" when there is none.
func (g *GameState) WinnerID() string {
	if g.Winner < 0 {
		return ""
	}
	return g.Players[g.Winner].ID
}

// PlayerIDs returns the roster in seat order.
func (g *GameState) PlayerIDs() []string {
	ids := make([]string, g.NumPlayers)
	for i := range ids {
		ids[i] = g.Players[i].ID
	}
	return ids
}

// HandOf returns a copy of playerID's hand, or nil for an unknown player.
func (g *GameState) HandOf(playerID string) []Tile {
	seat, ok := g.SeatOf(playerID)
	if !ok {
		return nil
	}
	out := make([]Tile, g.Players[seat].HandLen)
	copy(out, g.Players[seat].Tiles())
	return out
}

// NextPlayer returns the seat after current in turn order.
func (g *GameState) NextPlayer(current uint8) uint8 {
	return (current + 1) % g.NumPlayers
}

// BoardLen returns the number of tiles on the board.
func (g *GameState) BoardLen() int { return int(g.BoardEnd) - int(g.BoardStart) }

// Board returns the chain left to right as a slice view.
func (g *GameState) Board() []BoardTile { return g.BoardTiles[g.BoardStart:g.BoardEnd] }

// FirstTileIndex returns the position in Board() of the tile placed first, or -1.
func (g *GameState) FirstTileIndex() int {
	if g.BoardLen() == 0 {
		return -1
	}
	return boardOrigin - int(g.BoardStart)
}

// Ends returns the exposed values at the two open ends. ok is false on an empty board.
func (g *GameState) Ends() (left, right uint8, ok bool) {
	if g.BoardLen() == 0 {
		return 0, 0, false
	}
	return g.BoardTiles[g.BoardStart].Left, g.BoardTiles[g.BoardEnd-1].Right, true
}

// BoneyardCount returns the number of undrawn tiles.
func (g *GameState) BoneyardCount() int { return int(g.BoneLen) }

// ---------------------------------------------------------------------------
// Turn deadline
// ---------------------------------------------------------------------------

// SetTurnDeadline records when the current turn expires. The engine never acts
// on it; supervisors read it back through DeadlineExpired or the player view.
func (g *GameState) SetTurnDeadline(t time.Time) { g.TurnDeadline = t.UnixMilli() }

// ClearTurnDeadline removes any recorded deadline.
func (g *GameState) ClearTurnDeadline() { g.TurnDeadline = 0 }

// Deadline returns the recorded deadline, if any.
func (g *GameState) Deadline() (time.Time, bool) {
	if g.TurnDeadline == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(g.TurnDeadline), true
}

// DeadlineExpired reports whether a deadline is set and now is at or past it.
func (g *GameState) DeadlineExpired(now time.Time) bool {
	return g.TurnDeadline != 0 && now.UnixMilli() >= g.TurnDeadline
}

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Snapshot is a complete value-copy of GameState.
type Snapshot GameState

// Save returns a snapshot of the current game state.
func (g *GameState) Save() Snapshot { return Snapshot(*g) }

// Restore replaces the game state with the given snapshot.
func (g *GameState) Restore(s Snapshot) { *g = GameState(s) }
