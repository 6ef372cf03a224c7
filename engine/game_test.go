package engine

import (
	"errors"
	"testing"
	"time"
)

var fourPlayers = []string{"a", "b", "c", "d"}

// rigGame builds an active game with explicit hands, boneyard and board,
// bypassing the shuffle. Seat 0 moves first unless the caller changes it.
func rigGame(t *testing.T, hands [][]Tile, boneyard []Tile, board []BoardTile) GameState {
	t.Helper()
	ids := []string{"a", "b", "c", "d", "e", "f"}[:len(hands)]
	rules := DefaultHouseRules()
	rules.HandSize = 1
	g, err := NewGame(7, ids, rules)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	for i, h := range hands {
		for j, tile := range h {
			g.Players[i].Hand[j] = tile
		}
		g.Players[i].HandLen = uint8(len(h))
	}
	g.Boneyard = [SetSize]Tile{}
	for i := range g.Boneyard {
		g.Boneyard[i] = EmptyTile
	}
	copy(g.Boneyard[:], boneyard)
	g.BoneLen = uint8(len(boneyard))
	for _, bt := range board {
		g.BoardTiles[g.BoardEnd] = bt
		g.BoardEnd++
	}
	g.Status = StatusActive
	return g
}

// checkConservation verifies every tile of the set is in exactly one place.
func checkConservation(t *testing.T, g *GameState) {
	t.Helper()
	seen := make(map[Tile]int)
	total := 0
	for p := uint8(0); p < g.NumPlayers; p++ {
		for _, tile := range g.Players[p].Tiles() {
			seen[tile]++
			total++
		}
	}
	for i := uint8(0); i < g.BoneLen; i++ {
		seen[g.Boneyard[i]]++
		total++
	}
	for _, bt := range g.Board() {
		seen[bt.Tile]++
		total++
	}
	if total != SetSize {
		t.Fatalf("tile count = %d, want %d", total, SetSize)
	}
	for _, tile := range FullSet() {
		if seen[tile] != 1 {
			t.Fatalf("tile %s appears %d times", tile, seen[tile])
		}
	}
}

// checkChain verifies adjacent exposed values touch.
func checkChain(t *testing.T, g *GameState) {
	t.Helper()
	board := g.Board()
	for i := 1; i < len(board); i++ {
		if board[i-1].Right != board[i].Left {
			t.Fatalf("chain broken at %d: %d != %d", i, board[i-1].Right, board[i].Left)
		}
	}
	for i, bt := range board {
		if NewTile(bt.Left, bt.Right) != bt.Tile {
			t.Fatalf("board[%d] exposes %d|%d for %s", i, bt.Left, bt.Right, bt.Tile)
		}
	}
}

// TestNewGameUndealt verifies NewGame holds the full set in the boneyard.
func TestNewGameUndealt(t *testing.T) {
	g, err := NewGame(42, fourPlayers, DefaultHouseRules())
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if g.Status != StatusWaiting {
		t.Errorf("Status = %s, want waiting", g.Status)
	}
	if g.BoneLen != SetSize {
		t.Errorf("BoneLen = %d, want %d", g.BoneLen, SetSize)
	}
	if g.Winner != -1 || g.BoardLen() != 0 || g.FirstTileIndex() != -1 {
		t.Errorf("Winner=%d BoardLen=%d FirstTileIndex=%d", g.Winner, g.BoardLen(), g.FirstTileIndex())
	}
	checkConservation(t, &g)

	if err := g.ApplyMove("a", NewTile(0, 0), SideLeft); !errors.Is(err, ErrInvalidTurn) {
		t.Errorf("move on undealt game: err = %v, want InvalidTurn", err)
	}
}

// TestNewGameSeedZero verifies that seed 0 is corrected to 1.
func TestNewGameSeedZero(t *testing.T) {
	g, err := NewGame(0, fourPlayers, DefaultHouseRules())
	if err != nil {
		t.Fatal(err)
	}
	if g.RNG != 1 {
		t.Errorf("RNG = %d, want 1 for seed=0", g.RNG)
	}
}

func TestNewGameRejectsBadRosters(t *testing.T) {
	big := DefaultHouseRules()
	big.HandSize = 8
	cases := []struct {
		name    string
		players []string
		rules   HouseRules
		want    error
	}{
		{"one player", []string{"a"}, DefaultHouseRules(), ErrInvalidPlayerCount},
		{"seven players", []string{"a", "b", "c", "d", "e", "f", "g"}, DefaultHouseRules(), ErrInvalidPlayerCount},
		{"hand too big", fourPlayers, big, ErrInvalidPlayerCount},
		{"duplicate", []string{"a", "b", "a"}, DefaultHouseRules(), ErrInvalidRoster},
		{"empty id", []string{"a", ""}, DefaultHouseRules(), ErrInvalidRoster},
	}
	for _, c := range cases {
		if _, err := NewGame(1, c.players, c.rules); !errors.Is(err, c.want) {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
}

func TestDefaultHandSizes(t *testing.T) {
	want := map[int]uint8{2: 7, 3: 7, 4: 5, 5: 4, 6: 4}
	ids := []string{"a", "b", "c", "d", "e", "f"}
	for n, hs := range want {
		g, err := DealGame(9, ids[:n], DefaultHouseRules())
		if err != nil {
			t.Fatalf("%d players: %v", n, err)
		}
		for p := 0; p < n; p++ {
			if g.Players[p].HandLen != hs {
				t.Errorf("%d players: seat %d has %d tiles, want %d", n, p, g.Players[p].HandLen, hs)
			}
		}
		if int(g.BoneLen) != SetSize-n*int(hs) {
			t.Errorf("%d players: BoneLen = %d", n, g.BoneLen)
		}
		checkConservation(t, &g)
	}
}

// TestDealFourBySeven deals the whole set to four players.
func TestDealFourBySeven(t *testing.T) {
	rules := DefaultHouseRules()
	rules.HandSize = 7
	for seed := uint64(1); seed <= 50; seed++ {
		g, err := DealGame(seed, fourPlayers, rules)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if g.BoneLen != 0 {
			t.Fatalf("seed %d: BoneLen = %d, want 0", seed, g.BoneLen)
		}
		for p := 0; p < 4; p++ {
			if g.Players[p].HandLen != 7 {
				t.Fatalf("seed %d: seat %d has %d tiles", seed, p, g.Players[p].HandLen)
			}
		}
		if g.BoardLen() != 0 || g.Status != StatusActive {
			t.Fatalf("seed %d: BoardLen=%d Status=%s", seed, g.BoardLen(), g.Status)
		}
		// With the whole set dealt, 6-6 is always in someone's hand.
		if g.Players[g.CurrentPlayer].indexOf(NewTile(6, 6)) < 0 {
			t.Fatalf("seed %d: first player %d doesn't hold [6|6]", seed, g.CurrentPlayer)
		}
		if g.Opener != NewTile(6, 6) {
			t.Fatalf("seed %d: Opener = %s", seed, g.Opener)
		}
		checkConservation(t, &g)
	}
}

func TestDealTwiceFails(t *testing.T) {
	g, err := DealGame(3, fourPlayers, DefaultHouseRules())
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Deal(); err == nil {
		t.Error("second Deal succeeded")
	}
}

// TestDealDeterministic verifies a seed always produces the same deal.
func TestDealDeterministic(t *testing.T) {
	g1, _ := DealGame(1234, fourPlayers, DefaultHouseRules())
	g2, _ := DealGame(1234, fourPlayers, DefaultHouseRules())
	if g1 != g2 {
		t.Fatal("same seed produced different states")
	}
	g3, _ := DealGame(4321, fourPlayers, DefaultHouseRules())
	if g1 == g3 {
		t.Error("different seeds produced identical states")
	}
}

// TestShuffleUniform checks each tile lands at each boneyard position roughly
// equally often.
func TestShuffleUniform(t *testing.T) {
	const trials = 28000
	var counts [SetSize][SetSize]int
	set := FullSet()
	pos := make(map[Tile]int)
	for i, tile := range set {
		pos[tile] = i
	}
	for seed := uint64(1); seed <= trials; seed++ {
		g, _ := NewGame(seed, fourPlayers, DefaultHouseRules())
		for i := int(g.BoneLen) - 1; i > 0; i-- {
			j := int(g.randN(uint64(i + 1)))
			g.Boneyard[i], g.Boneyard[j] = g.Boneyard[j], g.Boneyard[i]
		}
		for i := 0; i < SetSize; i++ {
			counts[pos[g.Boneyard[i]]][i]++
		}
	}
	want := trials / SetSize
	for tile := range counts {
		for p := range counts[tile] {
			if c := counts[tile][p]; c < want/2 || c > want*2 {
				t.Fatalf("tile %s at position %d: %d hits, expected ~%d", set[tile], p, c, want)
			}
		}
	}
}

func TestSaveRestore(t *testing.T) {
	g, _ := DealGame(77, fourPlayers, DefaultHouseRules())
	snap := g.Save()
	id := g.CurrentPlayerID()
	moves := g.LegalMoves(id)
	if len(moves) == 0 {
		t.Fatal("opener has no legal moves")
	}
	if err := g.ApplyMove(id, moves[0].Tile, moves[0].Side); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	g.Restore(snap)
	if GameState(snap) != g {
		t.Fatal("Restore did not reproduce the snapshot")
	}
}

func TestTurnDeadline(t *testing.T) {
	g, _ := DealGame(5, fourPlayers, DefaultHouseRules())
	now := time.UnixMilli(1_700_000_000_000)
	if g.DeadlineExpired(now) {
		t.Error("expired with no deadline")
	}
	g.SetTurnDeadline(now.Add(30 * time.Second))
	if d, ok := g.Deadline(); !ok || !d.Equal(now.Add(30*time.Second)) {
		t.Errorf("Deadline = %v, %v", d, ok)
	}
	if g.DeadlineExpired(now) {
		t.Error("expired before deadline")
	}
	if !g.DeadlineExpired(now.Add(30 * time.Second)) {
		t.Error("not expired at deadline")
	}
	g.ClearTurnDeadline()
	if _, ok := g.Deadline(); ok {
		t.Error("deadline still set after clear")
	}
}

func TestHandOfReturnsCopy(t *testing.T) {
	g, _ := DealGame(5, fourPlayers, DefaultHouseRules())
	h := g.HandOf("b")
	if len(h) != int(g.Players[1].HandLen) {
		t.Fatalf("len = %d", len(h))
	}
	h[0] = EmptyTile
	if g.Players[1].Hand[0] == EmptyTile {
		t.Error("HandOf exposed internal storage")
	}
	if g.HandOf("zz") != nil {
		t.Error("HandOf unknown player not nil")
	}
}
