package engine

import (
	"errors"
	"testing"
)

func TestApplyMoveOpening(t *testing.T) {
	g := rigGame(t, [][]Tile{{NewTile(2, 5), NewTile(0, 0)}, {NewTile(1, 1)}}, nil, nil)
	before := g
	if err := g.ApplyMove("a", NewTile(5, 2), SideRight); !errors.Is(err, ErrIllegalPlacement) {
		t.Fatalf("right-side opening: err = %v, want IllegalPlacement", err)
	}
	if g != before {
		t.Fatal("rejected opening mutated state")
	}
	if err := g.ApplyMove("a", NewTile(5, 2), SideLeft); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	left, right, ok := g.Ends()
	if !ok || left != 2 || right != 5 {
		t.Errorf("Ends = %d,%d,%v; want 2,5,true", left, right, ok)
	}
	if g.FirstTileIndex() != 0 {
		t.Errorf("FirstTileIndex = %d, want 0", g.FirstTileIndex())
	}
	if g.Players[0].HandLen != 1 || g.Players[0].Hand[0] != NewTile(0, 0) {
		t.Errorf("hand after play = %v", g.Players[0].Tiles())
	}
	if g.CurrentPlayer != 1 || g.TurnNumber != 1 {
		t.Errorf("CurrentPlayer=%d TurnNumber=%d", g.CurrentPlayer, g.TurnNumber)
	}
}

// TestApplyMoveOrientation checks the matching value touches the target end.
func TestApplyMoveOrientation(t *testing.T) {
	g := rigGame(t,
		[][]Tile{{NewTile(3, 6), NewTile(0, 5)}, {NewTile(1, 1)}},
		nil,
		[]BoardTile{{Tile: NewTile(3, 5), Left: 3, Right: 5}},
	)
	if err := g.ApplyMove("a", NewTile(3, 6), SideLeft); err != nil {
		t.Fatalf("left play: %v", err)
	}
	if got := g.Board()[0]; got.Left != 6 || got.Right != 3 {
		t.Errorf("left tile exposes %d|%d, want 6|3", got.Left, got.Right)
	}
	if g.FirstTileIndex() != 1 {
		t.Errorf("FirstTileIndex = %d, want 1", g.FirstTileIndex())
	}
	g.CurrentPlayer = 0
	if err := g.ApplyMove("a", NewTile(0, 5), SideRight); err != nil {
		t.Fatalf("right play: %v", err)
	}
	board := g.Board()
	if got := board[len(board)-1]; got.Left != 5 || got.Right != 0 {
		t.Errorf("right tile exposes %d|%d, want 5|0", got.Left, got.Right)
	}
	if l, r, _ := g.Ends(); l != 6 || r != 0 {
		t.Errorf("Ends = %d,%d; want 6,0", l, r)
	}
	checkChain(t, &g)
}

func TestApplyMoveErrors(t *testing.T) {
	board := []BoardTile{{Tile: NewTile(3, 5), Left: 3, Right: 5}}
	hands := [][]Tile{{NewTile(5, 6), NewTile(0, 1)}, {NewTile(1, 1)}}
	cases := []struct {
		name   string
		player string
		tile   Tile
		side   Side
		want   error
	}{
		{"off turn", "b", NewTile(1, 1), SideLeft, ErrInvalidTurn},
		{"unknown player", "zz", NewTile(5, 6), SideRight, ErrInvalidTurn},
		{"not in hand", "a", NewTile(2, 2), SideRight, ErrInvalidTile},
		{"wrong end", "a", NewTile(5, 6), SideLeft, ErrIllegalPlacement},
		{"no match", "a", NewTile(0, 1), SideRight, ErrIllegalPlacement},
		{"bad side", "a", NewTile(5, 6), Side(7), ErrIllegalPlacement},
	}
	for _, c := range cases {
		g := rigGame(t, hands, nil, board)
		before := g
		err := g.ApplyMove(c.player, c.tile, c.side)
		if !errors.Is(err, c.want) {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.want)
		}
		if g != before {
			t.Errorf("%s: rejected move mutated state", c.name)
		}
	}
}

func TestApplyMoveForcedOpener(t *testing.T) {
	g := rigGame(t, [][]Tile{{NewTile(2, 5), NewTile(6, 6)}, {NewTile(1, 1)}}, nil, nil)
	g.Rules.ForceOpeningDouble = true
	g.Opener = NewTile(6, 6)
	if err := g.ApplyMove("a", NewTile(2, 5), SideLeft); !errors.Is(err, ErrIllegalPlacement) {
		t.Fatalf("err = %v, want IllegalPlacement", err)
	}
	if err := g.ApplyMove("a", NewTile(6, 6), SideLeft); err != nil {
		t.Fatalf("opener: %v", err)
	}
}

// TestBlockedPlayerDrawsInsteadOfPassing: a blocked player with a non-empty
// boneyard can't pass but can draw.
func TestBlockedPlayerDrawsInsteadOfPassing(t *testing.T) {
	board := []BoardTile{{Tile: NewTile(3, 5), Left: 3, Right: 5}}
	g := rigGame(t, [][]Tile{{NewTile(0, 1), NewTile(1, 2)}, {NewTile(4, 4)}}, []Tile{NewTile(6, 6), NewTile(2, 3)}, board)

	if err := g.PassTurn("a"); !errors.Is(err, ErrIllegalPass) {
		t.Fatalf("PassTurn err = %v, want IllegalPass", err)
	}
	drawn, err := g.DrawTile("a")
	if err != nil {
		t.Fatalf("DrawTile: %v", err)
	}
	if drawn != NewTile(2, 3) {
		t.Errorf("drew %s, want [2|3]", drawn)
	}
	if g.Players[0].HandLen != 3 {
		t.Errorf("HandLen = %d, want 3", g.Players[0].HandLen)
	}
	if g.CurrentPlayer != 0 || g.TurnNumber != 0 {
		t.Errorf("draw advanced the turn: CurrentPlayer=%d TurnNumber=%d", g.CurrentPlayer, g.TurnNumber)
	}
	if !g.HasLegalMove("a") {
		t.Error("drawn [2|3] should be playable on the 3 end")
	}
}

func TestDrawTileErrors(t *testing.T) {
	g := rigGame(t, [][]Tile{{NewTile(0, 1)}, {NewTile(4, 4)}}, nil, nil)
	if _, err := g.DrawTile("a"); !errors.Is(err, ErrNothingToDraw) {
		t.Errorf("empty boneyard: err = %v", err)
	}
	g.Boneyard[0], g.BoneLen = NewTile(6, 6), 1
	if _, err := g.DrawTile("b"); !errors.Is(err, ErrInvalidTurn) {
		t.Errorf("off turn: err = %v", err)
	}
}

func TestPassTurnWithPlayableTile(t *testing.T) {
	board := []BoardTile{{Tile: NewTile(3, 5), Left: 3, Right: 5}}
	g := rigGame(t, [][]Tile{{NewTile(5, 6)}, {NewTile(4, 4)}}, nil, board)
	if err := g.PassTurn("a"); !errors.Is(err, ErrIllegalPass) {
		t.Fatalf("err = %v, want IllegalPass", err)
	}
}

func TestPassTurnAdvances(t *testing.T) {
	board := []BoardTile{{Tile: NewTile(3, 5), Left: 3, Right: 5}}
	g := rigGame(t, [][]Tile{{NewTile(0, 1)}, {NewTile(5, 6)}}, nil, board)
	if err := g.PassTurn("a"); err != nil {
		t.Fatalf("PassTurn: %v", err)
	}
	if !g.Players[0].PassedLastTurn || g.ConsecutivePasses != 1 {
		t.Errorf("PassedLastTurn=%v ConsecutivePasses=%d", g.Players[0].PassedLastTurn, g.ConsecutivePasses)
	}
	if g.CurrentPlayer != 1 || g.Status != StatusActive {
		t.Errorf("CurrentPlayer=%d Status=%s", g.CurrentPlayer, g.Status)
	}
	// A play clears the run of passes.
	if err := g.ApplyMove("b", NewTile(5, 6), SideRight); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if g.ConsecutivePasses != 0 {
		t.Errorf("ConsecutivePasses = %d after play", g.ConsecutivePasses)
	}
}
