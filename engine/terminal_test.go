package engine

import (
	"errors"
	"testing"
)

func TestLastTileWins(t *testing.T) {
	board := []BoardTile{{Tile: NewTile(3, 5), Left: 3, Right: 5}}
	g := rigGame(t, [][]Tile{{NewTile(1, 3)}, {NewTile(4, 4)}, {NewTile(0, 0)}}, nil, board)
	if err := g.ApplyMove("a", NewTile(1, 3), SideLeft); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if g.Status != StatusFinished || g.WinnerID() != "a" || g.IsFish {
		t.Fatalf("Status=%s Winner=%q IsFish=%v", g.Status, g.WinnerID(), g.IsFish)
	}
	if !g.IsTerminal() {
		t.Error("IsTerminal false after win")
	}
}

// TestAllPassIsFish: four blocked players pass in turn with an empty boneyard.
func TestAllPassIsFish(t *testing.T) {
	board := []BoardTile{{Tile: NewTile(3, 5), Left: 3, Right: 5}}
	hands := [][]Tile{{NewTile(0, 1)}, {NewTile(1, 2)}, {NewTile(0, 2)}, {NewTile(4, 4)}}
	g := rigGame(t, hands, nil, board)
	for i, id := range fourPlayers {
		if err := g.PassTurn(id); err != nil {
			t.Fatalf("pass %d (%s): %v", i, id, err)
		}
		if i < 3 && g.Status != StatusActive {
			t.Fatalf("game ended after %d passes", i+1)
		}
	}
	if g.Status != StatusFinished || !g.IsFish {
		t.Fatalf("Status=%s IsFish=%v", g.Status, g.IsFish)
	}
	if g.Winner != -1 || g.WinnerID() != "" {
		t.Errorf("fish has winner %q", g.WinnerID())
	}
	if g.ConsecutivePasses != 4 {
		t.Errorf("ConsecutivePasses = %d, want 4", g.ConsecutivePasses)
	}
}

// TestTerminalIdempotence verifies nothing succeeds on a finished game.
func TestTerminalIdempotence(t *testing.T) {
	board := []BoardTile{{Tile: NewTile(3, 5), Left: 3, Right: 5}}
	g := rigGame(t, [][]Tile{{NewTile(1, 3)}, {NewTile(5, 6), NewTile(0, 0)}}, []Tile{NewTile(2, 2)}, board)
	if err := g.ApplyMove("a", NewTile(1, 3), SideLeft); err != nil {
		t.Fatal(err)
	}
	done := g
	for _, id := range []string{"a", "b"} {
		if err := g.ApplyMove(id, NewTile(5, 6), SideRight); !errors.Is(err, ErrInvalidTurn) {
			t.Errorf("ApplyMove(%s) err = %v", id, err)
		}
		if _, err := g.DrawTile(id); !errors.Is(err, ErrInvalidTurn) {
			t.Errorf("DrawTile(%s) err = %v", id, err)
		}
		if err := g.PassTurn(id); !errors.Is(err, ErrInvalidTurn) {
			t.Errorf("PassTurn(%s) err = %v", id, err)
		}
	}
	if g != done {
		t.Error("finished game was mutated")
	}
}

func TestFishNeedsEveryone(t *testing.T) {
	board := []BoardTile{{Tile: NewTile(3, 5), Left: 3, Right: 5}}
	g := rigGame(t, [][]Tile{{NewTile(0, 1)}, {NewTile(5, 6), NewTile(0, 0)}, {NewTile(1, 2)}}, nil, board)
	if err := g.PassTurn("a"); err != nil {
		t.Fatal(err)
	}
	if err := g.ApplyMove("b", NewTile(5, 6), SideRight); err != nil {
		t.Fatal(err)
	}
	if err := g.PassTurn("c"); err != nil {
		t.Fatal(err)
	}
	if g.IsTerminal() {
		t.Fatal("game ended while b still played last round")
	}
}
