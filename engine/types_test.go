package engine

import "testing"

// TestNewTileCanonical verifies (a,b) and (b,a) pack to the same value.
func TestNewTileCanonical(t *testing.T) {
	for a := uint8(0); a <= MaxPip; a++ {
		for b := uint8(0); b <= MaxPip; b++ {
			if NewTile(a, b) != NewTile(b, a) {
				t.Errorf("NewTile(%d,%d) != NewTile(%d,%d)", a, b, b, a)
			}
			tile := NewTile(a, b)
			if tile.Low() > tile.High() {
				t.Errorf("%s: Low %d > High %d", tile, tile.Low(), tile.High())
			}
			if !tile.Valid() {
				t.Errorf("%s reported invalid", tile)
			}
		}
	}
}

// TestFullSet verifies the 28 tiles are unique, canonical and complete.
func TestFullSet(t *testing.T) {
	set := FullSet()
	seen := make(map[Tile]bool)
	doubles := 0
	for i, tile := range set {
		if !tile.Valid() {
			t.Errorf("set[%d] = %s is not valid", i, tile)
		}
		if seen[tile] {
			t.Errorf("duplicate tile %s at %d", tile, i)
		}
		seen[tile] = true
		if tile.IsDouble() {
			doubles++
		}
	}
	if len(seen) != SetSize {
		t.Fatalf("got %d unique tiles, want %d", len(seen), SetSize)
	}
	if doubles != 7 {
		t.Errorf("doubles = %d, want 7", doubles)
	}
	if set[0] != NewTile(0, 0) || set[SetSize-1] != NewTile(6, 6) {
		t.Errorf("generation order: first %s last %s", set[0], set[SetSize-1])
	}
}

func TestTileMatchesOther(t *testing.T) {
	tile := NewTile(5, 3)
	if !tile.Matches(3) || !tile.Matches(5) || tile.Matches(4) {
		t.Errorf("%s Matches wrong", tile)
	}
	if tile.Other(3) != 5 || tile.Other(5) != 3 {
		t.Errorf("%s Other(3)=%d Other(5)=%d", tile, tile.Other(3), tile.Other(5))
	}
	d := NewTile(4, 4)
	if d.Other(4) != 4 || !d.IsDouble() {
		t.Errorf("double %s Other/IsDouble wrong", d)
	}
	if tile.Pips() != 8 {
		t.Errorf("Pips = %d, want 8", tile.Pips())
	}
	if tile.String() != "[3|5]" {
		t.Errorf("String = %q", tile.String())
	}
	if EmptyTile.Valid() {
		t.Error("EmptyTile reported valid")
	}
}

func TestParseTile(t *testing.T) {
	cases := []struct {
		in   string
		want Tile
		err  bool
	}{
		{"3-5", NewTile(3, 5), false},
		{"5|3", NewTile(3, 5), false},
		{" 6,6 ", NewTile(6, 6), false},
		{"[0|4]", NewTile(0, 4), false},
		{"7-1", EmptyTile, true},
		{"35", EmptyTile, true},
		{"a-b", EmptyTile, true},
	}
	for _, c := range cases {
		got, err := ParseTile(c.in)
		if c.err {
			if err == nil {
				t.Errorf("ParseTile(%q) = %s, want error", c.in, got)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("ParseTile(%q) = %s, %v; want %s", c.in, got, err, c.want)
		}
	}
}

func TestParseSide(t *testing.T) {
	for in, want := range map[string]Side{"left": SideLeft, "L": SideLeft, "right": SideRight, " r": SideRight} {
		got, err := ParseSide(in)
		if err != nil || got != want {
			t.Errorf("ParseSide(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseSide("up"); err == nil {
		t.Error("ParseSide(up) succeeded")
	}
}

func TestErrorKindStrings(t *testing.T) {
	want := map[ErrorKind]string{
		KindInvalidTurn:            "InvalidTurn",
		KindInvalidTile:            "InvalidTile",
		KindIllegalPlacement:       "IllegalPlacement",
		KindNothingToDraw:          "NothingToDraw",
		KindIllegalPass:            "IllegalPass",
		KindSessionAlreadyComplete: "SessionAlreadyComplete",
	}
	for k, s := range want {
		if k.String() != s {
			t.Errorf("kind %d String = %q, want %q", k, k.String(), s)
		}
	}
	if KindOf(nil) != KindNone {
		t.Error("KindOf(nil) != KindNone")
	}
}
