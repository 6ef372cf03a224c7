package engine

import (
	"fmt"
	"strings"
)

// MaxPip is the highest pip value on a double-six set.
const MaxPip uint8 = 6

// Tile is a packed uint8: upper 4 bits = low pip, lower 4 bits = high pip.
// NewTile canonicalises the pair, so [3|5] and [5|3] are the same value.
type Tile uint8

// EmptyTile represents the absence of a tile.
const EmptyTile Tile = 0xFF

// NewTile constructs a Tile from two pip values in either order.
func NewTile(a, b uint8) Tile {
	if a > b {
		a, b = b, a
	}
	return Tile((a << 4) | (b & 0x0F))
}

// Low returns the smaller pip value.
func (t Tile) Low() uint8 { return uint8(t) >> 4 }

// High returns the larger pip value.
func (t Tile) High() uint8 { return uint8(t) & 0x0F }

// IsDouble returns true when both halves carry the same value.
func (t Tile) IsDouble() bool { return t.Low() == t.High() }

// Pips returns the combined pip total.
func (t Tile) Pips() int { return int(t.Low()) + int(t.High()) }

// Matches reports whether either half equals v.
func (t Tile) Matches(v uint8) bool { return t.Low() == v || t.High() == v }

// Other returns the half opposite the one equal to v. Only meaningful when Matches(v).
func (t Tile) Other(v uint8) uint8 {
	if t.Low() == v {
		return t.High()
	}
	return t.Low()
}

// Valid reports whether the tile is a canonical member of the double-six set.
func (t Tile) Valid() bool {
	return t != EmptyTile && t.Low() <= t.High() && t.High() <= MaxPip
}

func (t Tile) String() string {
	if t == EmptyTile {
		return "[ | ]"
	}
	return fmt.Sprintf("[%d|%d]", t.Low(), t.High())
}

// ParseTile reads "a-b", "a|b" or "a,b".
func ParseTile(s string) (Tile, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	var a, b uint8
	for _, sep := range []string{"-", "|", ","} {
		if strings.Contains(s, sep) {
			if _, err := fmt.Sscanf(strings.Replace(s, sep, " ", 1), "%d %d", &a, &b); err != nil {
				return EmptyTile, fmt.Errorf("invalid tile %q: %w", s, err)
			}
			if a > MaxPip || b > MaxPip {
				return EmptyTile, fmt.Errorf("invalid tile %q: pip out of range", s)
			}
			return NewTile(a, b), nil
		}
	}
	return EmptyTile, fmt.Errorf("invalid tile %q", s)
}

// FullSet returns the 28 canonical tiles, a ≤ b, in generation order.
func FullSet() [SetSize]Tile {
	var set [SetSize]Tile
	idx := 0
	for a := uint8(0); a <= MaxPip; a++ {
		for b := a; b <= MaxPip; b++ {
			set[idx] = NewTile(a, b)
			idx++
		}
	}
	return set
}

// Side names an open end of the board chain.
type Side uint8

const (
	SideLeft  Side = 0
	SideRight Side = 1
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// ParseSide maps "left"/"right" onto a Side.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return SideLeft, nil
	case "right", "r":
		return SideRight, nil
	}
	return SideLeft, fmt.Errorf("invalid side %q", s)
}

// Move is a play request: a tile and the board end it should attach to.
// The engine resolves orientation when applying it.
type Move struct {
	Tile Tile
	Side Side
}

func (m Move) String() string { return m.Tile.String() + "@" + m.Side.String() }

// BoardTile is a placed tile with the pip value exposed on each side
// after orientation has been resolved.
type BoardTile struct {
	Tile  Tile
	Left  uint8
	Right uint8
}

// Status is the lifecycle stage of a single game.
type Status uint8

const (
	StatusWaiting  Status = iota // 0
	StatusActive                 // 1
	StatusFinished               // 2
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusFinished:
		return "finished"
	default:
		return "waiting"
	}
}
