// Package agent implements bot move policies and the routine that plays a
// whole turn for a bot or a timed-out player.
package agent

import (
	"fmt"
	"math/rand/v2"
	"strings"

	engine "github.com/jason-s-yu/domino/engine"
)

// Policy picks one move out of a non-empty legal list. Implementations must
// return an element of legal. They are not safe for concurrent use.
type Policy interface {
	ChooseMove(legal []engine.Move, g *engine.GameState) engine.Move
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(legal []engine.Move, g *engine.GameState) engine.Move

func (f PolicyFunc) ChooseMove(legal []engine.Move, g *engine.GameState) engine.Move {
	return f(legal, g)
}

// FirstLegal always plays the first legal move. Deterministic; used in tests
// and replays.
var FirstLegal Policy = PolicyFunc(func(legal []engine.Move, _ *engine.GameState) engine.Move {
	return legal[0]
})

// RandomPolicy picks uniformly among legal moves.
type RandomPolicy struct {
	rng *rand.Rand
}

// NewRandomPolicy returns a RandomPolicy seeded with seed.
func NewRandomPolicy(seed uint64) *RandomPolicy {
	return &RandomPolicy{rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}

func (p *RandomPolicy) ChooseMove(legal []engine.Move, _ *engine.GameState) engine.Move {
	return legal[p.rng.IntN(len(legal))]
}

// doubleBonus is added to a double's score so doubles leave the hand early.
const doubleBonus = 10

// GreedyPolicy scores each move by pip total, plus doubleBonus for doubles,
// plus up to Jitter of uniform noise, and plays the best. Ties keep the
// earlier move.
type GreedyPolicy struct {
	Jitter float64
	rng    *rand.Rand
}

// NewGreedyPolicy returns a GreedyPolicy. A jitter of 0 makes it deterministic.
func NewGreedyPolicy(seed uint64, jitter float64) *GreedyPolicy {
	return &GreedyPolicy{Jitter: jitter, rng: rand.New(rand.NewPCG(seed, seed^0xD1B54A32D192ED03))}
}

func (p *GreedyPolicy) ChooseMove(legal []engine.Move, _ *engine.GameState) engine.Move {
	best := legal[0]
	bestScore := -1.0
	for _, m := range legal {
		score := float64(m.Tile.Pips())
		if m.Tile.IsDouble() {
			score += doubleBonus
		}
		if p.Jitter > 0 {
			score += p.rng.Float64() * p.Jitter
		}
		if score > bestScore {
			best, bestScore = m, score
		}
	}
	return best
}

// Level names a bot strength.
type Level uint8

const (
	LevelRandom Level = iota
	LevelGreedy
	LevelFirst
)

func (l Level) String() string {
	switch l {
	case LevelGreedy:
		return "greedy"
	case LevelFirst:
		return "first"
	default:
		return "random"
	}
}

// ParseLevel maps a config string onto a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "greedy":
		return LevelGreedy, nil
	case "random":
		return LevelRandom, nil
	case "first":
		return LevelFirst, nil
	}
	return LevelGreedy, fmt.Errorf("unknown bot level %q", s)
}

// NewPolicy builds the policy for level. The greedy bot keeps a little jitter
// so it isn't fully predictable.
func NewPolicy(level Level, seed uint64) Policy {
	switch level {
	case LevelRandom:
		return NewRandomPolicy(seed)
	case LevelFirst:
		return FirstLegal
	default:
		return NewGreedyPolicy(seed, 3)
	}
}
