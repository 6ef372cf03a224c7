package agent

import (
	"fmt"

	engine "github.com/jason-s-yu/domino/engine"
)

// StepKind is what a bot did during one step of its turn.
type StepKind uint8

const (
	StepPlay StepKind = iota
	StepDraw
	StepPass
)

func (k StepKind) String() string {
	switch k {
	case StepDraw:
		return "draw"
	case StepPass:
		return "pass"
	default:
		return "play"
	}
}

// Step records one engine call made by PlayTurn.
type Step struct {
	Kind StepKind
	Move engine.Move // set for StepPlay
	Tile engine.Tile // drawn tile for StepDraw
}

// PlayTurn finishes playerID's turn with policy: play a legal move if one
// exists, otherwise draw until one appears, otherwise pass. It returns the
// steps taken in order. The turn always ends with a play or a pass unless
// an engine call is rejected.
func PlayTurn(g *engine.GameState, playerID string, policy Policy) ([]Step, error) {
	if g.CurrentPlayerID() != playerID || g.Status != engine.StatusActive {
		return nil, fmt.Errorf("play turn for %s: %w", playerID, engine.ErrInvalidTurn)
	}
	var steps []Step
	for {
		if legal := g.LegalMoves(playerID); len(legal) > 0 {
			m := policy.ChooseMove(legal, g)
			if err := g.ApplyMove(playerID, m.Tile, m.Side); err != nil {
				return steps, fmt.Errorf("play turn for %s: apply %s: %w", playerID, m, err)
			}
			return append(steps, Step{Kind: StepPlay, Move: m}), nil
		}
		if !g.CanDraw(playerID) {
			break
		}
		t, err := g.DrawTile(playerID)
		if err != nil {
			return steps, fmt.Errorf("play turn for %s: draw: %w", playerID, err)
		}
		steps = append(steps, Step{Kind: StepDraw, Tile: t})
	}
	if err := g.PassTurn(playerID); err != nil {
		return steps, fmt.Errorf("play turn for %s: pass: %w", playerID, err)
	}
	return append(steps, Step{Kind: StepPass}), nil
}
