package engine

// checkGameEnd runs after every play or pass by actor and finishes the game
// when a terminal condition holds.
func (g *GameState) checkGameEnd(actor uint8) {
	if g.IsTerminal() {
		return
	}

	// 1. Domino: the actor emptied their hand.
	if g.Players[actor].HandLen == 0 {
		g.Status = StatusFinished
		g.Winner = int8(actor)
		return
	}

	// 2. Fish: every seat passed on its latest turn. Nobody wins a blocked game.
	if g.allPassed() {
		g.Status = StatusFinished
		g.IsFish = true
		g.Winner = -1
		return
	}
}

func (g *GameState) allPassed() bool {
	for p := uint8(0); p < g.NumPlayers; p++ {
		if !g.Players[p].PassedLastTurn {
			return false
		}
	}
	return true
}
