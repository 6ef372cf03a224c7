package engine

// GameResult is one finished game as recorded by a session.
type GameResult struct {
	GameNumber int
	WinnerID   string // "" when nobody won
	IsFish     bool
	Pips       map[string]int // pips left in each hand, for bookkeeping only
}

// PipCounts returns the pip total remaining in each seat's hand.
func (g *GameState) PipCounts() [MaxPlayers]int {
	var pips [MaxPlayers]int
	for p := uint8(0); p < g.NumPlayers; p++ {
		for _, t := range g.Players[p].Tiles() {
			pips[p] += t.Pips()
		}
	}
	return pips
}

// Result summarises a finished game. GameNumber is left for the session to fill.
func (g *GameState) Result() GameResult {
	pips := g.PipCounts()
	r := GameResult{
		WinnerID: g.WinnerID(),
		IsFish:   g.IsFish,
		Pips:     make(map[string]int, g.NumPlayers),
	}
	for p := uint8(0); p < g.NumPlayers; p++ {
		r.Pips[g.Players[p].ID] = pips[p]
	}
	return r
}
