package engine

// FirstPlayerPolicy picks the opening seat from a freshly dealt game. It returns
// the seat and the qualifying double, or EmptyTile when the pick fell back to
// the highest pip total.
type FirstPlayerPolicy func(g *GameState) (seat uint8, opener Tile)

func firstPlayerPolicy(rule FirstPlayerRule) FirstPlayerPolicy {
	if rule == FirstLowestDouble {
		return LowestDoubleFirst
	}
	return HighestDoubleFirst
}

// HighestDoubleFirst gives the lead to the holder of the highest double.
func HighestDoubleFirst(g *GameState) (uint8, Tile) {
	for v := int(MaxPip); v >= 0; v-- {
		if seat, ok := holderOf(g, NewTile(uint8(v), uint8(v))); ok {
			return seat, NewTile(uint8(v), uint8(v))
		}
	}
	return highestPipsFirst(g), EmptyTile
}

// LowestDoubleFirst gives the lead to the holder of the lowest double.
func LowestDoubleFirst(g *GameState) (uint8, Tile) {
	for v := uint8(0); v <= MaxPip; v++ {
		if seat, ok := holderOf(g, NewTile(v, v)); ok {
			return seat, NewTile(v, v)
		}
	}
	return highestPipsFirst(g), EmptyTile
}

func holderOf(g *GameState, t Tile) (uint8, bool) {
	for p := uint8(0); p < g.NumPlayers; p++ {
		if g.Players[p].indexOf(t) >= 0 {
			return p, true
		}
	}
	return 0, false
}

// highestPipsFirst is the fallback when no double was dealt: highest pip total
// wins, equal totals prefer the lower low value, and remaining ties keep the
// first tile found scanning seats then hand order.
func highestPipsFirst(g *GameState) uint8 {
	best := uint8(0)
	bestTotal := -1
	bestLow := uint8(0)
	for p := uint8(0); p < g.NumPlayers; p++ {
		for _, t := range g.Players[p].Tiles() {
			total := t.Pips()
			if total > bestTotal || (total == bestTotal && t.Low() < bestLow) {
				best, bestTotal, bestLow = p, total, t.Low()
			}
		}
	}
	return best
}
