package engine

// LegalMoves returns every (tile, side) the player may play right now, in hand
// order. It is empty when it is not the player's turn or the game is not active.
func (g *GameState) LegalMoves(playerID string) []Move {
	seat, ok := g.actingSeat(playerID)
	if !ok {
		return nil
	}
	return g.appendLegal(nil, seat)
}

// HasLegalMove reports whether the player could play a tile now.
func (g *GameState) HasLegalMove(playerID string) bool {
	seat, ok := g.actingSeat(playerID)
	if !ok {
		return false
	}
	return g.seatCanPlay(seat)
}

// CanDraw reports whether DrawTile would succeed for the player.
func (g *GameState) CanDraw(playerID string) bool {
	_, ok := g.actingSeat(playerID)
	return ok && g.BoneLen > 0
}

// MustPass reports whether PassTurn is the player's only legal action.
func (g *GameState) MustPass(playerID string) bool {
	seat, ok := g.actingSeat(playerID)
	return ok && g.BoneLen == 0 && !g.seatCanPlay(seat)
}

// actingSeat resolves playerID to a seat only if the game is active and it is
// that seat's turn.
func (g *GameState) actingSeat(playerID string) (uint8, bool) {
	if g.Status != StatusActive {
		return 0, false
	}
	seat, ok := g.SeatOf(playerID)
	if !ok || seat != g.CurrentPlayer {
		return 0, false
	}
	return seat, true
}

func (g *GameState) appendLegal(moves []Move, seat uint8) []Move {
	hand := g.Players[seat].Tiles()
	left, right, ok := g.Ends()
	if !ok {
		for _, t := range hand {
			if g.openingAllowed(t) {
				moves = append(moves, Move{Tile: t, Side: SideLeft})
			}
		}
		return moves
	}
	for _, t := range hand {
		if t.Matches(left) {
			moves = append(moves, Move{Tile: t, Side: SideLeft})
		}
		if t.Matches(right) {
			moves = append(moves, Move{Tile: t, Side: SideRight})
		}
	}
	return moves
}

func (g *GameState) seatCanPlay(seat uint8) bool {
	left, right, ok := g.Ends()
	for _, t := range g.Players[seat].Tiles() {
		if !ok {
			if g.openingAllowed(t) {
				return true
			}
			continue
		}
		if t.Matches(left) || t.Matches(right) {
			return true
		}
	}
	return false
}

// openingAllowed reports whether t may be the first tile on the board.
func (g *GameState) openingAllowed(t Tile) bool {
	if !g.Rules.ForceOpeningDouble || g.Opener == EmptyTile {
		return true
	}
	return t == g.Opener
}
