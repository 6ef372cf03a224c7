package engine

// ApplyMove plays tile on side for playerID. All validation happens before the
// first write, so a rejected move leaves the state untouched.
func (g *GameState) ApplyMove(playerID string, tile Tile, side Side) error {
	seat, err := g.checkTurn(playerID)
	if err != nil {
		return err
	}
	p := &g.Players[seat]
	handIdx := p.indexOf(tile)
	if handIdx < 0 {
		return ruleErr(KindInvalidTile, "%s is not in %s's hand", tile, playerID)
	}
	if side != SideLeft && side != SideRight {
		return ruleErr(KindIllegalPlacement, "unknown side %d", side)
	}

	left, right, nonEmpty := g.Ends()
	var placed BoardTile
	switch {
	case !nonEmpty:
		if side != SideLeft {
			return ruleErr(KindIllegalPlacement, "the opening tile is played on the left")
		}
		if !g.openingAllowed(tile) {
			return ruleErr(KindIllegalPlacement, "opening tile must be %s", g.Opener)
		}
		placed = BoardTile{Tile: tile, Left: tile.Low(), Right: tile.High()}
	case side == SideLeft:
		if !tile.Matches(left) {
			return ruleErr(KindIllegalPlacement, "%s doesn't match left end (%d)", tile, left)
		}
		placed = BoardTile{Tile: tile, Left: tile.Other(left), Right: left}
	default:
		if !tile.Matches(right) {
			return ruleErr(KindIllegalPlacement, "%s doesn't match right end (%d)", tile, right)
		}
		placed = BoardTile{Tile: tile, Left: right, Right: tile.Other(right)}
	}

	switch {
	case !nonEmpty:
		g.BoardTiles[g.BoardEnd] = placed
		g.BoardEnd++
	case side == SideLeft:
		g.BoardStart--
		g.BoardTiles[g.BoardStart] = placed
	default:
		g.BoardTiles[g.BoardEnd] = placed
		g.BoardEnd++
	}
	p.removeAt(handIdx)
	p.PassedLastTurn = false
	g.ConsecutivePasses = 0

	g.advanceTurn()
	g.checkGameEnd(seat)
	return nil
}

// DrawTile moves the top boneyard tile into playerID's hand. The turn does not
// advance; the player plays, draws again, or passes once the boneyard is empty.
func (g *GameState) DrawTile(playerID string) (Tile, error) {
	seat, err := g.checkTurn(playerID)
	if err != nil {
		return EmptyTile, err
	}
	if g.BoneLen == 0 {
		return EmptyTile, ruleErr(KindNothingToDraw, "boneyard is empty")
	}

	g.BoneLen--
	drawn := g.Boneyard[g.BoneLen]
	g.Boneyard[g.BoneLen] = EmptyTile

	p := &g.Players[seat]
	p.Hand[p.HandLen] = drawn
	p.HandLen++
	return drawn, nil
}

// PassTurn records a pass. Passing is a last resort: it is only legal with an
// empty boneyard and no playable tile.
func (g *GameState) PassTurn(playerID string) error {
	seat, err := g.checkTurn(playerID)
	if err != nil {
		return err
	}
	if g.BoneLen > 0 {
		return ruleErr(KindIllegalPass, "boneyard is not empty, draw a tile first")
	}
	if g.seatCanPlay(seat) {
		return ruleErr(KindIllegalPass, "%s has a playable tile", playerID)
	}

	g.Players[seat].PassedLastTurn = true
	g.ConsecutivePasses++

	g.advanceTurn()
	g.checkGameEnd(seat)
	return nil
}

// checkTurn returns the acting seat or an InvalidTurn error.
func (g *GameState) checkTurn(playerID string) (uint8, error) {
	switch g.Status {
	case StatusFinished:
		return 0, ruleErr(KindInvalidTurn, "game is already over")
	case StatusWaiting:
		return 0, ruleErr(KindInvalidTurn, "game has not been dealt")
	}
	seat, ok := g.SeatOf(playerID)
	if !ok {
		return 0, ruleErr(KindInvalidTurn, "player %q is not in this game", playerID)
	}
	if seat != g.CurrentPlayer {
		return 0, ruleErr(KindInvalidTurn, "not %s's turn", playerID)
	}
	return seat, nil
}

// advanceTurn rotates to the next seat. No seat is ever skipped.
func (g *GameState) advanceTurn() {
	g.TurnNumber++
	g.CurrentPlayer = g.NextPlayer(g.CurrentPlayer)
	g.TurnDeadline = 0
}
