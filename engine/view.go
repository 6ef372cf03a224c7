package engine

// SeatView is one player as seen by a particular observer.
type SeatView struct {
	ID             string
	TileCount      int
	PassedLastTurn bool
	IsCurrent      bool
	Hand           []Tile // only populated for the observer's own seat
}

// PlayerView is the projection of a game that one player is allowed to see.
type PlayerView struct {
	Status         Status
	Players        []SeatView
	Board          []BoardTile
	FirstTileIndex int
	LeftEnd        uint8
	RightEnd       uint8
	HasEnds        bool
	BoneyardCount  int
	CurrentPlayer  string
	WinnerID       string
	IsFish         bool
	TurnNumber     int
	TurnDeadline   int64
	LegalMoves     []Move // the observer's legal moves, empty when not their turn
}

// ProjectFor builds the view for playerID. Every hand except the observer's is
// reduced to a tile count. An unknown playerID sees no hand at all.
func (g *GameState) ProjectFor(playerID string) PlayerView {
	v := PlayerView{
		Status:         g.Status,
		Players:        make([]SeatView, g.NumPlayers),
		Board:          append([]BoardTile(nil), g.Board()...),
		FirstTileIndex: g.FirstTileIndex(),
		BoneyardCount:  g.BoneyardCount(),
		CurrentPlayer:  g.CurrentPlayerID(),
		WinnerID:       g.WinnerID(),
		IsFish:         g.IsFish,
		TurnNumber:     int(g.TurnNumber),
		TurnDeadline:   g.TurnDeadline,
		LegalMoves:     g.LegalMoves(playerID),
	}
	v.LeftEnd, v.RightEnd, v.HasEnds = g.Ends()

	for i := uint8(0); i < g.NumPlayers; i++ {
		p := &g.Players[i]
		sv := SeatView{
			ID:             p.ID,
			TileCount:      int(p.HandLen),
			PassedLastTurn: p.PassedLastTurn,
			IsCurrent:      g.Status == StatusActive && i == g.CurrentPlayer,
		}
		if p.ID == playerID {
			sv.Hand = append([]Tile(nil), p.Tiles()...)
		}
		v.Players[i] = sv
	}
	return v
}
