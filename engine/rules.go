package engine

// FirstPlayerRule selects which policy decides the opening player.
type FirstPlayerRule uint8

const (
	FirstHighestDouble FirstPlayerRule = iota // 6-6 down to 0-0
	FirstLowestDouble                         // 0-0 up to 6-6
)

func (r FirstPlayerRule) String() string {
	if r == FirstLowestDouble {
		return "lowest_double"
	}
	return "highest_double"
}

// HouseRules holds configurable game rule settings.
type HouseRules struct {
	HandSize           uint8 // 0 = derived from player count
	FirstPlayer        FirstPlayerRule
	ForceOpeningDouble bool // if true, the opener must lead with the qualifying double
	RotateSeats        bool // if true, each session game rotates the roster by one seat
}

// DefaultHouseRules returns the standard domino house rules.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		HandSize:           0,
		FirstPlayer:        FirstHighestDouble,
		ForceOpeningDouble: false,
		RotateSeats:        true,
	}
}

// defaultHandSizes maps player count to tiles dealt per player.
var defaultHandSizes = [MaxPlayers + 1]uint8{0, 0, 7, 7, 5, 4, 4}

// handSize returns the effective hand size for n players.
func (r *HouseRules) handSize(n int) uint8 {
	if r.HandSize != 0 {
		return r.HandSize
	}
	if n < 0 || n > MaxPlayers {
		return 0
	}
	return defaultHandSizes[n]
}
