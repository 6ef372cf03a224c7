// internal/game/rules.go
package game

import (
	"fmt"

	engine "github.com/jason-s-yu/domino/engine"
	"github.com/jason-s-yu/domino/internal/config"
)

// HouseRules are the per-session settings chosen when a lobby becomes a game.
type HouseRules struct {
	TurnTimerSec       int    `json:"turnTimerSec"` // 0 disables the turn timer
	BotDelayMs         int    `json:"botDelayMs"`
	GamesPerSession    int    `json:"gamesPerSession"`
	HandSize           int    `json:"handSize"` // 0 = by player count
	FirstPlayer        string `json:"firstPlayer"`
	ForceOpeningDouble bool   `json:"forceOpeningDouble"`
	RotateSeats        bool   `json:"rotateSeats"`
	BotLevel           string `json:"botLevel"`
}

// DefaultHouseRules mirrors config.Default.
func DefaultHouseRules() HouseRules {
	return HouseRulesFromConfig(config.Default())
}

// HouseRulesFromConfig copies the game settings out of the process config.
func HouseRulesFromConfig(c config.Config) HouseRules {
	return HouseRules{
		TurnTimerSec:       int(c.TurnTimer.Seconds()),
		BotDelayMs:         int(c.BotDelay.Milliseconds()),
		GamesPerSession:    c.GamesPerSession,
		HandSize:           c.HandSize,
		FirstPlayer:        c.FirstPlayerRule,
		ForceOpeningDouble: c.ForceOpeningDouble,
		RotateSeats:        c.RotateSeats,
		BotLevel:           c.BotLevel,
	}
}

// engineRules maps the service rules onto the engine's.
func (r HouseRules) engineRules() (engine.HouseRules, error) {
	er := engine.DefaultHouseRules()
	if r.HandSize < 0 || r.HandSize > engine.SetSize {
		return er, fmt.Errorf("hand size %d out of range", r.HandSize)
	}
	er.HandSize = uint8(r.HandSize)
	er.ForceOpeningDouble = r.ForceOpeningDouble
	er.RotateSeats = r.RotateSeats
	switch r.FirstPlayer {
	case "", "highest_double":
		er.FirstPlayer = engine.FirstHighestDouble
	case "lowest_double":
		er.FirstPlayer = engine.FirstLowestDouble
	default:
		return er, fmt.Errorf("unknown first player rule %q", r.FirstPlayer)
	}
	return er, nil
}
