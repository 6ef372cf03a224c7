package engine

import (
	"fmt"
	"sort"
)

// Standing is one leaderboard row.
type Standing struct {
	PlayerID string
	Wins     int
}

// Session sequences TotalGames games for a fixed roster and scores them.
// Results are append-only; once TotalGames results exist the session is sealed.
type Session struct {
	Roster     []string
	TotalGames int
	Seed       uint64
	Rules      HouseRules

	results []GameResult
	dealt   int // games dealt so far, including the one in progress
}

// StartSession fixes the roster and deals game 1.
func StartSession(seed uint64, roster []string, totalGames int, rules HouseRules) (*Session, GameState, error) {
	if totalGames < 1 {
		return nil, GameState{}, fmt.Errorf("start session: need at least one game, got %d", totalGames)
	}
	// Validate the roster once up front so NextGame can't fail on it later.
	if _, err := NewGame(seed, roster, rules); err != nil {
		return nil, GameState{}, err
	}
	s := &Session{
		Roster:     append([]string(nil), roster...),
		TotalGames: totalGames,
		Seed:       seed,
		Rules:      rules,
	}
	g, err := s.NextGame()
	if err != nil {
		return nil, GameState{}, err
	}
	return s, g, nil
}

// NextGame deals the next game of the session. It fails with
// SessionAlreadyComplete once every game has been dealt.
func (s *Session) NextGame() (GameState, error) {
	if s.IsComplete() || s.dealt >= s.TotalGames {
		return GameState{}, ruleErr(KindSessionAlreadyComplete, "all %d games have been dealt", s.TotalGames)
	}
	n := s.dealt + 1
	g, err := DealGame(s.gameSeed(n), s.SeatOrder(n), s.Rules)
	if err != nil {
		return GameState{}, err
	}
	s.dealt = n
	return g, nil
}

// SeatOrder returns the turn order for game n (1-based). With RotateSeats the
// roster shifts one seat per game.
func (s *Session) SeatOrder(n int) []string {
	order := make([]string, len(s.Roster))
	shift := 0
	if s.Rules.RotateSeats && len(s.Roster) > 0 {
		shift = (n - 1) % len(s.Roster)
	}
	for i := range s.Roster {
		order[i] = s.Roster[(i+shift)%len(s.Roster)]
	}
	return order
}

// gameSeed derives an independent seed for game n with splitmix64.
func (s *Session) gameSeed(n int) uint64 {
	z := s.Seed + uint64(n)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// RecordGameResult appends the result of the next game. GameNumber is assigned
// here. A winner who is not on the roster is rejected.
func (s *Session) RecordGameResult(r GameResult) error {
	if s.IsComplete() {
		return ruleErr(KindSessionAlreadyComplete, "session already has %d results", s.TotalGames)
	}
	if r.WinnerID != "" && s.seat(r.WinnerID) < 0 {
		return fmt.Errorf("record result: winner %q is not on the roster", r.WinnerID)
	}
	if r.IsFish {
		r.WinnerID = ""
	}
	r.GameNumber = len(s.results) + 1
	s.results = append(s.results, r)
	return nil
}

// IsComplete reports whether every game has a recorded result.
func (s *Session) IsComplete() bool { return len(s.results) == s.TotalGames }

// GamesPlayed returns the number of recorded results.
func (s *Session) GamesPlayed() int { return len(s.results) }

// Results returns a copy of the recorded results in game order.
func (s *Session) Results() []GameResult {
	return append([]GameResult(nil), s.results...)
}

// FishCount returns how many games ended blocked.
func (s *Session) FishCount() int {
	n := 0
	for _, r := range s.results {
		if r.IsFish {
			n++
		}
	}
	return n
}

// Leaderboard lists every roster player by non-fish wins, most first, ties in
// roster order.
func (s *Session) Leaderboard() []Standing {
	board := make([]Standing, len(s.Roster))
	for i, id := range s.Roster {
		board[i].PlayerID = id
	}
	for _, r := range s.results {
		if r.IsFish || r.WinnerID == "" {
			continue
		}
		if i := s.seat(r.WinnerID); i >= 0 {
			board[i].Wins++
		}
	}
	sort.SliceStable(board, func(i, j int) bool { return board[i].Wins > board[j].Wins })
	return board
}

// Winners returns the players tied for the most wins, or nil when nobody won a game.
func (s *Session) Winners() []string {
	board := s.Leaderboard()
	if len(board) == 0 || board[0].Wins == 0 {
		return nil
	}
	var out []string
	for _, st := range board {
		if st.Wins != board[0].Wins {
			break
		}
		out = append(out, st.PlayerID)
	}
	return out
}

func (s *Session) seat(id string) int {
	for i, r := range s.Roster {
		if r == id {
			return i
		}
	}
	return -1
}
