//go:build integration

package engine

// Long-running randomized suites. Run: go test -tags integration ./engine/

import "testing"

func TestIntegrationManyGames(t *testing.T) {
	rosters := [][]string{{"a", "b"}, {"a", "b", "c"}, fourPlayers, {"a", "b", "c", "d", "e"}, {"a", "b", "c", "d", "e", "f"}}
	fish := 0
	for seed := uint64(1); seed <= 5000; seed++ {
		g, _ := playRandomGame(t, seed, rosters[seed%uint64(len(rosters))])
		if g.IsFish {
			fish++
		}
	}
	t.Logf("%d/5000 games ended blocked", fish)
}

// TestIntegrationSessionPlaythrough plays complete sessions and checks the
// leaderboard against the recorded results.
func TestIntegrationSessionPlaythrough(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		s, g, err := StartSession(seed, fourPlayers, 5, DefaultHouseRules())
		if err != nil {
			t.Fatal(err)
		}
		wins := map[string]int{}
		for !s.IsComplete() {
			for !g.IsTerminal() {
				id := g.CurrentPlayerID()
				switch moves := g.LegalMoves(id); {
				case len(moves) > 0:
					err = g.ApplyMove(id, moves[0].Tile, moves[0].Side)
				case g.CanDraw(id):
					_, err = g.DrawTile(id)
				default:
					err = g.PassTurn(id)
				}
				if err != nil {
					t.Fatalf("seed %d: %v", seed, err)
				}
			}
			r := g.Result()
			if r.WinnerID != "" {
				wins[r.WinnerID]++
			}
			if err := s.RecordGameResult(r); err != nil {
				t.Fatal(err)
			}
			if !s.IsComplete() {
				if g, err = s.NextGame(); err != nil {
					t.Fatal(err)
				}
			}
		}
		total := 0
		for _, st := range s.Leaderboard() {
			if st.Wins != wins[st.PlayerID] {
				t.Fatalf("seed %d: %s has %d wins, counted %d", seed, st.PlayerID, st.Wins, wins[st.PlayerID])
			}
			total += st.Wins
		}
		if total+s.FishCount() != 5 {
			t.Fatalf("seed %d: %d wins + %d fish != 5", seed, total, s.FishCount())
		}
	}
}
