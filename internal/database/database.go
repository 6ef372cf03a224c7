// internal/database/database.go
package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DB is the process-wide result store. Nil when persistence is disabled;
// callers check before use.
var DB Store

// ErrUnsupportedURL is returned by Open for an unknown database URL scheme.
var ErrUnsupportedURL = errors.New("unsupported database url")

// Store persists finished sessions and serves group leaderboards.
type Store interface {
	Migrate(ctx context.Context) error
	EnsurePlayer(ctx context.Context, p PlayerRecord) error
	SaveSession(ctx context.Context, s SessionRecord) error
	GroupLeaderboard(ctx context.Context, groupID string) ([]LeaderboardRow, error)
	Close()
}

// PlayerRecord is a player as known within one group.
type PlayerRecord struct {
	ID          uuid.UUID
	GroupID     string
	DisplayName string
	IsBot       bool
}

// GameRecord is one finished game of a session.
type GameRecord struct {
	GameNumber int
	WinnerID   uuid.UUID // uuid.Nil when nobody won
	IsFish     bool
}

// SessionRecord is a sealed session and its games.
type SessionRecord struct {
	ID         uuid.UUID
	GroupID    string
	Players    []PlayerRecord
	Games      []GameRecord
	StartedAt  time.Time
	FinishedAt time.Time
}

// LeaderboardRow counts wins for one player in a group. Blocked games are
// folded into a single row with IsFish set and a nil PlayerID.
type LeaderboardRow struct {
	PlayerID    uuid.UUID `json:"playerId"`
	DisplayName string    `json:"displayName"`
	Wins        int       `json:"wins"`
	IsFish      bool      `json:"isFish"`
}

// FishDisplayName labels the blocked-games row.
const FishDisplayName = "Fish"

// Open connects to the store named by url: postgres:// and postgresql://
// use pgx, sqlite: and file: use the embedded SQLite driver.
func Open(ctx context.Context, url string) (Store, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return OpenPostgres(ctx, url)
	case strings.HasPrefix(url, "sqlite:"):
		return OpenSQLite(ctx, strings.TrimPrefix(url, "sqlite:"))
	case strings.HasPrefix(url, "file:"):
		return OpenSQLite(ctx, url)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, url)
}

// Connect opens the store, applies the schema and installs it as DB.
func Connect(ctx context.Context, url string) error {
	s, err := Open(ctx, url)
	if err != nil {
		return err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	DB = s
	return nil
}

// Close closes DB if it is open.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

func validateSession(s SessionRecord) error {
	if s.ID == uuid.Nil {
		return errors.New("session record has no id")
	}
	if len(s.Games) == 0 {
		return fmt.Errorf("session %s has no games", s.ID)
	}
	return nil
}

func nullableID(id uuid.UUID) *string {
	if id == uuid.Nil {
		return nil
	}
	s := id.String()
	return &s
}

// foldLeaderboard turns (winner, name, fish, count) rows into the final board,
// merging every blocked-game row into one Fish entry, sorted by wins.
func foldLeaderboard(rows []LeaderboardRow) []LeaderboardRow {
	out := make([]LeaderboardRow, 0, len(rows))
	fishIdx := -1
	for _, r := range rows {
		if r.IsFish {
			if fishIdx < 0 {
				fishIdx = len(out)
				out = append(out, LeaderboardRow{DisplayName: FishDisplayName, IsFish: true})
			}
			out[fishIdx].Wins += r.Wins
			continue
		}
		if r.DisplayName == "" {
			r.DisplayName = "Player " + r.PlayerID.String()[:8]
		}
		out = append(out, r)
	}
	sortRows(out)
	return out
}

func sortRows(rows []LeaderboardRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Wins > rows[j].Wins })
}
