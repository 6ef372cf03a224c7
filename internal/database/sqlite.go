// internal/database/sqlite.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS players (
	id           TEXT NOT NULL,
	group_id     TEXT NOT NULL,
	display_name TEXT NOT NULL,
	is_bot       INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL DEFAULT (unixepoch()),
	PRIMARY KEY (id, group_id)
);

CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	group_id    TEXT NOT NULL,
	status      TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER
);

CREATE TABLE IF NOT EXISTS games (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	group_id    TEXT NOT NULL,
	game_number INTEGER NOT NULL,
	status      TEXT NOT NULL,
	winner_id   TEXT,
	is_fish     INTEGER NOT NULL DEFAULT 0,
	finished_at INTEGER,
	UNIQUE (session_id, game_number)
);

CREATE INDEX IF NOT EXISTS games_group_idx ON games (group_id);
`

// SQLiteStore is the embedded Store used for local play and tests.
// Timestamps are stored as unix milliseconds.
type SQLiteStore struct {
	DB *sql.DB
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer at a time; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, err
	}
	log.Infof("Opened SQLite database %s", path)
	return &SQLiteStore{DB: db}, nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, sqliteSchema)
	return err
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) EnsurePlayer(ctx context.Context, p PlayerRecord) error {
	return ensurePlayerSQLite(ctx, s.DB, p)
}

func ensurePlayerSQLite(ctx context.Context, q sqlExecer, p PlayerRecord) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO players (id, group_id, display_name, is_bot)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id, group_id) DO UPDATE SET display_name = excluded.display_name`,
		p.ID.String(), p.GroupID, p.DisplayName, p.IsBot)
	return err
}

func (s *SQLiteStore) SaveSession(ctx context.Context, rec SessionRecord) (err error) {
	if err := validateSession(rec); err != nil {
		return err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, p := range rec.Players {
		if p.GroupID == "" {
			p.GroupID = rec.GroupID
		}
		if err = ensurePlayerSQLite(ctx, tx, p); err != nil {
			return fmt.Errorf("player %s: %w", p.ID, err)
		}
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, group_id, status, started_at, finished_at)
		VALUES (?, ?, 'finished', ?, ?)`,
		rec.ID.String(), rec.GroupID, rec.StartedAt.UnixMilli(), rec.FinishedAt.UnixMilli()); err != nil {
		return fmt.Errorf("session %s: %w", rec.ID, err)
	}
	for _, g := range rec.Games {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO games (session_id, group_id, game_number, status, winner_id, is_fish, finished_at)
			VALUES (?, ?, ?, 'finished', ?, ?, ?)`,
			rec.ID.String(), rec.GroupID, g.GameNumber, nullableID(g.WinnerID), g.IsFish, rec.FinishedAt.UnixMilli()); err != nil {
			return fmt.Errorf("game %d of session %s: %w", g.GameNumber, rec.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GroupLeaderboard(ctx context.Context, groupID string) ([]LeaderboardRow, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT COALESCE(g.winner_id, ''), COALESCE(MAX(p.display_name), ''), g.is_fish, COUNT(*)
		FROM games g
		LEFT JOIN players p ON p.id = g.winner_id AND p.group_id = g.group_id
		WHERE g.group_id = ? AND g.status = 'finished' AND (g.is_fish OR g.winner_id IS NOT NULL)
		GROUP BY g.winner_id, g.is_fish
		ORDER BY COUNT(*) DESC, MIN(g.id)`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var raw []LeaderboardRow
	for rows.Next() {
		var (
			winner string
			row    LeaderboardRow
		)
		if err := rows.Scan(&winner, &row.DisplayName, &row.IsFish, &row.Wins); err != nil {
			return nil, err
		}
		if winner != "" {
			if row.PlayerID, err = uuid.Parse(winner); err != nil {
				return nil, fmt.Errorf("bad winner id %q: %w", winner, err)
			}
		}
		raw = append(raw, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return foldLeaderboard(raw), nil
}

func (s *SQLiteStore) Close() {
	if err := s.DB.Close(); err != nil {
		log.Warnf("Closing SQLite: %v", err)
	}
}
