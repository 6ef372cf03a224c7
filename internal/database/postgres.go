// internal/database/postgres.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS players (
	id           TEXT NOT NULL,
	group_id     TEXT NOT NULL,
	display_name TEXT NOT NULL,
	is_bot       BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (id, group_id)
);

CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	group_id    TEXT NOT NULL,
	status      TEXT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS games (
	id          BIGSERIAL PRIMARY KEY,
	session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	group_id    TEXT NOT NULL,
	game_number INTEGER NOT NULL,
	status      TEXT NOT NULL,
	winner_id   TEXT,
	is_fish     BOOLEAN NOT NULL DEFAULT FALSE,
	finished_at TIMESTAMPTZ,
	UNIQUE (session_id, game_number)
);

CREATE INDEX IF NOT EXISTS games_group_idx ON games (group_id);
`

// pgExecer is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresStore is the pgx-backed Store.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// OpenPostgres creates a pool and checks connectivity.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	log.Info("Connected to Postgres")
	return &PostgresStore{Pool: pool}, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, postgresSchema)
	return err
}

func (s *PostgresStore) EnsurePlayer(ctx context.Context, p PlayerRecord) error {
	return ensurePlayerPg(ctx, s.Pool, p)
}

func ensurePlayerPg(ctx context.Context, q pgExecer, p PlayerRecord) error {
	_, err := q.Exec(ctx, `
		INSERT INTO players (id, group_id, display_name, is_bot)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id, group_id) DO UPDATE SET display_name = EXCLUDED.display_name`,
		p.ID.String(), p.GroupID, p.DisplayName, p.IsBot)
	return err
}

// SaveSession writes the session, its players and its games in one transaction.
func (s *PostgresStore) SaveSession(ctx context.Context, rec SessionRecord) error {
	if err := validateSession(rec); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		for _, p := range rec.Players {
			if p.GroupID == "" {
				p.GroupID = rec.GroupID
			}
			if err := ensurePlayerPg(ctx, tx, p); err != nil {
				return fmt.Errorf("player %s: %w", p.ID, err)
			}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO sessions (id, group_id, status, started_at, finished_at)
			VALUES ($1, $2, 'finished', $3, $4)`,
			rec.ID.String(), rec.GroupID, rec.StartedAt, rec.FinishedAt); err != nil {
			return fmt.Errorf("session %s: %w", rec.ID, err)
		}

		batch := &pgx.Batch{}
		for _, g := range rec.Games {
			batch.Queue(`
				INSERT INTO games (session_id, group_id, game_number, status, winner_id, is_fish, finished_at)
				VALUES ($1, $2, $3, 'finished', $4, $5, $6)`,
				rec.ID.String(), rec.GroupID, g.GameNumber, nullableID(g.WinnerID), g.IsFish, rec.FinishedAt)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("games for session %s: %w", rec.ID, err)
		}
		return nil
	})
}

func (s *PostgresStore) GroupLeaderboard(ctx context.Context, groupID string) ([]LeaderboardRow, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT COALESCE(g.winner_id, ''), COALESCE(MAX(p.display_name), ''), g.is_fish, COUNT(*)
		FROM games g
		LEFT JOIN players p ON p.id = g.winner_id AND p.group_id = g.group_id
		WHERE g.group_id = $1 AND g.status = 'finished' AND (g.is_fish OR g.winner_id IS NOT NULL)
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

func (s *PostgresStore) Close() { s.Pool.Close() }
