package archive

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

const ddlGames = `
CREATE TABLE IF NOT EXISTS games (
    id           BIGSERIAL    PRIMARY KEY,
    started_at   TIMESTAMPTZ  NOT NULL,
    finished_at  TIMESTAMPTZ  NOT NULL,
    player_color TEXT         NOT NULL,
    engine_elo   INTEGER      NOT NULL,
    moves        TEXT[]       NOT NULL DEFAULT '{}',
    result       TEXT         NOT NULL DEFAULT '',
    winner       TEXT         NOT NULL DEFAULT '',
    quiz_asked   INTEGER      NOT NULL DEFAULT 0,
    quiz_correct INTEGER      NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_games_finished_at
    ON games (finished_at);
`

// PostgresStore is a [Store] backed by a PostgreSQL games table.
// All methods are safe for concurrent use.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore establishes a connection pool to the database at dsn
// and runs [Migrate] to ensure the games table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres archive: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres archive: ping: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres archive: migrate: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the games table if it does not exist. It is idempotent
// and safe to call on every application start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ddlGames); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// Save implements [Store].
func (p *PostgresStore) Save(ctx context.Context, rec Record) (Record, error) {
	const q = `
		INSERT INTO games
		    (started_at, finished_at, player_color, engine_elo, moves, result, winner, quiz_asked, quiz_correct)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := p.pool.QueryRow(ctx, q,
		rec.StartedAt,
		rec.FinishedAt,
		rec.PlayerColor,
		rec.EngineElo,
		rec.Moves,
		rec.Result,
		rec.Winner,
		rec.QuizAsked,
		rec.QuizCorrect,
	).Scan(&rec.ID)
	if err != nil {
		return Record{}, fmt.Errorf("postgres archive: save: %w", err)
	}
	return rec, nil
}

// Get implements [Store].
func (p *PostgresStore) Get(ctx context.Context, id int64) (Record, error) {
	const q = `
		SELECT id, started_at, finished_at, player_color, engine_elo, moves, result, winner, quiz_asked, quiz_correct
		FROM   games
		WHERE  id = $1`

	rec, err := scanRecord(p.pool.QueryRow(ctx, q, id))
	if err != nil {
		return Record{}, fmt.Errorf("postgres archive: get %d: %w", id, err)
	}
	return rec, nil
}

// Recent implements [Store]. Records are ordered newest first.
func (p *PostgresStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	q := `
		SELECT id, started_at, finished_at, player_color, engine_elo, moves, result, winner, quiz_asked, quiz_correct
		FROM   games
		ORDER  BY finished_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += "\nLIMIT $1"
		args = append(args, limit)
	}

	rows, err := p.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres archive: recent: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		return scanRecord(row)
	})
	if err != nil {
		return nil, fmt.Errorf("postgres archive: scan rows: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Close implements [Store].
func (p *PostgresStore) Close() {
	p.pool.Close()
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.StartedAt,
		&rec.FinishedAt,
		&rec.PlayerColor,
		&rec.EngineElo,
		&rec.Moves,
		&rec.Result,
		&rec.Winner,
		&rec.QuizAsked,
		&rec.QuizCorrect,
	)
	return rec, err
}
