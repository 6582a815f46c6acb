package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the token in the session_tokens row for one terminal slot.
type PostgresStore struct {
	pool *pgxpool.Pool
	slot string
}

// NewPostgresStore returns a Postgres-backed store for slot.
func NewPostgresStore(pool *pgxpool.Pool, slot string) *PostgresStore {
	return &PostgresStore{pool: pool, slot: slot}
}

func (p *PostgresStore) Save(ctx context.Context, token string) error {
	const query = `
        INSERT INTO session_tokens (slot, token)
        VALUES ($1, $2)
        ON CONFLICT (slot) DO UPDATE SET token = EXCLUDED.token, updated_at = NOW()`

	if _, err := p.pool.Exec(ctx, query, p.slot, token); err != nil {
		return fmt.Errorf("postgres save token: %w", err)
	}
	return nil
}

func (p *PostgresStore) Read(ctx context.Context) (string, bool, error) {
	const query = `SELECT token FROM session_tokens WHERE slot=$1`

	var token string
	if err := p.pool.QueryRow(ctx, query, p.slot).Scan(&token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("postgres read token: %w", err)
	}
	return token, true, nil
}

func (p *PostgresStore) Clear(ctx context.Context) error {
	const query = `DELETE FROM session_tokens WHERE slot=$1`

	if _, err := p.pool.Exec(ctx, query, p.slot); err != nil {
		return fmt.Errorf("postgres clear token: %w", err)
	}
	return nil
}
