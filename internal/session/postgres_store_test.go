package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/pos-frontend/internal/config"
	"github.com/spec-kit/pos-frontend/internal/persistence"
)

func newPostgresStoreTest(t *testing.T) (*PostgresStore, *persistence.Postgres, string) {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, config.PostgresConfig{DSN: dsn}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pg.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pg.PoolHandle(), filepath.Join("..", "..", "migrations"), zap.NewNop()))

	slot := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = pg.PoolHandle().Exec(context.Background(), `DELETE FROM session_tokens WHERE slot=$1`, slot)
	})
	return NewPostgresStore(pg.PoolHandle(), slot), pg, slot
}

func TestPostgresStore(t *testing.T) {
	store, _, _ := newPostgresStoreTest(t)
	exerciseStore(t, store)
}

func TestPostgresStoreKeepsOneRowPerSlot(t *testing.T) {
	store, pg, slot := newPostgresStoreTest(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "first"))
	require.NoError(t, store.Save(ctx, "second"))

	var rows int
	require.NoError(t, pg.PoolHandle().QueryRow(ctx, `SELECT COUNT(*) FROM session_tokens WHERE slot=$1`, slot).Scan(&rows))
	assert.Equal(t, 1, rows)

	other := NewPostgresStore(pg.PoolHandle(), slot+"-other")
	_, ok, err := other.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
