package database

import (
	"context"
	"testing"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitPlayer(t *testing.T, store *MemoryStore, p *models.Player) error {
	ctx := context.Background()
	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	if err := tx.WritePlayer(ctx, p, models.AllColumns...); err != nil {
		require.NoError(t, tx.Rollback())
		return err
	}
	return tx.Commit()
}

func TestMemoryStoreVersions(t *testing.T) {
	store := NewMemoryStore()
	p := &models.Player{Id: "p1", Money: 100, Version: 1}
	require.NoError(t, commitPlayer(t, store, p))

	stale := p.Clone()
	p.Money, p.Version = 200, 2
	require.NoError(t, commitPlayer(t, store, p))

	stale.Money = 999
	assert.ErrorIs(t, commitPlayer(t, store, stale), ErrConflict)

	row, ok := store.PlayerRow("p1")
	require.True(t, ok)
	assert.Equal(t, 200, row.Money)
	assert.Equal(t, 2, store.Commits())
}

func TestMemoryStoreNewRowMustStartAtOne(t *testing.T) {
	store := NewMemoryStore()
	assert.ErrorIs(t, commitPlayer(t, store, &models.Player{Id: "p1", Version: 3}), ErrConflict)
}

func TestMemoryStoreReadsOwnWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tx, err := store.Begin(ctx)
	require.NoError(t, err)

	_, err = tx.Player(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, tx.WritePlayer(ctx, &models.Player{Id: "p1", Money: 5, Version: 1}))
	got, err := tx.Player(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Money)

	_, ok := store.PlayerRow("p1")
	assert.False(t, ok, "uncommitted write is visible")

	require.NoError(t, tx.WriteSession(ctx, &models.GameSession{Id: "g1", Status: models.GameLobby}))
	require.NoError(t, tx.Commit())
	assert.Error(t, tx.Commit())

	s, ok := store.SessionRow("g1")
	require.True(t, ok)
	assert.Equal(t, models.GameLobby, s.Status)
}

func TestMemoryStoreFailNextCommits(t *testing.T) {
	store := NewMemoryStore()
	store.FailNextCommits(1)
	p := &models.Player{Id: "p1", Version: 1}
	assert.ErrorIs(t, commitPlayer(t, store, p), ErrConflict)
	require.NoError(t, commitPlayer(t, store, p))
	assert.Equal(t, 1, store.Commits())
}
