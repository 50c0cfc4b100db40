package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwillc/netposture/internal/core/domain"
	"github.com/uwillc/netposture/internal/core/ports"
)

func newTestProfileRepo(t *testing.T) *SQLiteProfileRepository {
	t.Helper()
	repo, err := NewSQLiteProfileRepository(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestProfileSaveAndGet(t *testing.T) {
	repo := newTestProfileRepo(t)
	ctx := context.Background()

	profile := domain.DeviceProfile{
		Name:        "edge-router",
		Platform:    "IOS XE",
		Version:     "17.9.3",
		Description: "Branch edge router",
	}
	require.NoError(t, repo.Save(ctx, profile))

	got, err := repo.Get(ctx, "edge-router")
	require.NoError(t, err)
	assert.Equal(t, profile.Platform, got.Platform)
	assert.Equal(t, profile.Version, got.Version)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestProfileGet_NotFound(t *testing.T) {
	repo := newTestProfileRepo(t)

	_, err := repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ports.ErrProfileNotFound)
}

func TestProfileSave_Updates(t *testing.T) {
	repo := newTestProfileRepo(t)
	ctx := context.Background()

	profile := domain.DeviceProfile{Name: "edge-router", Platform: "IOS XE", Version: "17.9.3"}
	require.NoError(t, repo.Save(ctx, profile))

	profile.Version = "17.9.4a"
	require.NoError(t, repo.Save(ctx, profile))

	got, err := repo.Get(ctx, "edge-router")
	require.NoError(t, err)
	assert.Equal(t, "17.9.4a", got.Version)

	profiles, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

func TestProfileList_OrderedByName(t *testing.T) {
	repo := newTestProfileRepo(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, repo.Save(ctx, domain.DeviceProfile{Name: name}))
	}

	profiles, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "alpha", profiles[0].Name)
	assert.Equal(t, "mid", profiles[1].Name)
	assert.Equal(t, "zeta", profiles[2].Name)
}

func TestProfileDelete(t *testing.T) {
	repo := newTestProfileRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.DeviceProfile{Name: "edge-router"}))
	require.NoError(t, repo.Delete(ctx, "edge-router"))

	_, err := repo.Get(ctx, "edge-router")
	assert.ErrorIs(t, err, ports.ErrProfileNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "edge-router"), ports.ErrProfileNotFound)
}
