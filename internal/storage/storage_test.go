package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"instaapp/internal/config"
	"instaapp/internal/core"
	"instaapp/internal/storage"

	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, store core.TokenStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, core.ErrNoToken)

	require.NoError(t, store.Save(ctx, "token-1"))
	token, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "token-1", token)

	require.NoError(t, store.Save(ctx, "token-2"))
	token, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "token-2", token)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, core.ErrNoToken)

	require.NoError(t, store.Clear(ctx))
}

func TestMemory(t *testing.T) {
	t.Parallel()

	testStore(t, storage.NewMemory(""))
}

func TestFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", storage.TokenKey)
	store := &storage.File{Config: &config.Config{TokenPath: path}}
	require.NoError(t, store.Init(context.Background()))
	require.Equal(t, path, store.Path())

	testStore(t, store)

	require.NoError(t, store.Save(context.Background(), "secret"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFile_BlankFileHasNoToken(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), storage.TokenKey)
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

	_, err := storage.NewFile(path).Load(context.Background())
	require.ErrorIs(t, err, core.ErrNoToken)
}

func TestProvide(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{"", config.TokenStoreFile, config.TokenStoreNATS, config.TokenStoreRedis} {
		def, err := storage.Provide(kind)
		require.NoError(t, err)
		require.NotNil(t, def)
	}

	_, err := storage.Provide("s3")
	require.ErrorIs(t, err, storage.ErrUnknownStore)
}
