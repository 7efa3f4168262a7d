package filestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge-ai/docforge/internal/pkg/errs"
)

func newTestLocalStore(t *testing.T) Store {
	t.Helper()
	store, err := createLocalStore(map[string]interface{}{"dir": t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "output/j1/lambda-functions/handler.py", []byte("def handler(): pass"), "text/x-python"))
	data, err := store.Get(ctx, "output/j1/lambda-functions/handler.py")
	require.NoError(t, err)
	require.Equal(t, "def handler(): pass", string(data))
}

func TestLocalStoreGetMissing(t *testing.T) {
	store := newTestLocalStore(t)
	_, err := store.Get(context.Background(), "nope.txt")
	require.Error(t, err)
	require.True(t, errs.IsNotFound(err))
}

func TestLocalStoreListByPrefix(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "output/j1/a.txt", []byte("a"), ""))
	require.NoError(t, store.Put(ctx, "output/j1/sub/b.txt", []byte("b"), ""))
	require.NoError(t, store.Put(ctx, "output/j2/c.txt", []byte("c"), ""))

	keys, err := store.List(ctx, "output/j1/")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"output/j1/a.txt", "output/j1/sub/b.txt"}, keys)
}

func TestLocalStoreDeleteIdempotent(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "x.txt", []byte("x"), ""))
	require.NoError(t, store.Delete(ctx, "x.txt"))
	require.NoError(t, store.Delete(ctx, "x.txt"))
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "../escape.txt", []byte("x"), ""))
	keys, err := store.List(ctx, "")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"escape.txt"}, keys)
}
