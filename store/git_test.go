package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mariposa-trails/trailhead/config"
	"github.com/mariposa-trails/trailhead/errors"
)

func newTestStore(t *testing.T) *GitStore {
	t.Helper()
	cfg := config.StoreConfig{
		Path:        t.TempDir(),
		Branch:      "main",
		AuthorName:  "test",
		AuthorEmail: "test@example.com",
	}
	s, err := Open(cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	return s
}

func TestGetMissingBlobIsNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "data.json")
	assert.True(t, errors.IsNotFoundError(err), "empty repo read should be not-found, got %v", err)
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Put(ctx, "data.json", []byte(`[]`), "")
	require.NoError(t, err)
	require.NotEmpty(t, created.Hash)

	got, err := s.Get(ctx, "data.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got.Content)
	assert.Equal(t, created.Hash, got.Hash, "Put hash should match the hash of a subsequent Get")
}

func TestPutWithMatchingHashUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Put(ctx, "version.json", []byte(`{"version": 1}`), "")
	require.NoError(t, err)

	second, err := s.Put(ctx, "version.json", []byte(`{"version": 2}`), first.Hash)
	require.NoError(t, err)
	assert.NotEqual(t, first.Hash, second.Hash)

	got, err := s.Get(ctx, "version.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"version": 2}`), got.Content)
}

func TestPutWithStaleHashConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Put(ctx, "data.json", []byte(`["a"]`), "")
	require.NoError(t, err)

	// Another writer advances the blob
	_, err = s.Put(ctx, "data.json", []byte(`["a","b"]`), first.Hash)
	require.NoError(t, err)

	// The first writer's hash is now stale
	_, err = s.Put(ctx, "data.json", []byte(`["a","c"]`), first.Hash)
	assert.True(t, errors.IsConflictError(err), "stale hash should conflict, got %v", err)

	// The conflicting write must not have landed
	got, err := s.Get(ctx, "data.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(`["a","b"]`), got.Content)
}

func TestCreateOverExistingConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "data.json", []byte(`[]`), "")
	require.NoError(t, err)

	_, err = s.Put(ctx, "data.json", []byte(`[]`), "")
	assert.True(t, errors.IsConflictError(err), "create over existing blob should conflict")
}

func TestUpdateMissingBlobConflicts(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Put(context.Background(), "data.json", []byte(`[]`), "deadbeef")
	assert.True(t, errors.IsConflictError(err),
		"update of a missing blob must conflict, not create, got %v", err)
}

func TestPutIdenticalContentIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Put(ctx, "data.json", []byte(`[]`), "")
	require.NoError(t, err)

	// Same content again with the current hash: allowed, hash unchanged
	second, err := s.Put(ctx, "data.json", []byte(`[]`), first.Hash)
	require.NoError(t, err)
	assert.Equal(t, first.Hash, second.Hash)
}

func TestPutNestedPathCreatesDirectories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	blob, err := s.Put(ctx, "uploads/falls.jpg", []byte{0xFF, 0xD8, 0xFF}, "")
	require.NoError(t, err)

	got, err := s.Get(ctx, "uploads/falls.jpg")
	require.NoError(t, err)
	assert.Equal(t, blob.Hash, got.Hash)
}

func TestPutRejectsTraversalPaths(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "../escape.json", []byte(`{}`), "")
	assert.True(t, errors.IsInvalidRequestError(err))

	_, err = s.Put(ctx, "/etc/passwd", []byte("x"), "")
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestOpenExistingRepository(t *testing.T) {
	cfg := config.StoreConfig{
		Path:        t.TempDir(),
		Branch:      "main",
		AuthorName:  "test",
		AuthorEmail: "test@example.com",
	}
	logger := zap.NewNop().Sugar()

	s1, err := Open(cfg, logger)
	require.NoError(t, err)
	created, err := s1.Put(context.Background(), "data.json", []byte(`["keep"]`), "")
	require.NoError(t, err)

	// Reopen the same path: existing repository and data survive
	s2, err := Open(cfg, logger)
	require.NoError(t, err)
	got, err := s2.Get(context.Background(), "data.json")
	require.NoError(t, err)
	assert.Equal(t, created.Hash, got.Hash)
	assert.Equal(t, []byte(`["keep"]`), got.Content)
}
