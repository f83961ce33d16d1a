package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsledger/internal/core/apperror"
)

func TestStorePutGetRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	content := []byte("invoice workbook bytes")

	ref, err := store.Put(ctx, content)
	require.NoError(t, err)

	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), ref)

	got, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestStorePutIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	content := []byte("same bytes")

	ref1, err := store.Put(ctx, content)
	require.NoError(t, err)
	ref2, err := store.Put(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, ref1, ref2)
}

func TestStorePutEmpty(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestStoreGetMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	missing := "0000000000000000000000000000000000000000000000000000000000000000"
	_, err = store.Get(context.Background(), missing)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestStoreGetBadRef(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "../../etc/passwd")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestStoreExists(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	ref, err := store.Put(ctx, []byte("present"))
	require.NoError(t, err)

	ok, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, ok)

	absent := "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
	ok, err = store.Exists(ctx, absent)
	require.NoError(t, err)
	assert.False(t, ok)
}
