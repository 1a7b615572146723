package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "pokegen_credits")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "pokegen_credits", "2000"))
	require.NoError(t, s.Put(ctx, "pokegen_credits", "1900"))
	v, ok, err := s.Get(ctx, "pokegen_credits")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1900", v)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	fixed := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	require.NoError(t, s.Put(ctx, "pokegen_inventory", `[]`))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	v, ok, err := s.Get(ctx, "pokegen_inventory")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)

	at, ok, err := s.UpdatedAt(ctx, "pokegen_inventory")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fixed, at)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}
