package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "cart", `{"items":[]}`))

	v, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, v)
}

func TestMemory_GetMissing(t *testing.T) {
	s := NewMemory()

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Overwrite(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "a"))
	require.NoError(t, s.Set(ctx, "k", "b"))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestMemory_Delete(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Delete(ctx, "k"))

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_DeleteMissing(t *testing.T) {
	s := NewMemory()
	assert.NoError(t, s.Delete(context.Background(), "absent"))
}
