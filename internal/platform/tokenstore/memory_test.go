package tokenstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dana280/heartbeat-app/internal/platform/tokenstore"
	"github.com/dana280/heartbeat-app/pkg/relay"
)

func TestMemoryStore_SetAndFetch(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "alice", "fcm-token-1"))

	token, err := store.Fetch(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "fcm-token-1", token)
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "alice", "old-token"))
	require.NoError(t, store.Set(ctx, "alice", "new-token"))

	token, err := store.Fetch(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "new-token", token)
}

func TestMemoryStore_FetchUnknownUser(t *testing.T) {
	store := tokenstore.NewMemoryStore()

	_, err := store.Fetch(context.Background(), "ghost")

	assert.ErrorIs(t, err, relay.ErrTokenNotFound)
}
