package conversation

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-ai/citizen-assist-platform/internal/intent"
)

func newTestHistoryStore(t *testing.T) (*RedisHistoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisHistoryStore(client), mr
}

func TestHistoryStoreRoundTrip(t *testing.T) {
	store, _ := newTestHistoryStore(t)
	ctx := context.Background()

	history := []intent.ChatMessage{
		{Role: intent.ChatRoleUser, Content: "¿qué necesito para renovar el DNI?"},
		{Role: intent.ChatRoleAssistant, Content: "Necesita su DNI anterior y una foto."},
	}
	require.NoError(t, store.Save(ctx, "conv-1", history))

	loaded, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, history, loaded)
}

func TestHistoryStoreUnknownConversation(t *testing.T) {
	store, _ := newTestHistoryStore(t)

	loaded, err := store.Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestHistoryStoreExpires(t *testing.T) {
	store, mr := newTestHistoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "conv-1", []intent.ChatMessage{
		{Role: intent.ChatRoleUser, Content: "hola"},
	}))

	mr.FastForward(conversationTTL + 1)

	loaded, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
