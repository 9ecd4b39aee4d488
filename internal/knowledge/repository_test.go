package knowledge

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

func newTestRepository(t *testing.T) *RedisRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRepository(client)
}

func TestRedisRepositoryAppendAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendDocuments(ctx, "documentation", []string{"Doc1", "Doc2"}))
	require.NoError(t, repo.AppendDocuments(ctx, "documentation", []string{"Doc3"}))

	docs, err := repo.GetDocuments(ctx, "documentation")
	require.NoError(t, err)
	assert.Equal(t, []string{"Doc1", "Doc2", "Doc3"}, docs)
}

func TestRedisRepositoryReplace(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendDocuments(ctx, "permits", []string{"Viejo"}))
	require.NoError(t, repo.ReplaceDocuments(ctx, "permits", []string{"Nuevo1", "Nuevo2"}))

	docs, err := repo.GetDocuments(ctx, "permits")
	require.NoError(t, err)
	assert.Equal(t, []string{"Nuevo1", "Nuevo2"}, docs)
}

func TestRedisRepositoryLoadAll(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendDocuments(ctx, "documentation", []string{"Doc1"}))
	require.NoError(t, repo.AppendDocuments(ctx, "", []string{"Horario general"}))

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []string{"Doc1"}, all["documentation"])
	assert.Equal(t, []string{"Horario general"}, all[""])
}

func TestHydrateLoadsIntoStore(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendDocuments(ctx, "documentation", []string{
		"requisitos para renovar el DNI",
	}))

	store := NewMemoryStore(&stubEmbedder{vectors: map[string][]float32{
		"requisitos para renovar el DNI": {1, 0, 0},
	}}, "", logging.New("error"))
	require.NoError(t, Hydrate(ctx, repo, store))

	docs, err := store.Query(ctx, "documentation", "requisitos para renovar el DNI", 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "requisitos para renovar el DNI", docs[0])
}
