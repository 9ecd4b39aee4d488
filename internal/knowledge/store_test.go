package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

// stubEmbedder maps each text to a fixed vector.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := s.vectors[text]
		if !ok {
			vec = []float32{0, 0, 1}
		}
		out[i] = vec
	}
	return out, nil
}

func newTestKnowledgeStore(t *testing.T) *MemoryStore {
	t.Helper()
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"requisitos para renovar el DNI":       {1, 0, 0},
		"horarios de atención al público":      {0, 1, 0},
		"tasas de licencias comerciales":       {0.9, 0.1, 0},
		"cómo renuevo mi documento":            {1, 0.05, 0},
		"a qué hora abre la municipalidad":     {0.05, 1, 0},
	}}
	return NewMemoryStore(embedder, "", logging.New("error"))
}

func TestQueryReturnsMostSimilarFirst(t *testing.T) {
	store := newTestKnowledgeStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddDocuments(ctx, "documentation", []string{
		"requisitos para renovar el DNI",
		"tasas de licencias comerciales",
	}))
	require.NoError(t, store.AddDocuments(ctx, "", []string{
		"horarios de atención al público",
	}))

	docs, err := store.Query(ctx, "documentation", "cómo renuevo mi documento", 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "requisitos para renovar el DNI", docs[0])
}

func TestQueryIncludesSharedDocuments(t *testing.T) {
	store := newTestKnowledgeStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddDocuments(ctx, "", []string{
		"horarios de atención al público",
	}))

	docs, err := store.Query(ctx, "permits", "a qué hora abre la municipalidad", 3)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "horarios de atención al público", docs[0])
}

func TestQueryEmptyStore(t *testing.T) {
	store := newTestKnowledgeStore(t)

	docs, err := store.Query(context.Background(), "legal", "consulta", 3)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestQueryPropagatesEmbedderError(t *testing.T) {
	store := NewMemoryStore(&stubEmbedder{err: errors.New("embed down")}, "", logging.New("error"))

	_, err := store.Query(context.Background(), "", "consulta", 3)
	assert.ErrorContains(t, err, "embed down")
}

func TestAddDocumentsEmptyIsNoop(t *testing.T) {
	store := NewMemoryStore(&stubEmbedder{err: errors.New("should not be called")}, "", logging.New("error"))

	assert.NoError(t, store.AddDocuments(context.Background(), "documentation", nil))
}
