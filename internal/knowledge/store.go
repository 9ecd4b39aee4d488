package knowledge

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

// Retriever exposes the query capability needed by the query processor.
type Retriever interface {
	Query(ctx context.Context, topic string, query string, topK int) ([]string, error)
}

// Ingestor describes how municipal knowledge is ingested.
type Ingestor interface {
	AddDocuments(ctx context.Context, topic string, contents []string) error
}

// MemoryStore keeps embeddings in memory and supports simple cosine retrieval.
// Documents are grouped by topic; the empty topic holds information shared
// across all departments.
type MemoryStore struct {
	embedder Embedder
	model    string
	logger   *logging.Logger

	mu        sync.RWMutex
	documents map[string][]storedDocument
}

type storedDocument struct {
	content   string
	embedding []float32
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(embedder Embedder, model string, logger *logging.Logger) *MemoryStore {
	if embedder == nil {
		panic("knowledge: embedder cannot be nil")
	}
	if model == "" {
		model = "amazon.titan-embed-text-v2:0"
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &MemoryStore{
		embedder:  embedder,
		model:     model,
		logger:    logger,
		documents: make(map[string][]storedDocument),
	}
}

// AddDocuments embeds and stores the provided contents under a topic.
func (s *MemoryStore) AddDocuments(ctx context.Context, topic string, contents []string) error {
	if len(contents) == 0 {
		return nil
	}

	embeddings, err := s.embedder.Embed(ctx, s.model, contents)
	if err != nil {
		return err
	}
	if len(embeddings) != len(contents) {
		return errors.New("knowledge: embedding response size mismatch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, vec := range embeddings {
		s.documents[topic] = append(s.documents[topic], storedDocument{
			content:   contents[i],
			embedding: vec,
		})
	}
	return nil
}

// Query returns the topK documents for a topic (plus shared docs).
func (s *MemoryStore) Query(ctx context.Context, topic string, query string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = 3
	}

	embeddings, err := s.embedder.Embed(ctx, s.model, []string{query})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, nil
	}
	queryVec := embeddings[0]

	s.mu.RLock()
	defer s.mu.RUnlock()
	var candidates []storedDocument
	if docs, ok := s.documents[topic]; ok {
		candidates = append(candidates, docs...)
	}
	if topic != "" {
		if docs, ok := s.documents[""]; ok {
			candidates = append(candidates, docs...)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	type scored struct {
		score   float64
		content string
	}
	results := make([]scored, 0, len(candidates))
	for _, doc := range candidates {
		results = append(results, scored{
			score:   cosineSimilarity(queryVec, doc.embedding),
			content: doc.content,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	limit := topK
	if len(results) < limit {
		limit = len(results)
	}

	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = results[i].content
	}
	return out, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot float64
	var normA float64
	var normB float64
	for i := range a {
		dot += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
