package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const documentKeyPrefix = "knowledge:docs:"

// Repository persists municipal knowledge snippets.
type Repository interface {
	AppendDocuments(ctx context.Context, topic string, docs []string) error
	GetDocuments(ctx context.Context, topic string) ([]string, error)
	LoadAll(ctx context.Context) (map[string][]string, error)
}

// Replacer replaces the documents stored under a topic.
type Replacer interface {
	ReplaceDocuments(ctx context.Context, topic string, docs []string) error
}

// RedisRepository stores raw documents in Redis lists.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a Redis-backed knowledge repo.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	if client == nil {
		panic("knowledge: redis client cannot be nil")
	}
	return &RedisRepository{client: client}
}

// AppendDocuments pushes new snippets onto the topic's list.
func (r *RedisRepository) AppendDocuments(ctx context.Context, topic string, docs []string) error {
	if len(docs) == 0 {
		return nil
	}
	args := make([]interface{}, len(docs))
	for i, d := range docs {
		args[i] = d
	}
	if err := r.client.RPush(ctx, documentKey(topic), args...).Err(); err != nil {
		return fmt.Errorf("knowledge: failed to push documents: %w", err)
	}
	return nil
}

// ReplaceDocuments overwrites all snippets for the topic.
func (r *RedisRepository) ReplaceDocuments(ctx context.Context, topic string, docs []string) error {
	key := documentKey(topic)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(docs) > 0 {
		args := make([]interface{}, len(docs))
		for i, d := range docs {
			args[i] = d
		}
		pipe.RPush(ctx, key, args...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("knowledge: failed to replace documents: %w", err)
	}
	return nil
}

// GetDocuments retrieves all snippets for the topic.
func (r *RedisRepository) GetDocuments(ctx context.Context, topic string) ([]string, error) {
	return r.client.LRange(ctx, documentKey(topic), 0, -1).Result()
}

// LoadAll returns every stored document keyed by topic. Used at startup to
// hydrate the in-memory retrieval store.
func (r *RedisRepository) LoadAll(ctx context.Context) (map[string][]string, error) {
	var cursor uint64
	result := make(map[string][]string)

	for {
		keys, next, err := r.client.Scan(ctx, cursor, documentKeyPrefix+"*", 50).Result()
		if err != nil {
			return nil, fmt.Errorf("knowledge: scan document keys failed: %w", err)
		}
		for _, key := range keys {
			topic := strings.TrimPrefix(key, documentKeyPrefix)
			docs, err := r.client.LRange(ctx, key, 0, -1).Result()
			if err != nil {
				return nil, fmt.Errorf("knowledge: fetch documents %s failed: %w", topic, err)
			}
			result[topic] = docs
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return result, nil
}

// Hydrate loads every persisted document into the given ingestor.
func Hydrate(ctx context.Context, repo Repository, ingestor Ingestor) error {
	all, err := repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	for topic, docs := range all {
		if err := ingestor.AddDocuments(ctx, topic, docs); err != nil {
			return fmt.Errorf("knowledge: hydrate topic %s: %w", topic, err)
		}
	}
	return nil
}

func documentKey(topic string) string {
	return documentKeyPrefix + topic
}
