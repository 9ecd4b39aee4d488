package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/civitas-ai/citizen-assist-platform/internal/intent"
)

const conversationTTL = 24 * time.Hour

// HistoryStore persists per-conversation chat history.
type HistoryStore interface {
	Save(ctx context.Context, conversationID string, history []intent.ChatMessage) error
	Load(ctx context.Context, conversationID string) ([]intent.ChatMessage, error)
}

// RedisHistoryStore keeps conversation history in Redis with a rolling TTL.
type RedisHistoryStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewRedisHistoryStore creates a history store on the given client.
func NewRedisHistoryStore(client *redis.Client) *RedisHistoryStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	return &RedisHistoryStore{
		redis:  client,
		tracer: otel.Tracer("civitas.internal.conversation.history"),
	}
}

// Save overwrites the stored history and refreshes the TTL.
func (s *RedisHistoryStore) Save(ctx context.Context, conversationID string, history []intent.ChatMessage) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_history")
	defer span.End()

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal history: %w", err)
	}
	if err := s.redis.Set(ctx, conversationKey(conversationID), data, conversationTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist history: %w", err)
	}
	return nil
}

// Load returns the stored history. An unknown conversation yields an empty
// history, not an error: the first turn of a session has nothing stored yet.
func (s *RedisHistoryStore) Load(ctx context.Context, conversationID string) ([]intent.ChatMessage, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_history")
	defer span.End()

	data, err := s.redis.Get(ctx, conversationKey(conversationID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load history: %w", err)
	}

	var history []intent.ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode history: %w", err)
	}
	return history, nil
}

func conversationKey(id string) string {
	return fmt.Sprintf("conversation:%s", id)
}
