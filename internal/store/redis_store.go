package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	"pocketchat/internal/model"
)

// redisStore keeps the serialized collection under the same fixed key as
// the bolt store, just in Redis instead of a local file. Useful when the
// backend runs alongside shared infrastructure rather than on-device.
type redisStore struct {
	rdb *redis.Client
	mu  sync.Mutex
}

// NewRedisStore returns a ConversationStore backed by the given Redis client.
func NewRedisStore(rdb *redis.Client) ConversationStore {
	return &redisStore{rdb: rdb}
}

func (s *redisStore) List(ctx context.Context) ([]model.Conversation, error) {
	convs := s.readAll(ctx)
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}

func (s *redisStore) Get(ctx context.Context, id string) (model.Conversation, error) {
	for _, c := range s.readAll(ctx) {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Conversation{}, ErrNotFound
}

func (s *redisStore) Put(ctx context.Context, conv model.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("could not load conversation collection: %w", err)
	}
	return s.writeAll(ctx, upsert(convs, conv))
}

func (s *redisStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("could not load conversation collection: %w", err)
	}
	kept := convs[:0]
	for _, c := range convs {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	return s.writeAll(ctx, kept)
}

func (s *redisStore) readAll(ctx context.Context) []model.Conversation {
	convs, err := s.load(ctx)
	if err != nil {
		slog.Warn("Failed to read conversation collection from redis, treating as empty", "error", err)
		return nil
	}
	return convs
}

// load returns the decoded collection or the reason it could not be read.
// Put and Remove rewrite the whole collection, so they must fail here
// rather than write back an empty result and discard every stored
// conversation.
func (s *redisStore) load(ctx context.Context) ([]model.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	val, err := s.rdb.Get(ctx, collectionKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var convs []model.Conversation
	if err := json.Unmarshal([]byte(val), &convs); err != nil {
		return nil, fmt.Errorf("stored conversation collection is malformed: %w", err)
	}
	return convs, nil
}

func (s *redisStore) writeAll(ctx context.Context, convs []model.Conversation) error {
	if convs == nil {
		convs = []model.Conversation{}
	}
	raw, err := json.Marshal(convs)
	if err != nil {
		return fmt.Errorf("could not encode conversation collection: %w", err)
	}
	if err := s.rdb.Set(ctx, collectionKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("could not write conversation collection: %w", err)
	}
	return nil
}
