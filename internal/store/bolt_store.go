package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"pocketchat/internal/model"
)

const conversationsBucket = "conversations"

type boltStore struct {
	db *bolt.DB

	// mu serializes Put/Remove. Each mutation rewrites the whole
	// collection, so two concurrent mutations would otherwise race and one
	// of them could drop the other's record.
	mu sync.Mutex
}

// NewBoltStore opens (creating if necessary) the single-file database that
// holds the serialized conversation collection and returns a store backed
// by it. The caller owns the returned closer and should invoke it on
// shutdown.
func NewBoltStore(path string) (ConversationStore, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &boltStore{db: db}
	return s, db.Close, nil
}

func (s *boltStore) List(ctx context.Context) ([]model.Conversation, error) {
	convs := s.readAll(ctx)
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}

func (s *boltStore) Get(ctx context.Context, id string) (model.Conversation, error) {
	for _, c := range s.readAll(ctx) {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Conversation{}, ErrNotFound
}

func (s *boltStore) Put(ctx context.Context, conv model.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("could not load conversation collection: %w", err)
	}
	return s.writeAll(upsert(convs, conv))
}

func (s *boltStore) Remove(ctx context.Context, id string) error {
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
	return s.writeAll(kept)
}

// readAll loads the whole collection for the read path. Failures degrade to
// an empty collection: a corrupted value must not take a reader down with it.
func (s *boltStore) readAll(ctx context.Context) []model.Conversation {
	convs, err := s.load(ctx)
	if err != nil {
		slog.Warn("Failed to read conversation collection, treating as empty", "error", err)
		return nil
	}
	return convs
}

// load returns the decoded collection or the reason it could not be read.
// Put and Remove rewrite the whole collection, so they must fail here
// rather than write back an empty result and discard every stored
// conversation.
func (s *boltStore) load(ctx context.Context) ([]model.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(conversationsBucket))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(collectionKey)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var convs []model.Conversation
	if err := json.Unmarshal(raw, &convs); err != nil {
		return nil, fmt.Errorf("stored conversation collection is malformed: %w", err)
	}
	return convs, nil
}

func (s *boltStore) writeAll(convs []model.Conversation) error {
	if convs == nil {
		convs = []model.Conversation{}
	}
	raw, err := json.Marshal(convs)
	if err != nil {
		return fmt.Errorf("could not encode conversation collection: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(conversationsBucket))
		if err != nil {
			return err
		}
		return b.Put([]byte(collectionKey), raw)
	})
	if err != nil {
		return fmt.Errorf("could not write conversation collection: %w", err)
	}
	return nil
}

// upsert splices conv into the collection, stamping timestamps and
// stripping pending messages. CreatedAt is preserved for an existing
// record and assigned fresh on first insert.
func upsert(convs []model.Conversation, conv model.Conversation) []model.Conversation {
	now := time.Now().UTC()
	conv = conv.WithoutPending()
	conv.UpdatedAt = now

	for i, existing := range convs {
		if existing.ID == conv.ID {
			conv.CreatedAt = existing.CreatedAt
			convs[i] = conv
			return convs
		}
	}

	conv.CreatedAt = now
	return append(convs, conv)
}
