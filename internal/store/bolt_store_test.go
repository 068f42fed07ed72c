package store_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"pocketchat/internal/model"
	"pocketchat/internal/store"
)

func setupBoltStore(t *testing.T) store.ConversationStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "conversations.db")
	st, closer, err := store.NewBoltStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, closer()) })

	return st
}

func TestBoltStore_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := setupBoltStore(t)

	conv := model.Conversation{
		ID:    "conv1",
		Title: "Weekend plans",
		Messages: []model.Message{
			{Role: model.RoleAssistant, Content: "Hello! How can I help you today?"},
			{Role: model.RoleUser, Content: "Any hiking ideas?", Attachments: []model.Attachment{
				{Kind: model.AttachmentImage, Name: "trail.jpg", URI: "file:///tmp/trail.jpg", MimeType: "image/jpeg", SizeBytes: 2048},
			}},
		},
	}
	require.NoError(t, st.Put(ctx, conv))

	got, err := st.Get(ctx, "conv1")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
	assert.Equal(t, conv.Title, got.Title)
	assert.Equal(t, conv.Messages, got.Messages)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestBoltStore_PutRefreshesUpdatedAtAndPreservesCreatedAt(t *testing.T) {
	ctx := context.Background()
	st := setupBoltStore(t)

	require.NoError(t, st.Put(ctx, model.Conversation{ID: "conv1", Title: "first"}))
	first, err := st.Get(ctx, "conv1")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	require.NoError(t, st.Put(ctx, model.Conversation{ID: "conv1", Title: "second"}))
	second, err := st.Get(ctx, "conv1")
	require.NoError(t, err)

	assert.Equal(t, "second", second.Title)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestBoltStore_GetUnknownID(t *testing.T) {
	ctx := context.Background()
	st := setupBoltStore(t)

	_, err := st.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBoltStore_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := setupBoltStore(t)

	require.NoError(t, st.Put(ctx, model.Conversation{ID: "conv1"}))
	require.NoError(t, st.Remove(ctx, "conv1"))

	_, err := st.Get(ctx, "conv1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Removing an id that is not present must not fail.
	assert.NoError(t, st.Remove(ctx, "conv1"))
	assert.NoError(t, st.Remove(ctx, "never-existed"))
}

func TestBoltStore_PendingMessagesAreNeverPersisted(t *testing.T) {
	ctx := context.Background()
	st := setupBoltStore(t)

	conv := model.Conversation{
		ID: "conv1",
		Messages: []model.Message{
			{Role: model.RoleUser, Content: "Hi"},
			{Role: model.RoleAssistant, Content: "Thinking...", Pending: true},
		},
	}
	require.NoError(t, st.Put(ctx, conv))

	got, err := st.Get(ctx, "conv1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	for _, m := range got.Messages {
		assert.False(t, m.Pending)
	}
}

func TestBoltStore_InterleavedPutsLoseNoUpdates(t *testing.T) {
	ctx := context.Background()
	st := setupBoltStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = st.Put(ctx, model.Conversation{ID: "convA", Title: "A"})
		}()
		go func() {
			defer wg.Done()
			_ = st.Put(ctx, model.Conversation{ID: "convB", Title: "B"})
		}()
	}
	wg.Wait()

	a, err := st.Get(ctx, "convA")
	require.NoError(t, err)
	assert.Equal(t, "A", a.Title)

	b, err := st.Get(ctx, "convB")
	require.NoError(t, err)
	assert.Equal(t, "B", b.Title)
}

func TestBoltStore_ListOrderedByRecency(t *testing.T) {
	ctx := context.Background()
	st := setupBoltStore(t)

	require.NoError(t, st.Put(ctx, model.Conversation{ID: "old"}))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, st.Put(ctx, model.Conversation{ID: "new"}))

	convs, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "new", convs[0].ID)
	assert.Equal(t, "old", convs[1].ID)
}

func TestBoltStore_MalformedCollectionDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "conversations.db")

	st, closer, err := store.NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, st.Put(ctx, model.Conversation{ID: "conv1"}))
	require.NoError(t, closer())

	// Corrupt the stored collection value out-of-band.
	db, err := bolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("conversations")).Put([]byte("ai_chat_conversations"), []byte("{not json["))
	}))
	require.NoError(t, db.Close())

	st, closer, err = store.NewBoltStore(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, closer()) }()

	convs, err := st.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, convs)

	_, err = st.Get(ctx, "conv1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBoltStore_MutationWithCanceledContextKeepsCollection(t *testing.T) {
	ctx := context.Background()
	st := setupBoltStore(t)

	require.NoError(t, st.Put(ctx, model.Conversation{ID: "conv1", Title: "Kept"}))

	canceled, cancel := context.WithCancel(ctx)
	cancel()

	// A mutation that cannot read the current collection must fail instead
	// of writing back an empty one.
	err := st.Put(canceled, model.Conversation{ID: "conv2", Title: "Other"})
	require.ErrorIs(t, err, context.Canceled)
	err = st.Remove(canceled, "conv1")
	require.ErrorIs(t, err, context.Canceled)

	got, err := st.Get(ctx, "conv1")
	require.NoError(t, err)
	assert.Equal(t, "Kept", got.Title)

	convs, err := st.List(ctx)
	require.NoError(t, err)
	assert.Len(t, convs, 1)
}

func TestBoltStore_MutationOnMalformedCollectionFails(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "conversations.db")

	st, closer, err := store.NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, st.Put(ctx, model.Conversation{ID: "conv1"}))
	require.NoError(t, closer())

	db, err := bolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("conversations")).Put([]byte("ai_chat_conversations"), []byte("{not json["))
	}))
	require.NoError(t, db.Close())

	st, closer, err = store.NewBoltStore(path)
	require.NoError(t, err)

	// The corrupted value stays on disk for recovery; mutations refuse to
	// replace it.
	assert.Error(t, st.Put(ctx, model.Conversation{ID: "conv2"}))
	assert.Error(t, st.Remove(ctx, "conv1"))
	require.NoError(t, closer())

	db, err = bolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()
	require.NoError(t, db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte("conversations")).Get([]byte("ai_chat_conversations"))
		assert.Equal(t, []byte("{not json["), raw)
		return nil
	}))
}
