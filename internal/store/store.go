package store

import (
	"context"
	"errors"

	"pocketchat/internal/model"
)

// ConversationStore is the durable mapping from conversation id to
// conversation record. Implementations persist the whole collection as a
// single serialized value under a fixed key, so every mutation is a
// read-modify-write of the full collection and must be serialized against
// other mutations to avoid losing updates to unrelated conversations.
//
// Read-path calls (Get, List) are best effort: an unreadable or corrupted
// collection degrades to not-found / empty rather than failing the caller.
type ConversationStore interface {
	// List returns all stored conversations ordered by UpdatedAt descending.
	List(ctx context.Context) ([]model.Conversation, error)

	// Get returns the conversation with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (model.Conversation, error)

	// Put inserts the conversation if its id is unseen, otherwise replaces
	// the stored record entirely. UpdatedAt is stamped with the current
	// time; CreatedAt is assigned on first insert and preserved afterwards.
	// Pending messages are stripped before writing.
	Put(ctx context.Context, conv model.Conversation) error

	// Remove deletes the conversation with the given id. Removing an id
	// that is not present is not an error.
	Remove(ctx context.Context, id string) error
}

// ErrNotFound is a store-specific sentinel error returned when a lookup by
// id finds no record. The service layer translates it into the domain-level
// not-found error, keeping business logic decoupled from the storage
// implementation.
var ErrNotFound = errors.New("store: conversation not found")

// collectionKey is the fixed namespace key the serialized collection lives
// under. It matches the key written by the mobile app, so a collection
// created there is readable here.
const collectionKey = "ai_chat_conversations"
