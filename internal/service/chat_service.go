package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	app_errors "pocketchat/internal/errors"
	"pocketchat/internal/llm"
	"pocketchat/internal/model"
	"pocketchat/internal/store"
)

// sessionIdleTTL bounds how long an untouched session stays in the
// registry. Anything a session holds beyond that window is already
// persisted, so evicting it loses nothing; the next use reopens it from
// the store.
const sessionIdleTTL = 30 * time.Minute

// ChatService orchestrates the send/receive cycle between the conversation
// store and the completion client. It keeps a registry of open sessions so
// that all sends for one conversation flow through a single Session and its
// busy guard.
type ChatService struct {
	store store.ConversationStore
	llm   llm.CompletionClient

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewChatService(st store.ConversationStore, client llm.CompletionClient) *ChatService {
	return &ChatService{
		store:    st,
		llm:      client,
		sessions: make(map[string]*Session),
	}
}

// ListConversations returns all persisted conversations, most recently
// updated first.
func (s *ChatService) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	return s.store.List(ctx)
}

// GetConversation returns the conversation with the given id. An open
// session takes precedence over the persisted record, so a freshly created
// conversation is visible before its first save.
func (s *ChatService) GetConversation(ctx context.Context, id string) (model.Conversation, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		return sess.Snapshot(), nil
	}

	conv, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.Conversation{}, fmt.Errorf("%w: conversation %s", app_errors.ErrNotFound, id)
	}
	if err != nil {
		return model.Conversation{}, fmt.Errorf("could not get conversation: %w", err)
	}
	return conv, nil
}

// CreateConversation opens a new chat: a fresh id and the fixed greeting
// transcript. The conversation becomes durable on its first successful
// send, not on creation.
func (s *ChatService) CreateConversation(ctx context.Context) (model.Conversation, error) {
	return s.NewSession().Snapshot(), nil
}

// NewSession opens a session for a brand-new conversation and registers it.
func (s *ChatService) NewSession() *Session {
	sess := newSession(s)

	s.mu.Lock()
	s.sweepIdleLocked(time.Now())
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	slog.Info("Opened new conversation", "conversation_id", sess.id)
	return sess
}

// OpenSession returns the session for an existing conversation, loading it
// from the store when it is not already open.
func (s *ChatService) OpenSession(ctx context.Context, id string) (*Session, error) {
	return s.openSession(ctx, id)
}

// DeleteConversation permanently removes a conversation. Any open session
// for it is closed first, canceling an in-flight send. Removing an id
// that was never persisted is not an error.
func (s *ChatService) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		sess.Close()
	}

	slog.Info("Deleting conversation", "conversation_id", id)
	if err := s.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("could not delete conversation: %w", err)
	}
	return nil
}

// SendMessage runs one exchange on the conversation with the given id and
// returns the settled record. The conversation must be open or persisted;
// an unknown id is a not-found error.
func (s *ChatService) SendMessage(ctx context.Context, id, content string, attachments []model.Attachment) (model.Conversation, error) {
	sess, err := s.openSession(ctx, id)
	if err != nil {
		return model.Conversation{}, err
	}
	if _, err := sess.Send(ctx, content, attachments); err != nil {
		return model.Conversation{}, err
	}
	return sess.Snapshot(), nil
}

// openSession returns the open session for id, reviving one from the
// persisted record when necessary.
func (s *ChatService) openSession(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	s.sweepIdleLocked(time.Now())
	if sess, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	conv, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: conversation %s", app_errors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load conversation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent open may have won the race; keep the registered one.
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	sess := loadedSession(s, conv)
	s.sessions[id] = sess
	return sess, nil
}

func (s *ChatService) rekeySession(oldID, newID string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[oldID] == sess {
		delete(s.sessions, oldID)
	}
	s.sessions[newID] = sess
}

func (s *ChatService) forgetSession(id string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[id] == sess {
		delete(s.sessions, id)
	}
}

// sweepIdleLocked evicts sessions that have been idle for sessionIdleTTL,
// keeping the registry bounded on a long-running server. A persisted
// conversation is reopened from the store on its next use; a new chat
// that never received a message is discarded, as it never became durable.
func (s *ChatService) sweepIdleLocked(now time.Time) {
	cutoff := now.Add(-sessionIdleTTL)
	for id, sess := range s.sessions {
		if sess.idleSince(cutoff) {
			delete(s.sessions, id)
		}
	}
}
