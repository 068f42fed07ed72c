package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	app_errors "pocketchat/internal/errors"
	"pocketchat/internal/model"
)

// Fixed transcript strings. The raw provider error is never shown to the
// user; failures always settle to fallbackReply.
const (
	greetingMessage    = "Hello! How can I help you today?"
	pendingPlaceholder = "Thinking..."
	fallbackReply      = "Sorry, I encountered an error. Please try again."
	defaultTitle       = "New Chat"
)

// titleMaxLen is the bound on titles derived from the first user message.
const titleMaxLen = 30

// Session owns the in-memory transcript of one open conversation. All
// state is scoped to the session instance; nothing is shared across open
// conversations. A session moves idle -> sending -> idle on every Send,
// and only one send may be in flight at a time.
type Session struct {
	svc *ChatService

	mu        sync.Mutex
	id        string
	title     string
	createdAt time.Time
	updatedAt time.Time
	lastUsed  time.Time
	messages  []model.Message
	isNew     bool
	sending   bool
	closed    bool

	// epoch increments on Reset so a send that resolves after the
	// transcript was replaced cannot mutate the new one.
	epoch uint64

	// cancelInFlight aborts the outstanding completion request, if any.
	cancelInFlight context.CancelFunc
}

func newSession(svc *ChatService) *Session {
	now := time.Now().UTC()
	return &Session{
		svc:       svc,
		id:        uuid.NewString(),
		title:     defaultTitle,
		createdAt: now,
		updatedAt: now,
		lastUsed:  now,
		messages:  []model.Message{{Role: model.RoleAssistant, Content: greetingMessage}},
		isNew:     true,
	}
}

func loadedSession(svc *ChatService, conv model.Conversation) *Session {
	return &Session{
		svc:       svc,
		id:        conv.ID,
		title:     conv.Title,
		createdAt: conv.CreatedAt,
		updatedAt: conv.UpdatedAt,
		lastUsed:  time.Now().UTC(),
		messages:  append([]model.Message(nil), conv.Messages...),
	}
}

// ID returns the conversation identifier, immutable for the life of the
// conversation (Reset starts a new conversation with a new id).
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Transcript returns a copy of the current in-memory transcript, including
// any pending placeholder.
func (s *Session) Transcript() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Message(nil), s.messages...)
}

// Snapshot returns the conversation record for the current transcript.
func (s *Session) Snapshot() model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now().UTC()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() model.Conversation {
	return model.Conversation{
		ID:        s.id,
		Title:     s.title,
		Messages:  append([]model.Message(nil), s.messages...),
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

// Send runs one message exchange: it appends the user message and a
// pending placeholder, invokes the completion client with the history up
// to and including the user message, replaces the placeholder with the
// reply (or with a fixed user-safe fallback on failure), derives the title
// on a new conversation's first response, and persists the result.
//
// Send returns an error only when the exchange never started: empty input,
// a send already in flight, or a closed session. A completion failure is
// not an error here; it settles into the transcript as the fallback reply.
// Persistence failure is logged and does not roll back the transcript.
func (s *Session) Send(ctx context.Context, text string, attachments []model.Attachment) ([]model.Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" && len(attachments) == 0 {
		return nil, app_errors.ErrEmptyMessage
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, app_errors.ErrSessionClosed
	}
	if s.sending {
		s.mu.Unlock()
		return nil, app_errors.ErrConversationBusy
	}
	s.sending = true

	userMessage := model.Message{Role: model.RoleUser, Content: trimmed, Attachments: attachments}
	s.messages = append(s.messages, userMessage)
	s.messages = append(s.messages, model.Message{Role: model.RoleAssistant, Content: pendingPlaceholder, Pending: true})

	// History for the provider: everything up to and including the new
	// user message, without the placeholder.
	history := append([]model.Message(nil), s.messages[:len(s.messages)-1]...)

	genCtx, cancel := context.WithCancel(ctx)
	s.cancelInFlight = cancel
	startEpoch := s.epoch
	s.mu.Unlock()

	reply, genErr := s.svc.llm.Generate(genCtx, history)
	cancel()

	s.mu.Lock()
	s.cancelInFlight = nil
	s.sending = false
	if s.closed || s.epoch != startEpoch {
		// The session was torn down or reset while the request was in
		// flight; discard the result rather than mutating disposed state.
		s.mu.Unlock()
		return nil, app_errors.ErrSessionClosed
	}

	s.dropPendingLocked()
	if genErr != nil {
		slog.Error("Completion request failed", "conversation_id", s.id, "error", genErr)
		s.messages = append(s.messages, model.Message{Role: model.RoleAssistant, Content: fallbackReply})
	} else {
		s.messages = append(s.messages, model.Message{Role: model.RoleAssistant, Content: reply})
	}

	if s.isNew {
		if userMessage.Content != "" {
			s.title = deriveTitle(userMessage.Content)
		}
		s.isNew = false
	}

	s.updatedAt = time.Now().UTC()
	s.lastUsed = s.updatedAt
	conv := s.snapshotLocked()
	transcript := append([]model.Message(nil), s.messages...)
	s.mu.Unlock()

	// Best-effort durability: the user keeps the in-memory exchange even
	// if the save fails. The save is detached from the request context so
	// a caller disconnect cannot drop the settled exchange.
	if err := s.svc.store.Put(context.WithoutCancel(ctx), conv); err != nil {
		slog.Error("Failed to persist conversation", "conversation_id", conv.ID, "error", err)
	}

	return transcript, nil
}

// Reset starts a new chat in this session: a fresh id, the fixed greeting
// transcript, and cleared pending state. The previously persisted record
// is left untouched.
func (s *Session) Reset() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.cancelInFlight != nil {
		s.cancelInFlight()
		s.cancelInFlight = nil
	}
	oldID := s.id
	s.id = uuid.NewString()
	s.title = defaultTitle
	s.createdAt = time.Now().UTC()
	s.updatedAt = s.createdAt
	s.lastUsed = s.createdAt
	s.messages = []model.Message{{Role: model.RoleAssistant, Content: greetingMessage}}
	s.isNew = true
	s.sending = false
	s.epoch++
	newID := s.id
	s.mu.Unlock()

	s.svc.rekeySession(oldID, newID, s)
}

// Close disposes the session. Any in-flight completion request is
// canceled, and a result that resolves after Close is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cancelInFlight != nil {
		s.cancelInFlight()
		s.cancelInFlight = nil
	}
	id := s.id
	s.mu.Unlock()

	s.svc.forgetSession(id, s)
}

// idleSince reports whether the session has no send in flight and saw no
// activity after cutoff. Idle sessions are safe to drop from the registry:
// their transcript matches the persisted record, or was never sent at all.
func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.sending && s.lastUsed.Before(cutoff)
}

func (s *Session) dropPendingLocked() {
	kept := s.messages[:0]
	for _, m := range s.messages {
		if !m.Pending {
			kept = append(kept, m)
		}
	}
	s.messages = kept
}

// deriveTitle builds a conversation title from the first user message:
// the message verbatim when it fits, otherwise the first titleMaxLen
// characters followed by an ellipsis marker.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleMaxLen {
		return content
	}
	return string(runes[:titleMaxLen]) + "..."
}
