package model

import "time"

// Role identifies the author of a message. The set is closed: every
// consumer switches exhaustively over these three values.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// AttachmentKind identifies what a message attachment points at.
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentFile  AttachmentKind = "file"
)

// Valid reports whether k is one of the known attachment kinds.
func (k AttachmentKind) Valid() bool {
	return k == AttachmentImage || k == AttachmentFile
}

// Attachment is a named reference to a device-local file. The URI is an
// opaque locator that is only meaningful on the device that produced it;
// the backend stores it verbatim and never dereferences it.
type Attachment struct {
	Kind      AttachmentKind `json:"type"`
	Name      string         `json:"name"`
	URI       string         `json:"uri"`
	MimeType  string         `json:"mimeType"`
	SizeBytes int64          `json:"size"`
}

// Message is a single transcript entry. Messages are immutable once
// appended; the one exception is the trailing pending placeholder, which
// is replaced (not mutated) when the real reply settles.
//
// Pending is transient UI state and is deliberately excluded from JSON:
// a pending message must never survive a persist/load round trip.
type Message struct {
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Pending     bool         `json:"-"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Conversation is a titled, timestamped ordered list of messages.
// The JSON field names match the record format written by the mobile app,
// so an existing stored collection loads unchanged.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WithoutPending returns a copy of the conversation with every pending
// message removed. Stores call this before writing so the persisted
// record only ever contains settled messages.
func (c Conversation) WithoutPending() Conversation {
	out := c
	out.Messages = make([]Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		if m.Pending {
			continue
		}
		out.Messages = append(out.Messages, m)
	}
	return out
}
