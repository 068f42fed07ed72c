package interfaces

import (
	"context"

	"pocketchat/internal/model"
)

// This file defines the interfaces for our core services.
// Depending on these interfaces, instead of concrete implementations, allows for
// decoupling (e.g., API layer from Service layer) and easier testing via mocking.

// ConversationService defines the contract for conversation business logic.
type ConversationService interface {
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	GetConversation(ctx context.Context, id string) (model.Conversation, error)
	CreateConversation(ctx context.Context) (model.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	SendMessage(ctx context.Context, id, content string, attachments []model.Attachment) (model.Conversation, error)
}
