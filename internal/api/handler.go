package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	app_errors "pocketchat/internal/errors"
	"pocketchat/internal/interfaces"
	"pocketchat/internal/model"
)

// ConversationHandler exposes the conversation service over HTTP.
type ConversationHandler struct {
	service interfaces.ConversationService
}

func NewConversationHandler(svc interfaces.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: svc}
}

// AttachmentRequest is the DTO for one attachment reference on an inbound
// message. The URI is stored verbatim; it is only meaningful to the device
// that produced it.
type AttachmentRequest struct {
	Kind      string `json:"type" validate:"required,oneof=image file"`
	Name      string `json:"name" validate:"required,max=255"`
	URI       string `json:"uri" validate:"required"`
	MimeType  string `json:"mimeType" validate:"max=255"`
	SizeBytes int64  `json:"size" validate:"gte=0"`
}

// SendMessageRequest is the DTO for posting a message to a conversation.
// Content may be empty only when attachments are present; that rule lives
// in the service, not in the tags.
type SendMessageRequest struct {
	Content     string              `json:"content" validate:"max=32000"`
	Attachments []AttachmentRequest `json:"attachments,omitempty" validate:"max=16,dive"`
}

// ConversationSummary is the list-view projection of a conversation.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListConversations handles GET /api/v1/conversations.
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.service.ListConversations(r.Context())
	if err != nil {
		respondWithError(w, fmt.Errorf("%w: %v", app_errors.ErrInternal, err))
		return
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		summaries = append(summaries, ConversationSummary{
			ID:           c.ID,
			Title:        c.Title,
			MessageCount: len(c.Messages),
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		})
	}
	respondWithJSON(w, http.StatusOK, summaries)
}

// CreateConversation handles POST /api/v1/conversations.
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.service.CreateConversation(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, conv)
}

// GetConversation handles GET /api/v1/conversations/{conversationID}.
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")
	conv, err := h.service.GetConversation(r.Context(), id)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, conv)
}

// DeleteConversation handles DELETE /api/v1/conversations/{conversationID}.
func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")
	if err := h.service.DeleteConversation(r.Context(), id); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendMessage handles POST /api/v1/conversations/{conversationID}/messages.
// The call is synchronous: it returns once the exchange has settled, with
// the updated conversation record.
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	attachments := make([]model.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, model.Attachment{
			Kind:      model.AttachmentKind(a.Kind),
			Name:      a.Name,
			URI:       a.URI,
			MimeType:  a.MimeType,
			SizeBytes: a.SizeBytes,
		})
	}
	if len(attachments) == 0 {
		attachments = nil
	}

	conv, err := h.service.SendMessage(r.Context(), id, req.Content, attachments)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, conv)
}
