package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures a new chi router with all the application's routes.
func NewRouter(conversationHandler *ConversationHandler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID) // Injects a unique request ID into the context.
	r.Use(middleware.RealIP)    // Sets the remote address to the real IP from proxy headers.
	r.Use(middleware.Logger)    // Logs the start and end of each request.
	r.Use(middleware.Recoverer) // Recovers from panics and returns a 500 error.

	// A simple health check endpoint for liveness and readiness probes.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Standard JSON endpoints get a request timeout so client
		// connections cannot hang indefinitely.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/conversations", conversationHandler.ListConversations)
			r.Post("/conversations", conversationHandler.CreateConversation)
			r.Get("/conversations/{conversationID}", conversationHandler.GetConversation)
			r.Delete("/conversations/{conversationID}", conversationHandler.DeleteConversation)
		})

		// Sending a message holds the connection open for the whole
		// completion round trip, so it stays outside the timeout group.
		// The remote endpoint itself has no enforced deadline.
		r.Group(func(r chi.Router) {
			r.Post("/conversations/{conversationID}/messages", conversationHandler.SendMessage)
		})
	})

	return r
}
