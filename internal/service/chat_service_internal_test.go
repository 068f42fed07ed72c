package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	mock_llm "pocketchat/internal/llm/mocks"
	mock_store "pocketchat/internal/store/mocks"
)

func TestChatService_SweepEvictsIdleSessions(t *testing.T) {
	mockStore := mock_store.NewMockConversationStore(t)
	mockLLM := mock_llm.NewMockCompletionClient(t)
	svc := NewChatService(mockStore, mockLLM)

	idle := svc.NewSession()
	busy := svc.NewSession()
	fresh := svc.NewSession()

	stale := time.Now().Add(-sessionIdleTTL - time.Minute)
	idle.mu.Lock()
	idle.lastUsed = stale
	idle.mu.Unlock()
	busy.mu.Lock()
	busy.lastUsed = stale
	busy.sending = true
	busy.mu.Unlock()

	svc.mu.Lock()
	svc.sweepIdleLocked(time.Now())
	_, idleKept := svc.sessions[idle.id]
	_, busyKept := svc.sessions[busy.id]
	_, freshKept := svc.sessions[fresh.id]
	svc.mu.Unlock()

	assert.False(t, idleKept, "idle session should be evicted")
	assert.True(t, busyKept, "session with a send in flight must never be evicted")
	assert.True(t, freshKept, "recently used session should stay registered")
}

func TestChatService_OpenSweepsIdleSessions(t *testing.T) {
	mockStore := mock_store.NewMockConversationStore(t)
	mockLLM := mock_llm.NewMockCompletionClient(t)
	svc := NewChatService(mockStore, mockLLM)

	idle := svc.NewSession()
	idle.mu.Lock()
	idle.lastUsed = time.Now().Add(-sessionIdleTTL - time.Minute)
	idle.mu.Unlock()

	// Registering the next session sweeps the stale one, so the registry
	// stays bounded without a background janitor.
	svc.NewSession()

	svc.mu.Lock()
	_, kept := svc.sessions[idle.id]
	svc.mu.Unlock()
	assert.False(t, kept)
}
