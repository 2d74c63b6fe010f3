package usecases

import (
	"sync"

	"project_asesoria/internal/entities"
)

const historyDepth = 6

// HistoryStore keeps the last few turns per conversation in memory for the
// completion service. It is deliberately ephemeral: a restart forgets it.
type HistoryStore struct {
	mu    sync.Mutex
	turns map[string][]entities.ChatTurn
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{turns: make(map[string][]entities.ChatTurn)}
}

// Append records a turn and trims the window to the newest entries.
func (h *HistoryStore) Append(chatID, role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := append(h.turns[chatID], entities.ChatTurn{Role: role, Content: content})
	if len(t) > historyDepth {
		t = t[len(t)-historyDepth:]
	}
	h.turns[chatID] = t
}

// Recent returns a copy of the stored window.
func (h *HistoryStore) Recent(chatID string) []entities.ChatTurn {
	h.mu.Lock()
	defer h.mu.Unlock()
	src := h.turns[chatID]
	out := make([]entities.ChatTurn, len(src))
	copy(out, src)
	return out
}

// Forget drops the window, used when a chat is handed to a human.
func (h *HistoryStore) Forget(chatID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.turns, chatID)
}
