package entities

import "time"

// Conversation holds the durable per-chat attributes. Ephemeral pending
// states live in the in-memory state store, not here.
type Conversation struct {
	ChatID        string
	Name          *string
	GroupPref     *string // "A" or "B"
	TutorialAsked bool
	TutorialDone  bool
	CreatedAt     time.Time
}

// Window is one business-hours interval for a weekday (0=Sunday..6=Saturday).
// Start > End means the window crosses midnight.
type Window struct {
	ID      int    `json:"id"`
	Weekday int    `json:"dow"`
	Start   string `json:"start"` // "HH:MM"
	End     string `json:"end"`   // "HH:MM"
	Enabled bool   `json:"enabled"`
}

// ServiceStatus is the outage record mutated by admin commands.
type ServiceStatus struct {
	Service     string    `json:"service"`
	Operational bool      `json:"operational"`
	Note        string    `json:"note"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClassSlot is one cell of the weekly class schedule, ordered by Position
// within its group.
type ClassSlot struct {
	Group    string `json:"group"`
	DayKey   string `json:"day_key"` // e.g. "lunes 11 de agosto"
	Slot     string `json:"slot"`    // e.g. "6:00 a 8:00"
	Subject  string `json:"subject"`
	Position int    `json:"position"`
}

// ConversationEntry is one row of the ops listing (responded or paused).
type ConversationEntry struct {
	ChatID        string     `json:"chat_id"`
	Name          *string    `json:"name"`
	LastResponse  *time.Time `json:"last_response"`
	Status        string     `json:"status"` // "responded" | "paused"
	TutorialAsked bool       `json:"tutorial_asked"`
	TutorialDone  bool       `json:"tutorial_done"`
}
