package usecases

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock time and timer scheduling so pending-state
// expiry is testable without real sleeps.
type Clock interface {
	Now() time.Time
	// AfterFunc schedules fn after d and returns a cancel func. Cancel after
	// firing is a no-op.
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

func SystemClock() Clock { return systemClock{} }

const (
	PendingPaymentTTL   = 120 * time.Second
	PendingScheduleTTL  = 150 * time.Second
	PendingProfessorTTL = 120 * time.Second
)

// PendingPayment is a live yes/no payment-confirmation expectation.
type PendingPayment struct {
	Deadline time.Time
}

// PendingSchedule is a live A/B group-choice expectation; Hint carries the
// original message so "hoy"/"mañana" phrasing survives until resolution.
type PendingSchedule struct {
	Hint     string
	Deadline time.Time
}

type pendingEntry struct {
	hint     string
	deadline time.Time
	cancel   func()
}

// StateStore holds the ephemeral per-conversation pending states. At most one
// entry per kind per conversation; arming a new one replaces (and disarms)
// the previous entry of the same kind. Entries expire silently.
type StateStore struct {
	mu         sync.Mutex
	clock      Clock
	payments   map[string]*pendingEntry
	schedules  map[string]*pendingEntry
	professors map[string]*pendingEntry
}

func NewStateStore(clock Clock) *StateStore {
	if clock == nil {
		clock = SystemClock()
	}
	return &StateStore{
		clock:      clock,
		payments:   make(map[string]*pendingEntry),
		schedules:  make(map[string]*pendingEntry),
		professors: make(map[string]*pendingEntry),
	}
}

func (s *StateStore) SetPendingPayment(chatID string) {
	s.arm(s.payments, chatID, "", PendingPaymentTTL)
}

func (s *StateStore) SetPendingSchedule(chatID, hint string) {
	s.arm(s.schedules, chatID, hint, PendingScheduleTTL)
}

func (s *StateStore) SetAwaitingProfessor(chatID string) {
	s.arm(s.professors, chatID, "", PendingProfessorTTL)
}

// HasPendingPayment reports whether a live (unexpired) record exists without
// consuming it.
func (s *StateStore) HasPendingPayment(chatID string) bool {
	return s.peek(s.payments, chatID)
}

func (s *StateStore) HasPendingSchedule(chatID string) bool {
	return s.peek(s.schedules, chatID)
}

func (s *StateStore) IsAwaitingProfessor(chatID string) bool {
	return s.peek(s.professors, chatID)
}

// ConsumePendingPayment atomically fetches and clears the record. Returns nil
// when no live record exists, so a racing second consumer observes the state
// already cleared.
func (s *StateStore) ConsumePendingPayment(chatID string) *PendingPayment {
	e := s.consume(s.payments, chatID)
	if e == nil {
		return nil
	}
	return &PendingPayment{Deadline: e.deadline}
}

func (s *StateStore) ConsumePendingSchedule(chatID string) *PendingSchedule {
	e := s.consume(s.schedules, chatID)
	if e == nil {
		return nil
	}
	return &PendingSchedule{Hint: e.hint, Deadline: e.deadline}
}

func (s *StateStore) ConsumeAwaitingProfessor(chatID string) bool {
	return s.consume(s.professors, chatID) != nil
}

func (s *StateStore) arm(m map[string]*pendingEntry, chatID, hint string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := m[chatID]; ok {
		prev.cancel()
		delete(m, chatID)
	}

	e := &pendingEntry{hint: hint, deadline: s.clock.Now().Add(ttl)}
	m[chatID] = e
	e.cancel = s.clock.AfterFunc(ttl, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// Only clear if this exact entry is still armed; a consume or a
		// replacement may have won the race.
		if cur, ok := m[chatID]; ok && cur == e {
			delete(m, chatID)
		}
	})
}

func (s *StateStore) peek(m map[string]*pendingEntry, chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := m[chatID]
	return ok && s.clock.Now().Before(e.deadline)
}

func (s *StateStore) consume(m map[string]*pendingEntry, chatID string) *pendingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := m[chatID]
	if !ok {
		return nil
	}
	e.cancel()
	delete(m, chatID)
	if !s.clock.Now().Before(e.deadline) {
		return nil
	}
	return e
}
