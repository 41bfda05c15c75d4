package flow

import (
	"sync"
	"time"

	"github.com/rootzsu/orderbot/internal/domain"
)

// Selection holds the in-progress order draft and transient operator input
// context. It is cleared on every return to the main menu.
//
// Service is a snapshot taken at selection time: the price quoted to the
// user is the price the order is created with, even if the catalog entry
// changes mid-conversation.
type Selection struct {
	Service *domain.Service
	Method  domain.PaymentMethod

	// RejectOrderID is the order awaiting a rejection reason.
	RejectOrderID int64
}

// Session is one user's conversation position.
type Session struct {
	UserID       int64
	State        State
	Selection    Selection
	CreatedAt    time.Time
	LastActivity time.Time
}

type sessionEntry struct {
	mu sync.Mutex
	s  Session
}

// Store keeps sessions in memory keyed by user ID. Do serializes all work
// for one user: while fn runs, no other event for that user is processed.
// Different users proceed concurrently.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*sessionEntry
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		entries: make(map[int64]*sessionEntry),
		now:     time.Now,
	}
}

func (st *Store) entry(userID int64) *sessionEntry {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[userID]
	if !ok {
		now := st.now().UTC()
		e = &sessionEntry{s: Session{
			UserID:       userID,
			State:        StateMainMenu,
			CreatedAt:    now,
			LastActivity: now,
		}}
		st.entries[userID] = e
	}
	return e
}

// Do runs fn with exclusive access to the user's session. A session is
// created in the main menu state on first touch.
func (st *Store) Do(userID int64, fn func(s *Session) error) error {
	e := st.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.s.LastActivity = st.now().UTC()
	return fn(&e.s)
}

// StateOf reports the user's current state without holding the entry lock
// longer than the read.
func (st *Store) StateOf(userID int64) State {
	e := st.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.State
}

// reset returns the session to the main menu and drops the draft.
func (s *Session) reset() {
	s.State = StateMainMenu
	s.Selection = Selection{}
}
