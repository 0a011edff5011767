package agent

import (
	"sync"

	"github.com/google/uuid"

	"niva/internal/catalog"
	"niva/internal/logging"
)

// historyBound caps the rolling message history at five exchanges.
const historyBound = 10

// Message is one history entry. Role is "user" or "assistant".
type Message struct {
	Role string
	Text string
}

// Session is the per-conversation mutable state: accumulated slots, the
// rolling message history, and the active language. One Session per
// conversation; sharing a Session across conversations interleaves slot and
// history state across users.
type Session struct {
	mu       sync.Mutex
	id       string
	slots    Slots
	history  []Message
	language catalog.Language
}

// NewSession creates an empty session defaulting to Telugu.
func NewSession() *Session {
	s := &Session{
		id:       uuid.NewString(),
		language: catalog.LanguageTelugu,
	}
	logging.Session("Created session %s", s.id)
	return s
}

// ID returns the session's stable identifier.
func (s *Session) ID() string {
	return s.id
}

// Slots returns a copy of the accumulated slot set.
func (s *Session) Slots() Slots {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots
}

// MergeSlots lays a turn's extraction over the accumulated slots and
// returns the merged result.
func (s *Session) MergeSlots(extracted Slots) Slots {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots.Merge(extracted)
	return s.slots
}

// Language returns the active language.
func (s *Session) Language() catalog.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SetLanguage records the language detected for the current turn.
func (s *Session) SetLanguage(lang catalog.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
}

// History returns a copy of the rolling message history, oldest first.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

// AppendExchange records one user/assistant exchange, truncating from the
// oldest end once the history exceeds its bound.
func (s *Session) AppendExchange(userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		Message{Role: "user", Text: userText},
		Message{Role: "assistant", Text: assistantText},
	)
	if len(s.history) > historyBound {
		s.history = s.history[len(s.history)-historyBound:]
	}
}

// Clear empties both history and slots. Language is kept.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = Slots{}
	s.history = nil
	logging.Session("Cleared session %s", s.id)
}

// Manager hands out one Session per conversation id.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the session for the given conversation id, creating it on
// first use. An empty id gets a fresh session with a generated id.
func (m *Manager) Get(conversationID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conversationID == "" {
		s := NewSession()
		m.sessions[s.id] = s
		return s
	}
	if s, ok := m.sessions[conversationID]; ok {
		return s
	}
	s := NewSession()
	s.id = conversationID
	m.sessions[conversationID] = s
	return s
}

// Remove drops a session, releasing its state.
func (m *Manager) Remove(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, conversationID)
}
