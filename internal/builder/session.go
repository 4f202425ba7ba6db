// Package builder is the visual-builder backend: per-session
// configurations resolved adaptively after every edit, with a
// speculative option matrix so the UI can grey out incompatible choices
// before they are clicked.
package builder

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkstack/mkstack/internal/stack"
)

// TokenGenerator produces session tokens. UUIDv7Generator is the
// production implementation; tests use a fixed generator for stable
// response bodies.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator issues time-sortable UUIDv7 session tokens.
type UUIDv7Generator struct{}

func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Session is one builder tab's live configuration. Exactly one
// configuration is live per session; edits replace it wholesale after
// resolution, which is what makes undo "re-submit a previous state".
type Session struct {
	ID        string
	Config    stack.Config
	UpdatedAt time.Time
}

// sessionStore is an in-memory session map. The builder dispatches one UI
// event at a time per session, but distinct tabs hit the server
// concurrently, so access is guarded.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*Session)}
}

func (s *sessionStore) put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *sessionStore) get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}
