package state

import (
	"fmt"
	"strings"
	"sync"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

// SessionStore is the in-memory session collection. Sessions are
// ephemeral and non-durable: removed on cancel or by caller-controlled
// expiry, never by a built-in TTL.
//
// Concurrency contract: creation, lookup and deletion are safe across
// sessions; Acquire serializes turns for a single session so that only
// one step handler at a time mutates its collected fields.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session *ReservationSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
	}
}

func (s *SessionStore) Create(sess *ReservationSession) error {
	if sess == nil {
		return fmt.Errorf("%w: session is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(sess.ID) == "" {
		return fmt.Errorf("%w: session id is empty", contractx.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; ok {
		return fmt.Errorf("%w: duplicate session id %s", contractx.ErrValidation, sess.ID)
	}
	s.sessions[sess.ID] = &sessionEntry{session: sess}
	return nil
}

func (s *SessionStore) Get(sessionID string) (*ReservationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrSessionNotFound, sessionID)
	}
	return entry.session, nil
}

func (s *SessionStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("%w: %s", contractx.ErrSessionNotFound, sessionID)
	}
	delete(s.sessions, sessionID)
	return nil
}

// Acquire takes the per-session turn lock and returns the release
// function. The caller holds the lock for the whole step handling.
func (s *SessionStore) Acquire(sessionID string) (func(), error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrSessionNotFound, sessionID)
	}
	entry.mu.Lock()
	return entry.mu.Unlock, nil
}

// Snapshot returns a deep copy of the session, taken under its turn
// lock. Status readers use this instead of Get so they never observe a
// turn's half-applied mutations.
func (s *SessionStore) Snapshot(sessionID string) (ReservationSession, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return ReservationSession{}, fmt.Errorf("%w: %s", contractx.ErrSessionNotFound, sessionID)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Clone(), nil
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
