package auth

import (
	"sync"

	"github.com/barkshad/Real-estate/internal/models"
)

// SessionEvent is emitted on every sign-in or sign-out. Actor is nil when
// nobody is signed in.
type SessionEvent struct {
	Actor *models.User
}

// Session tracks the actor of one client connection
type Session struct {
	policy RolePolicy

	mu      sync.Mutex
	actor   *models.User
	closed  bool
	changes chan SessionEvent
}

func NewSession(policy RolePolicy) *Session {
	return &Session{
		policy:  policy,
		changes: make(chan SessionEvent, 1),
	}
}

// SignedIn replaces the actor with the one derived from identity
func (s *Session) SignedIn(identity models.Identity) *models.User {
	actor := ActorFor(s.policy, identity)
	s.set(actor)
	return actor
}

// SignedOut clears the actor
func (s *Session) SignedOut() {
	s.set(nil)
}

func (s *Session) set(actor *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.actor = actor

	ev := SessionEvent{Actor: actor}
	select {
	case s.changes <- ev:
	default:
		select {
		case <-s.changes:
		default:
		}
		s.changes <- ev
	}
}

// Actor returns the current actor, or nil
func (s *Session) Actor() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.actor == nil {
		return nil
	}
	actor := *s.actor
	return &actor
}

// Changes delivers the latest session event
func (s *Session) Changes() <-chan SessionEvent {
	return s.changes
}

// Close stops event delivery. The actor is kept for inspection.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
