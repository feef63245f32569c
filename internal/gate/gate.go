// Package gate holds the admin console PIN prompt.
//
// PINGate is a local view-state gate, not access control. It hides the
// console until the right PIN is typed, for the gate instance it was typed
// into and nowhere else. It never issues a credential and server-side
// authorization never consults it; role checks go through auth.RolePolicy.
package gate

import (
	"crypto/subtle"
	"errors"
	"sync"
)

var ErrWrongPIN = errors.New("incorrect PIN")

// PINGate remembers whether the PIN has been entered
type PINGate struct {
	pin []byte

	mu       sync.Mutex
	verified bool
}

func NewPINGate(pin string) *PINGate {
	return &PINGate{pin: []byte(pin)}
}

// Verify unlocks the gate when pin matches. A wrong PIN leaves the current
// state unchanged.
func (g *PINGate) Verify(pin string) error {
	if len(g.pin) == 0 || subtle.ConstantTimeCompare([]byte(pin), g.pin) != 1 {
		return ErrWrongPIN
	}

	g.mu.Lock()
	g.verified = true
	g.mu.Unlock()
	return nil
}

// Verified reports whether the console may be shown
func (g *PINGate) Verified() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verified
}

// Lock hides the console again
func (g *PINGate) Lock() {
	g.mu.Lock()
	g.verified = false
	g.mu.Unlock()
}
