// Package session holds transient session-scoped state. Values live only
// for the current process; a full restart starts clean.
package session

import (
	"strings"
	"sync"
)

// Store is a small keyed slot map used to hand values between request
// handlers within one session, such as the last-placed order identifier.
type Store struct {
	mu    sync.RWMutex
	slots map[string]string
}

// LastOrderKey names the slot carrying the most recent order identifier
// for the confirmation view.
const LastOrderKey = "lastOrderId"

// NewStore constructs an empty session store.
func NewStore() *Store {
	return &Store{slots: make(map[string]string)}
}

// Set stores value under key, replacing any previous value. Empty keys are
// ignored.
func (s *Store) Set(key, value string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = value
}

// Get returns the stored value and whether the slot is populated.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.slots[strings.TrimSpace(key)]
	return value, ok
}

// Delete clears the slot.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, strings.TrimSpace(key))
}
