// Package auth provides the login-flow primitives: one-time OAuth state
// tokens, session tokens, and password hashing.
package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

const (
	// stateLength is the length of an issued state token.
	stateLength = 32
	// stateAlphabet is the alphabet state tokens are drawn from.
	stateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// DefaultStateTTL is how long an unconsumed state token stays valid.
	DefaultStateTTL = 10 * time.Minute
)

// StateStore issues and redeems one-time anti-forgery tokens for the
// OAuth redirect cycle. Tokens are single-use: the first Consume wins and
// every later call reports false, same as for a token that was never
// issued. Entries older than the TTL are pruned on every access, so
// memory is bounded by one TTL window of issuance. The store is
// process-local; losing it on restart only drops in-flight logins.
type StateStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewStateStore creates a StateStore with the given TTL.
// A non-positive TTL falls back to DefaultStateTTL.
func NewStateStore(ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateStore{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// NewStateStoreWithClock creates a StateStore with an injected clock.
// Used by tests to make expiry deterministic.
func NewStateStoreWithClock(ttl time.Duration, now func() time.Time) *StateStore {
	s := NewStateStore(ttl)
	s.now = now
	return s
}

// Issue generates a fresh state token, records it, and returns it.
func (s *StateStore) Issue() (string, error) {
	state, err := randomState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	s.Store(state)
	return state, nil
}

// Store records a caller-supplied state token.
func (s *StateStore) Store(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.entries[state] = s.now()
}

// Consume atomically removes state and reports whether it was present
// and unexpired. Unknown, already-consumed, and expired tokens are
// indistinguishable: all return false.
func (s *StateStore) Consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	_, ok := s.entries[state]
	if ok {
		delete(s.entries, state)
	}
	return ok
}

// Len returns the number of live entries. Intended for tests and metrics.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	return len(s.entries)
}

// prune drops entries older than the TTL. Callers must hold s.mu.
func (s *StateStore) prune() {
	cutoff := s.now().Add(-s.ttl)
	for state, issued := range s.entries {
		if issued.Before(cutoff) {
			delete(s.entries, state)
		}
	}
}

// randomState returns a random alphanumeric token of stateLength chars.
func randomState() (string, error) {
	b := make([]byte, stateLength)
	max := big.NewInt(int64(len(stateAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = stateAlphabet[n.Int64()]
	}
	return string(b), nil
}
