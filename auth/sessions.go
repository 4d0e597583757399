package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Session is a bearer credential minted after a successful PIN check.
type Session struct {
	Created time.Time
	Addr    string
}

// Sessions holds all live bearer tokens. Entries older than the TTL are
// treated as absent; they are dropped lazily on lookup and by the sweep.
type Sessions struct {
	mu     sync.Mutex
	ttl    time.Duration
	tokens map[string]Session

	now func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:    ttl,
		tokens: map[string]Session{},
		now:    time.Now,
	}
}

// Create mints a new unguessable token for addr.
func (s *Sessions) Create(addr string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = Session{Created: s.now(), Addr: addr}
	s.mu.Unlock()
	sessionsCreatedTotal.Inc()
	return token
}

// Validate reports whether token names a live session.
func (s *Sessions) Validate(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.tokens[token]
	if !ok {
		return false
	}
	if s.now().Sub(session.Created) > s.ttl {
		delete(s.tokens, token)
		return false
	}
	return true
}

// Remove deletes token. Idempotent; reports whether it existed.
func (s *Sessions) Remove(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[token]
	delete(s.tokens, token)
	return ok
}

func (s *Sessions) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// StartSweep removes expired sessions on a fixed interval until ctx is done.
func (s *Sessions) StartSweep(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.expire(); removed > 0 {
					log.Debug().Int("removed", removed).Msg("Session sweep")
				}
			}
		}
	}()
}

func (s *Sessions) expire() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for token, session := range s.tokens {
		if now.Sub(session.Created) > s.ttl {
			delete(s.tokens, token)
			removed++
		}
	}
	return removed
}
