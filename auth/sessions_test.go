package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionLifecycle(t *testing.T) {
	sessions := NewSessions(24 * time.Hour)

	token := sessions.Create("192.168.1.10")
	assert.NotEmpty(t, token)
	assert.True(t, sessions.Validate(token))

	assert.True(t, sessions.Remove(token))
	assert.False(t, sessions.Validate(token))
	// idempotent
	assert.False(t, sessions.Remove(token))
}

func TestSessionUnknownToken(t *testing.T) {
	sessions := NewSessions(24 * time.Hour)
	assert.False(t, sessions.Validate("nope"))
}

func TestSessionExpiresLazily(t *testing.T) {
	sessions := NewSessions(24 * time.Hour)
	now := time.Now()
	sessions.now = func() time.Time { return now }

	token := sessions.Create("192.168.1.10")
	assert.True(t, sessions.Validate(token))

	now = now.Add(24*time.Hour + time.Minute)
	assert.False(t, sessions.Validate(token))
	// the lookup already deleted it
	assert.Equal(t, 0, sessions.Count())
}

func TestSessionSweep(t *testing.T) {
	sessions := NewSessions(24 * time.Hour)
	now := time.Now()
	sessions.now = func() time.Time { return now }

	sessions.Create("192.168.1.10")
	sessions.Create("192.168.1.11")
	now = now.Add(25 * time.Hour)
	fresh := sessions.Create("192.168.1.12")

	assert.Equal(t, 2, sessions.expire())
	assert.Equal(t, 1, sessions.Count())
	assert.True(t, sessions.Validate(fresh))
}

func TestSessionTokensAreUnique(t *testing.T) {
	sessions := NewSessions(time.Hour)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token := sessions.Create("addr")
		assert.False(t, seen[token])
		seen[token] = true
	}
}
