package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// PinLength is the number of digits in a generated PIN.
const PinLength = 6

var pinModulus = big.NewInt(1_000_000)

// VerifyResult is the structured outcome of a PIN check.
type VerifyResult struct {
	OK                bool
	Locked            bool
	RetryAfter        time.Duration
	RemainingAttempts int
}

type attemptState struct {
	failures    int
	lockedUntil time.Time
}

// Guard owns the PIN lifecycle and the per-address brute-force lockout.
// The PIN is regenerated once per process start and never persisted.
type Guard struct {
	mu          sync.Mutex
	pinHash     []byte
	attempts    map[string]*attemptState
	maxAttempts int
	lockout     time.Duration

	now func() time.Time
}

func NewGuard(maxAttempts int, lockout time.Duration) *Guard {
	return &Guard{
		attempts:    map[string]*attemptState{},
		maxAttempts: maxAttempts,
		lockout:     lockout,
		now:         time.Now,
	}
}

// GeneratePin replaces the current PIN with a fresh random 6-digit value
// and returns the plaintext. The previous PIN stops verifying immediately.
// The plaintext is only ever shown on the local console.
func (g *Guard) GeneratePin() (string, error) {
	n, err := rand.Int(rand.Reader, pinModulus)
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	pin := fmt.Sprintf("%0*d", PinLength, n)

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}

	g.mu.Lock()
	g.pinHash = hash
	g.mu.Unlock()
	return pin, nil
}

// VerifyPin checks candidate against the current PIN. A locked-out address
// fails without consuming an attempt; reaching the failure threshold locks
// the address for the configured duration.
func (g *Guard) VerifyPin(candidate, addr string) VerifyResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	state := g.attempts[addr]
	if state != nil && !state.lockedUntil.IsZero() {
		if now.Before(state.lockedUntil) {
			return VerifyResult{Locked: true, RetryAfter: state.lockedUntil.Sub(now)}
		}
		// lockout expired, start fresh
		delete(g.attempts, addr)
		state = nil
	}

	if g.pinHash != nil && bcrypt.CompareHashAndPassword(g.pinHash, []byte(candidate)) == nil {
		delete(g.attempts, addr)
		return VerifyResult{OK: true}
	}

	pinFailuresTotal.Inc()
	if state == nil {
		state = &attemptState{}
		g.attempts[addr] = state
	}
	state.failures++
	if state.failures >= g.maxAttempts {
		state.lockedUntil = now.Add(g.lockout)
		lockoutsTotal.Inc()
		return VerifyResult{Locked: true, RetryAfter: g.lockout}
	}
	return VerifyResult{RemainingAttempts: g.maxAttempts - state.failures}
}
