package ratelimit

import (
	"strings"
	"sync"
	"time"

	"github.com/solver492/manu-pro/internal/clock"
)

// Config controls the login limiter. MaxFailures <= 0 disables it.
type Config struct {
	MaxFailures int
	Lockout     time.Duration
}

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	ShouldBlock   bool
	RemainingTime time.Duration
	Reason        string
}

type failures struct {
	count       int
	first       time.Time
	lockedUntil time.Time
}

// LoginLimiter locks an account key out after too many failed logins.
// Failures older than the lockout period are forgotten.
type LoginLimiter struct {
	mu      sync.Mutex
	clock   clock.Clock
	cfg     Config
	entries map[string]*failures
}

// NewLoginLimiter creates a limiter reading time from c
func NewLoginLimiter(c clock.Clock, cfg Config) *LoginLimiter {
	return &LoginLimiter{
		clock:   c,
		cfg:     cfg,
		entries: make(map[string]*failures),
	}
}

// Enabled reports whether the limiter ever blocks
func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.cfg.MaxFailures > 0
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Check reports whether a login attempt for key must be refused
func (l *LoginLimiter) Check(key string) RateLimitResult {
	if !l.Enabled() {
		return RateLimitResult{Reason: "rate_limiting_disabled"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	key = normalizeKey(key)
	entry := l.current(key, now)
	if entry == nil {
		return RateLimitResult{Reason: "no_previous_failure"}
	}
	if now.Before(entry.lockedUntil) {
		return RateLimitResult{
			ShouldBlock:   true,
			RemainingTime: entry.lockedUntil.Sub(now),
			Reason:        "rate_limit_active",
		}
	}
	return RateLimitResult{Reason: "rate_limit_passed"}
}

// RecordFailure counts a failed attempt and returns the resulting state
func (l *LoginLimiter) RecordFailure(key string) RateLimitResult {
	if !l.Enabled() {
		return RateLimitResult{Reason: "rate_limiting_disabled"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	key = normalizeKey(key)
	l.prune(now)

	entry := l.current(key, now)
	if entry == nil {
		entry = &failures{first: now}
		l.entries[key] = entry
	}
	entry.count++

	if entry.count >= l.cfg.MaxFailures {
		entry.lockedUntil = now.Add(l.cfg.Lockout)
		return RateLimitResult{
			ShouldBlock:   true,
			RemainingTime: l.cfg.Lockout,
			Reason:        "rate_limit_active",
		}
	}
	return RateLimitResult{Reason: "failure_recorded"}
}

// Reset forgets the failures of key, typically after a successful login
func (l *LoginLimiter) Reset(key string) {
	if !l.Enabled() {
		return
	}
	l.mu.Lock()
	delete(l.entries, normalizeKey(key))
	l.mu.Unlock()
}

// current returns the live entry for key, dropping it once expired.
// Callers hold mu.
func (l *LoginLimiter) current(key string, now time.Time) *failures {
	entry, ok := l.entries[key]
	if !ok {
		return nil
	}
	if l.expired(entry, now) {
		delete(l.entries, key)
		return nil
	}
	return entry
}

func (l *LoginLimiter) expired(entry *failures, now time.Time) bool {
	if now.Before(entry.lockedUntil) {
		return false
	}
	if !entry.lockedUntil.IsZero() {
		return true
	}
	return now.Sub(entry.first) >= l.cfg.Lockout
}

// prune drops every expired entry. Callers hold mu.
func (l *LoginLimiter) prune(now time.Time) {
	for key, entry := range l.entries {
		if l.expired(entry, now) {
			delete(l.entries, key)
		}
	}
}
