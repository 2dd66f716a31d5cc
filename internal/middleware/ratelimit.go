package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// LoginRateLimiter counts failed sign-in attempts per client IP in a sliding window
type LoginRateLimiter struct {
	attempts    map[string][]time.Time
	mutex       sync.Mutex
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// NewLoginRateLimiter creates a new login rate limiter
func NewLoginRateLimiter(maxAttempts int, window time.Duration) *LoginRateLimiter {
	return &LoginRateLimiter{
		attempts:    make(map[string][]time.Time),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// prune drops attempts older than the window. Caller holds the mutex.
func (rl *LoginRateLimiter) prune(ip string, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)

	var valid []time.Time
	for _, attempt := range rl.attempts[ip] {
		if attempt.After(cutoff) {
			valid = append(valid, attempt)
		}
	}

	if len(valid) == 0 {
		delete(rl.attempts, ip)
	} else {
		rl.attempts[ip] = valid
	}
	return valid
}

// IsAllowed checks if a login attempt from the given IP is allowed
func (rl *LoginRateLimiter) IsAllowed(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	return len(rl.prune(ip, rl.now())) < rl.maxAttempts
}

// RecordFailure records a failed login attempt for the given IP
func (rl *LoginRateLimiter) RecordFailure(ip string) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	rl.attempts[ip] = append(rl.prune(ip, now), now)
}

// Reset forgets the failures of ip after a successful sign-in
func (rl *LoginRateLimiter) Reset(ip string) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	delete(rl.attempts, ip)
}

// RetryAfter returns the time until the next login attempt is allowed
func (rl *LoginRateLimiter) RetryAfter(ip string) time.Duration {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	attempts := rl.prune(ip, now)
	if len(attempts) < rl.maxAttempts {
		return 0
	}
	// The oldest attempt in the window expires first
	return attempts[len(attempts)-rl.maxAttempts].Add(rl.window).Sub(now)
}

// LoginRateLimit blocks sign-in from IPs with too many recent failures. A 401
// from the wrapped handler counts as a failure and a 2xx resets the counter.
func LoginRateLimit(rateLimiter *LoginRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)
			if !rateLimiter.IsAllowed(ip) {
				wait := rateLimiter.RetryAfter(ip)
				w.Header().Set("Retry-After", strconv.Itoa(int(wait.Round(time.Second).Seconds())))
				writeJSONError(w, http.StatusTooManyRequests, "too many sign-in attempts, please try again later")
				return
			}

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			switch {
			case wrapped.statusCode == http.StatusUnauthorized:
				rateLimiter.RecordFailure(ip)
			case wrapped.statusCode < 300:
				rateLimiter.Reset(ip)
			}
		})
	}
}
