package auth

import (
	"sync"
	"time"
)

// RateLimiter throttles login attempts per client IP and login name within a
// fixed window. It complements the per-account lockout in Service, which an
// attacker could otherwise trigger for any known username from many addresses.
type RateLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*attemptWindow
	maxAttempts int
	window      time.Duration
	lockout     time.Duration
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

type attemptWindow struct {
	count       int
	start       time.Time
	lockedUntil time.Time
}

// RateLimitConfig configures a RateLimiter. Zero values fall back to 5 attempts per
// 15 minutes with a 30 minute lockout.
type RateLimitConfig struct {
	MaxAttempts     int
	Window          time.Duration
	Lockout         time.Duration
	CleanupInterval time.Duration
}

// NewRateLimiter starts a limiter and its cleanup loop. Call Stop to end the loop.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = 30 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		attempts:    make(map[string]*attemptWindow),
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.Window,
		lockout:     cfg.Lockout,
		now:         time.Now,
		stop:        make(chan struct{}),
	}
	go rl.cleanupLoop(cfg.CleanupInterval)
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow reports whether another attempt is permitted and, if not, how long to wait.
func (rl *RateLimiter) Allow(ip, login string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.attempts[ip+":"+login]
	if !ok {
		return true, 0
	}
	if now.Before(w.lockedUntil) {
		return false, w.lockedUntil.Sub(now)
	}
	if now.Sub(w.start) > rl.window || w.count < rl.maxAttempts {
		return true, 0
	}
	return false, rl.lockout
}

// RecordFailure counts a failed attempt and reports whether it triggered a lockout.
func (rl *RateLimiter) RecordFailure(ip, login string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	key := ip + ":" + login
	w, ok := rl.attempts[key]
	if !ok || now.Sub(w.start) > rl.window {
		w = &attemptWindow{start: now}
		rl.attempts[key] = w
	}

	w.count++
	if w.count >= rl.maxAttempts {
		w.lockedUntil = now.Add(rl.lockout)
		return true
	}
	return false
}

// RecordSuccess forgets previous failures.
func (rl *RateLimiter) RecordSuccess(ip, login string) {
	rl.mu.Lock()
	delete(rl.attempts, ip+":"+login)
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, w := range rl.attempts {
		if now.Sub(w.start) > rl.window && !now.Before(w.lockedUntil) {
			delete(rl.attempts, key)
		}
	}
}
