package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientIdleTTL is how long a client's bucket is kept after its last request.
const clientIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a global and a per-client token bucket. A limit of 0
// requests/minute disables that level. Buckets of clients idle for longer
// than clientIdleTTL are dropped.
type RateLimiter struct {
	mu        sync.Mutex
	global    *rate.Limiter
	clients   map[string]*clientLimiter
	perClient rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter from requests/minute figures.
func NewRateLimiter(globalRPM, perClientRPM int) *RateLimiter {
	return &RateLimiter{
		global:    rate.NewLimiter(perMinute(globalRPM), burstFor(globalRPM)),
		clients:   make(map[string]*clientLimiter),
		perClient: perMinute(perClientRPM),
		burst:     burstFor(perClientRPM),
		now:       time.Now,
	}
}

// Allow reports whether a request from client may proceed.
func (rl *RateLimiter) Allow(client string) bool {
	now := rl.now()
	if !rl.global.AllowN(now, 1) {
		return false
	}
	if rl.perClient == rate.Inf {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.sweep(now)
	c, ok := rl.clients[client]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.perClient, rl.burst)}
		rl.clients[client] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// sweep drops idle client buckets, at most once per clientIdleTTL. The
// caller holds rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < clientIdleTTL {
		return
	}
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) >= clientIdleTTL {
			delete(rl.clients, key)
		}
	}
	rl.lastSweep = now
}

func perMinute(rpm int) rate.Limit {
	if rpm <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(rpm) / 60.0)
}

func burstFor(rpm int) int {
	if rpm < 1 {
		return 1
	}
	return rpm
}
