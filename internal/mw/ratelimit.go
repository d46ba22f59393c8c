package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiter tracks one rate limiter per client IP. Entries idle for
// longer than staleAfter are dropped so the map does not grow with every
// address ever seen.
type clientLimiter struct {
	mu         sync.Mutex
	clients    map[string]*clientEntry
	limit      rate.Limit
	burst      int
	staleAfter time.Duration
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	cl := &clientLimiter{
		clients:    make(map[string]*clientEntry),
		limit:      limit,
		burst:      burst,
		staleAfter: 10 * time.Minute,
	}
	go cl.pruneLoop()
	return cl
}

func (cl *clientLimiter) get(ip string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	entry, ok := cl.clients[ip]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.clients[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (cl *clientLimiter) pruneLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-cl.staleAfter)
		cl.mu.Lock()
		for ip, entry := range cl.clients {
			if entry.lastSeen.Before(cutoff) {
				delete(cl.clients, ip)
			}
		}
		cl.mu.Unlock()
	}
}

// RateLimiter rejects requests from clients that exceed the given rate.
func RateLimiter(limit rate.Limit, burst int) gin.HandlerFunc {
	cl := newClientLimiter(limit, burst)
	return func(c *gin.Context) {
		if !cl.get(c.ClientIP()).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
