package signal

import (
	"sync"
	"time"

	"github.com/dkeye/Tracklist/internal/domain"
	"golang.org/x/time/rate"
)

const (
	cleanupThreshold = 1024
	maxIdleAge       = 10 * time.Minute
)

type voterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// VoterRateLimiter keeps one token bucket per voter identity and prunes
// idle buckets inline.
type VoterRateLimiter struct {
	mu     sync.Mutex
	voters map[domain.VoterID]*voterEntry
	r      rate.Limit
	b      int
}

func NewVoterRateLimiter(r rate.Limit, b int) *VoterRateLimiter {
	return &VoterRateLimiter{
		voters: make(map[domain.VoterID]*voterEntry),
		r:      r,
		b:      b,
	}
}

func (l *VoterRateLimiter) GetLimiter(voter domain.VoterID) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if len(l.voters) > cleanupThreshold {
		cutoff := now.Add(-maxIdleAge)
		for k, e := range l.voters {
			if e.lastSeen.Before(cutoff) {
				delete(l.voters, k)
			}
		}
	}

	e, ok := l.voters[voter]
	if !ok {
		e = &voterEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.voters[voter] = e
	}
	e.lastSeen = now
	return e.limiter
}

func (l *VoterRateLimiter) Allow(voter domain.VoterID) bool {
	return l.GetLimiter(voter).Allow()
}
