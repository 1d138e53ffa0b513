package common

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Analysis struct {
	allowed bool          // If the request is allowed
	wait    time.Duration // The minimal time to wait before the request is allowed
}

type RateLimiter struct {
	mu                   sync.Mutex
	restrictions         []Restriction          // Restrictions to consider
	history              []time.Time            // History of requests
	duration             time.Duration          // Min duration to wait for all restrictions to be lifted
	pendingVitalRequests map[uuid.UUID]struct{} // Set of pending vital requests
	backoff              Stopwatch              // Started when the server tells us we went too fast
	clock                Clock
	logger               zerolog.Logger
}

func NewRateLimiter(restrictions []Restriction, backoff time.Duration, clock Clock, logger zerolog.Logger) *RateLimiter {
	rl := &RateLimiter{
		restrictions:         append([]Restriction(nil), restrictions...),
		pendingVitalRequests: map[uuid.UUID]struct{}{},
		backoff:              NewStopwatch(backoff, clock),
		clock:                clock,
		logger:               logger,
	}
	// Duration
	for _, restriction := range restrictions {
		if restriction.Duration > rl.duration {
			rl.duration = restriction.Duration
		}
	}
	return rl
}

// Decide if a request is allowed.
// If the request is not allowed but vital, execution
// will block here until it is allowed or the context is done
func (rl *RateLimiter) Allowed(ctx context.Context, vital bool) bool {

	// Give this request a unique identifier
	thisuuid := uuid.New()
	for {
		rl.mu.Lock()
		now := rl.clock.Now()
		// Trim history first
		rl.trim(now)
		// Check if the restrictions allow this request
		analysis := rl.analyse(now)
		if analysis.allowed {
			if vital || len(rl.pendingVitalRequests) == 0 {
				delete(rl.pendingVitalRequests, thisuuid)
				// Include this request in the history as it is allowed
				rl.history = append(rl.history, now)
				rl.mu.Unlock()
				return true
			}
			// Request is not vital and the queue is not empty,
			// so we have to reject the request
			rl.mu.Unlock()
			rl.logger.Warn().Msg("Rejecting non vital request because restrictions allow it but vital queue is not empty")
			return false
		}
		if !vital {
			rl.mu.Unlock()
			rl.logger.Warn().Msg("Rejecting a non vital request because restrictions do not allow it")
			return false
		}

		// Request is vital and not allowed, so it goes to the queue
		// and sleeps for some time
		rl.pendingVitalRequests[thisuuid] = struct{}{}
		rl.mu.Unlock()
		rl.logger.Warn().Str("request", thisuuid.String()).Dur("wait", analysis.wait).Msg("Vital request delayed")
		select {
		case <-ctx.Done():
			rl.mu.Lock()
			delete(rl.pendingVitalRequests, thisuuid)
			rl.mu.Unlock()
			return false
		case <-rl.clock.After(analysis.wait):
		}
	}
}

func (rl *RateLimiter) ReceivedRateLimit() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.backoff.Start()
}

// Trim the current history, leaving only the requests
// that are young enough to be affected by at least one restriction
func (rl *RateLimiter) trim(currentTime time.Time) {
	// Find the index from which we need to keep the history.
	// Start searching at the end of the slice.
	// Times are stored in chronological order
	index := 0
	for i := len(rl.history) - 1; i >= 0; i-- {
		if currentTime.Sub(rl.history[i]) >= rl.duration {
			index = i + 1
			break
		}
	}
	rl.history = rl.history[index:]
}

func (rl *RateLimiter) analyse(currentTime time.Time) Analysis {

	// A rate limit answer blocks everything until the backoff ends
	if stopped, left := rl.backoff.Stopped(); !stopped {
		return Analysis{false, left}
	}

	// Merge the analyses of each restriction
	var wait time.Duration = 0
	allowed := true
	for _, restriction := range rl.restrictions {
		analysis := restriction.Analyse(rl.history, currentTime)
		allowed = allowed && analysis.allowed
		if analysis.wait > wait {
			wait = analysis.wait
		}
	}
	return Analysis{allowed, wait}
}
