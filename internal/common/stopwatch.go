package common

import (
	"time"
)

// This stopwatch keeps track of time. You can set a timeout for it,
// make it start counting time, and ask it if the timeout has been reached
type Stopwatch struct {
	Timeout   time.Duration
	startTime time.Time
	Running   bool
	clock     Clock
}

func NewStopwatch(timeout time.Duration, clock Clock) Stopwatch {
	return Stopwatch{Timeout: timeout, clock: clock}
}

func (s *Stopwatch) Start() {
	s.Running = true
	s.startTime = s.clock.Now()
}

func (s *Stopwatch) Stop() {
	s.Running = false
}

// Report if the timeout has been reached, together with the time
// left until it is. A stopwatch that is not running is always stopped
func (s *Stopwatch) Stopped() (bool, time.Duration) {
	if !s.Running {
		return true, 0
	}
	left := s.startTime.Add(s.Timeout).Sub(s.clock.Now())
	if left <= 0 {
		s.Running = false
		return true, 0
	}
	return false, left
}
