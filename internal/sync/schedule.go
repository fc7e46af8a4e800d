package sync

import (
	"sync/atomic"
	"time"
)

// PullSchedule is the shared deadline that gates how often the pull
// engine contacts the server. The zero value is due immediately, so a
// fresh daemon always performs its first pull.
type PullSchedule struct {
	nextAt atomic.Int64 // unix nanoseconds
}

// Due reports whether a pull may run at the given instant.
func (s *PullSchedule) Due(now time.Time) bool {
	return now.UnixNano() >= s.nextAt.Load()
}

// ExpireNow makes the next pull due immediately. Called when the server
// reports a remote change.
func (s *PullSchedule) ExpireNow() {
	s.nextAt.Store(time.Now().UnixNano())
}

// Extend moves the deadline one poll interval out. Called after every
// successful pull.
func (s *PullSchedule) Extend(now time.Time, interval time.Duration) {
	s.nextAt.Store(now.Add(interval).UnixNano())
}

// NextAt is the instant the next pull becomes due.
func (s *PullSchedule) NextAt() time.Time {
	return time.Unix(0, s.nextAt.Load())
}
