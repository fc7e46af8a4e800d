package sync

import (
	"sync"
	"time"
)

// Stats tracks daemon-level sync counters for the control-plane API.
type Stats struct {
	mu sync.RWMutex

	pulls        uint64
	pushes       uint64
	remoteEvents uint64
	failures     uint64

	lastPullAt        time.Time
	lastPushAt        time.Time
	lastRemoteEventAt time.Time

	lastError   string
	lastErrorAt time.Time
}

// StatsSnapshot is a point-in-time copy safe to hand to the API layer.
type StatsSnapshot struct {
	Pulls             uint64    `json:"pulls"`
	Pushes            uint64    `json:"pushes"`
	RemoteEvents      uint64    `json:"remote_events"`
	Failures          uint64    `json:"failures"`
	LastPullAt        time.Time `json:"last_pull_at"`
	LastPushAt        time.Time `json:"last_push_at"`
	LastRemoteEventAt time.Time `json:"last_remote_event_at"`
	LastError         string    `json:"last_error,omitempty"`
	LastErrorAt       time.Time `json:"last_error_at"`
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) RecordPull() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pulls++
	s.lastPullAt = time.Now()
}

func (s *Stats) RecordPush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushes++
	s.lastPushAt = time.Now()
}

func (s *Stats) RecordRemoteEvent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remoteEvents++
	s.lastRemoteEventAt = time.Now()
}

func (s *Stats) RecordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
	s.lastError = err.Error()
	s.lastErrorAt = time.Now()
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StatsSnapshot{
		Pulls:             s.pulls,
		Pushes:            s.pushes,
		RemoteEvents:      s.remoteEvents,
		Failures:          s.failures,
		LastPullAt:        s.lastPullAt,
		LastPushAt:        s.lastPushAt,
		LastRemoteEventAt: s.lastRemoteEventAt,
		LastError:         s.lastError,
		LastErrorAt:       s.lastErrorAt,
	}
}
