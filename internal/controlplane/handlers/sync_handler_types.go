package handlers

import (
	"time"

	"github.com/prashanthellina/pullbox/internal/sync"
)

// SyncStatusResponse reports the daemon-level sync state.
type SyncStatusResponse struct {
	Dirty        bool               `json:"dirty"`
	PendingCount int                `json:"pendingCount"`
	PendingPaths []string           `json:"pendingPaths"`
	NextPullAt   time.Time          `json:"nextPullAt"`
	Stats        sync.StatsSnapshot `json:"stats"`
}
