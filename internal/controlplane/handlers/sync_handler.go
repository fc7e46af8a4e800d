package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	daemon *Daemon
}

func NewSyncHandler(d *Daemon) *SyncHandler {
	return &SyncHandler{daemon: d}
}

// Status returns the daemon-level sync counters and pending work.
func (h *SyncHandler) Status(c *gin.Context) {
	engine := h.daemon.Engine
	if engine == nil {
		AbortWithError(c, http.StatusServiceUnavailable, ErrCodeSyncNotReady, errors.New("sync engine not running"))
		return
	}

	dirty := engine.Dirty()
	c.JSON(http.StatusOK, SyncStatusResponse{
		Dirty:        dirty.Dirty(),
		PendingCount: dirty.PendingCount(),
		PendingPaths: dirty.PendingPaths(),
		NextPullAt:   engine.Schedule().NextAt().UTC(),
		Stats:        engine.Stats().Snapshot(),
	})
}

// Now expires the pull schedule and marks the tree dirty so the loops
// pick up a full cycle on their next tick.
func (h *SyncHandler) Now(c *gin.Context) {
	engine := h.daemon.Engine
	if engine == nil {
		AbortWithError(c, http.StatusServiceUnavailable, ErrCodeSyncNotReady, errors.New("sync engine not running"))
		return
	}

	engine.SyncNow()
	c.JSON(http.StatusAccepted, gin.H{"status": "sync scheduled"})
}
