package handlers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/prashanthellina/pullbox/internal/version"
)

// StatusHandler reports daemon identity, workspace and process health.
type StatusHandler struct {
	daemon *Daemon
}

func NewStatusHandler(d *Daemon) *StatusHandler {
	return &StatusHandler{
		daemon: d,
	}
}

func (h *StatusHandler) Status(c *gin.Context) {
	// this is unlikely to happen, but just in case
	if h.daemon == nil || h.daemon.Workspace == nil {
		AbortWithError(c, http.StatusServiceUnavailable, ErrCodeUnknownError, errors.New("daemon not initialized"))
		return
	}

	ws := h.daemon.Workspace
	c.PureJSON(http.StatusOK, &StatusResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   version.Version,
		Revision:  version.Revision,
		BuildDate: version.BuildDate,
		Daemon: &DaemonStatus{
			ID:        h.daemon.ID,
			StartedAt: humanize.Time(h.daemon.StartedAt),
			Uptime:    time.Since(h.daemon.StartedAt).Round(time.Second).String(),
		},
		Workspace: &WorkspaceStatus{
			Root:      ws.Root,
			Server:    ws.Server,
			RepoName:  ws.RepoName,
			RemoteURL: ws.RemoteURL(),
		},
		Process: selfProcessStatus(),
	})
}

// selfProcessStatus reads usage for the daemon's own pid. Metrics that
// fail to read are left at their zero value.
func selfProcessStatus() *ProcessStatus {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil
	}

	stat := &ProcessStatus{PID: proc.Pid}
	if cpuPercent, err := proc.CPUPercent(); err == nil {
		stat.CPUPercent = cpuPercent
	}
	if memPercent, err := proc.MemoryPercent(); err == nil {
		stat.MemoryPercent = memPercent
	}
	if memInfo, err := proc.MemoryInfo(); err == nil && memInfo != nil {
		stat.MemoryRSS = humanize.Bytes(memInfo.RSS)
	}
	if threads, err := proc.NumThreads(); err == nil {
		stat.NumThreads = threads
	}
	return stat
}
