package handlers

// StatusResponse describes the running daemon to control plane clients.
type StatusResponse struct {
	Status    string           `json:"status"`    // health status ("ok").
	Timestamp string           `json:"ts"`        // timestamp when the status was read.
	Version   string           `json:"version"`   // version of the daemon.
	Revision  string           `json:"revision"`  // revision of the daemon.
	BuildDate string           `json:"buildDate"` // build date of the daemon.
	Daemon    *DaemonStatus    `json:"daemon"`
	Workspace *WorkspaceStatus `json:"workspace"`
	Process   *ProcessStatus   `json:"process,omitempty"`
}

// DaemonStatus identifies this daemon instance.
type DaemonStatus struct {
	ID        string `json:"id"`
	StartedAt string `json:"startedAt"` // humanized, e.g. "3 minutes ago".
	Uptime    string `json:"uptime"`
}

// WorkspaceStatus describes the synced directory.
type WorkspaceStatus struct {
	Root      string `json:"root"`
	Server    string `json:"server"`
	RepoName  string `json:"repoName"`
	RemoteURL string `json:"remoteUrl"`
}

// ProcessStatus reports the daemon's own process usage.
type ProcessStatus struct {
	PID           int32   `json:"pid"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float32 `json:"memoryPercent"`
	MemoryRSS     string  `json:"memoryRss"`
	NumThreads    int32   `json:"numThreads"`
}
