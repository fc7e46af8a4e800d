package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prashanthellina/pullbox/internal/sync"
	"github.com/prashanthellina/pullbox/internal/workspace"
)

const (
	ErrCodeUnknownError string = "ERR_UNKNOWN_ERROR"
	ErrCodeSyncNotReady string = "ERR_SYNC_NOT_READY"
)

// Daemon exposes the running daemon instance to the HTTP handlers.
type Daemon struct {
	ID        string
	StartedAt time.Time
	Workspace *workspace.Workspace
	Engine    *sync.Engine
}

type ControlPlaneError struct {
	ErrorCode string `json:"code"`
	Error     string `json:"error"`
}

func AbortWithError(c *gin.Context, status int, code string, err error) {
	c.Abort()
	c.Error(err)
	c.PureJSON(status, ControlPlaneError{
		ErrorCode: code,
		Error:     err.Error(),
	})
}
