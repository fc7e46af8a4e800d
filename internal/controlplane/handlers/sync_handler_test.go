package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	d := newTestDaemon(t)
	d.Engine.MarkDirty("a.txt")
	d.Engine.Stats().RecordPull()
	handler := NewSyncHandler(d)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/sync/status", nil)

	handler.Status(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp SyncStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Dirty)
	assert.Contains(t, resp.PendingPaths, "a.txt")
	assert.Equal(t, uint64(1), resp.Stats.Pulls)
}

func TestSyncHandlerNow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	d := newTestDaemon(t)
	d.Engine.Dirty().Clear()
	d.Engine.Schedule().Extend(time.Now(), time.Hour)
	handler := NewSyncHandler(d)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/sync/now", nil)

	handler.Now(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, d.Engine.Dirty().Dirty())
	assert.True(t, d.Engine.Schedule().Due(time.Now()))
}

func TestSyncHandlerNoEngine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSyncHandler(&Daemon{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/sync/status", nil)

	handler.Status(c)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp ControlPlaneError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrCodeSyncNotReady, resp.ErrorCode)
}
