package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Conceptual-Machines/reel-director/internal/agents/core/coordination"
	"github.com/Conceptual-Machines/reel-director/internal/api/middleware"
	"github.com/Conceptual-Machines/reel-director/internal/database"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/Conceptual-Machines/reel-director/internal/revision"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type runnerFunc func(ctx context.Context, req models.RunRequest, opts coordination.RunOptions) (*coordination.Result, error)

func (f runnerFunc) Run(ctx context.Context, req models.RunRequest, opts coordination.RunOptions) (*coordination.Result, error) {
	return f(ctx, req, opts)
}

type fakeReader struct {
	runs map[string]*models.RunRecord
	list func(owner string, limit int) ([]models.RunRecord, error)
}

func (r *fakeReader) Get(_ context.Context, id string) (*models.RunRecord, error) {
	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", database.ErrRunNotFound, id)
	}
	return run, nil
}

func (r *fakeReader) ListRecent(_ context.Context, owner string, limit int) ([]models.RunRecord, error) {
	return r.list(owner, limit)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// progressRunner reports two events, then passes
func progressRunner() runnerFunc {
	return func(_ context.Context, _ models.RunRequest, opts coordination.RunOptions) (*coordination.Result, error) {
		if opts.Observer != nil {
			opts.Observer.OnEvent(revision.Event{Type: revision.EventRoundStarted, Loop: revision.LoopDirector, Round: 1})
			opts.Observer.OnEvent(revision.Event{Type: revision.EventHeartbeat, Stage: revision.StageVisual, ElapsedMs: 5000})
		}
		return &coordination.Result{RunID: opts.RunID, Passed: true, AudioAvailable: true}, nil
	}
}

const runBody = `{"photos":[{"ref":"p1"}],"brief":{"emotion":{"coreEmotion":"joy"}}}`

func newRunRouter(runner RunExecutor, store RunReader, gateway bool) *gin.Engine {
	router := gin.New()
	h := NewRunHandler(runner, store, time.Minute, &RunCounter{})
	mode := middleware.AuthModeNone
	if gateway {
		mode = middleware.AuthModeGateway
	}
	group := router.Group("/api/v1", middleware.Auth(mode, ""))
	group.POST("/runs", h.CreateRun)
	group.POST("/runs/stream", h.StreamRun)
	group.GET("/runs/ws", h.RunSocket)
	group.GET("/runs", h.ListRuns)
	group.GET("/runs/:id", h.GetRun)
	return router
}

func TestRunHandler_CreateRun(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		runErr     error
		wantStatus int
	}{
		{"success", runBody, nil, http.StatusOK},
		{"malformed json", `{"photos":`, nil, http.StatusBadRequest},
		{"invalid request", runBody, fmt.Errorf("%w: no photos", coordination.ErrInvalidRequest), http.StatusBadRequest},
		{"timeout", runBody, fmt.Errorf("visual: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"agent failure", runBody, errors.New("director review: exhausted"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotOwner string
			runner := runnerFunc(func(ctx context.Context, req models.RunRequest, opts coordination.RunOptions) (*coordination.Result, error) {
				gotOwner = opts.Owner
				assert.NotEmpty(t, opts.RunID)
				if tt.runErr != nil {
					return nil, tt.runErr
				}
				return &coordination.Result{RunID: opts.RunID, Passed: true}, nil
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			newRunRouter(runner, &fakeReader{}, false).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "anonymous", gotOwner)
				var resp struct {
					Status string              `json:"status"`
					Result coordination.Result `json:"result"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				// passed reviews without audio is degraded
				assert.Equal(t, "degraded", resp.Status)
				assert.True(t, resp.Result.Passed)
			}
		})
	}
}

func TestRunHandler_StreamRun(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs/stream", strings.NewReader(runBody))
	req.Header.Set("Content-Type", "application/json")
	newRunRouter(progressRunner(), &fakeReader{}, false).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	var messages []streamMessage
	scanner := bufio.NewScanner(w.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var msg streamMessage
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &msg))
		messages = append(messages, msg)
	}

	require.Len(t, messages, 4)
	assert.Equal(t, "start", messages[0].Type)
	assert.Equal(t, "progress", messages[1].Type)
	assert.Equal(t, revision.EventRoundStarted, messages[1].Event.Type)
	assert.Equal(t, revision.EventHeartbeat, messages[2].Event.Type)
	assert.Equal(t, "done", messages[3].Type)
	assert.Equal(t, models.RunStatusPassed, messages[3].Status)
	assert.Equal(t, messages[0].RunID, messages[3].Result.RunID)
}

func TestRunHandler_StreamRunRejectsBadRequests(t *testing.T) {
	called := false
	runner := runnerFunc(func(context.Context, models.RunRequest, coordination.RunOptions) (*coordination.Result, error) {
		called = true
		return nil, nil
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs/stream", strings.NewReader(`{"photos":[]}`))
	req.Header.Set("Content-Type", "application/json")
	newRunRouter(runner, &fakeReader{}, false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestRunHandler_StreamRunError(t *testing.T) {
	runner := runnerFunc(func(context.Context, models.RunRequest, coordination.RunOptions) (*coordination.Result, error) {
		return nil, errors.New("creative plan: exhausted")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs/stream", strings.NewReader(runBody))
	req.Header.Set("Content-Type", "application/json")
	newRunRouter(runner, &fakeReader{}, false).ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, `"type":"error"`)
	assert.Contains(t, body, "creative plan: exhausted")
	assert.NotContains(t, body, `"type":"done"`)
}

func TestRunHandler_RunSocket(t *testing.T) {
	server := httptest.NewServer(newRunRouter(progressRunner(), &fakeReader{}, false))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/runs/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(runBody)))

	var types []string
	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		types = append(types, msg.Type)
		if msg.Type == "done" {
			assert.Equal(t, models.RunStatusPassed, msg.Status)
			break
		}
	}
	assert.Equal(t, []string{"start", "progress", "progress", "done"}, types)
}

func TestRunHandler_GetRun(t *testing.T) {
	store := &fakeReader{runs: map[string]*models.RunRecord{
		"mine":   {ID: "mine", Owner: "u-1", Status: models.RunStatusPassed},
		"theirs": {ID: "theirs", Owner: "u-2", Status: models.RunStatusPassed},
	}}
	router := newRunRouter(progressRunner(), store, true)

	tests := []struct {
		name       string
		id         string
		user       string
		wantStatus int
	}{
		{"own run", "mine", "u-1", http.StatusOK},
		{"someone else's run", "theirs", "u-1", http.StatusNotFound},
		{"missing run", "nope", "u-1", http.StatusNotFound},
		{"no gateway headers", "mine", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+tt.id, nil)
			if tt.user != "" {
				req.Header.Set("X-User-ID", tt.user)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRunHandler_ListRuns(t *testing.T) {
	var gotOwner string
	var gotLimit int
	store := &fakeReader{list: func(owner string, limit int) ([]models.RunRecord, error) {
		gotOwner, gotLimit = owner, limit
		return []models.RunRecord{{ID: "a"}, {ID: "b"}}, nil
	}}
	router := newRunRouter(progressRunner(), store, false)

	t.Run("defaults", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anonymous", gotOwner)
		assert.Equal(t, defaultListPageSize, gotLimit)
		assert.Contains(t, w.Body.String(), `"count":2`)
	})

	t.Run("limit is capped", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=500", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, maxListPageSize, gotLimit)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		ping       error
		wantStatus int
	}{
		{"database up", nil, http.StatusOK},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(pingerFunc(func(context.Context) error { return tt.ping }), "")
			router := gin.New()
			router.GET("/health", h.HealthCheck)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"mcp_server"`)
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	counter := &RunCounter{}
	done := counter.start()

	h := NewMetricsHandler("test", "", counter)
	router := gin.New()
	router.GET("/api/metrics", h.GetMetrics)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp MetricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "test", resp.Version)
	assert.Positive(t, resp.Host.NumCPU)
	runs := resp.API["runs"].(map[string]interface{})
	assert.Equal(t, float64(1), runs["active"])

	done()
	assert.Equal(t, int64(0), counter.active.Load())
	assert.Equal(t, int64(1), counter.total.Load())
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5.00s", formatUptime(5*time.Second))
	assert.Equal(t, "2m3.00s", formatUptime(2*time.Minute+3*time.Second))
	assert.Equal(t, "1h0m1.50s", formatUptime(time.Hour+1500*time.Millisecond))
}
