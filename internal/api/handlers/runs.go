package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Conceptual-Machines/reel-director/internal/agents/core/coordination"
	"github.com/Conceptual-Machines/reel-director/internal/api/middleware"
	"github.com/Conceptual-Machines/reel-director/internal/database"
	"github.com/Conceptual-Machines/reel-director/internal/logger"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/Conceptual-Machines/reel-director/internal/revision"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// RunExecutor executes pipeline runs. coordination.Orchestrator implements it.
type RunExecutor interface {
	Run(ctx context.Context, req models.RunRequest, opts coordination.RunOptions) (*coordination.Result, error)
}

// RunReader loads stored runs. database.RunStore implements it.
type RunReader interface {
	Get(ctx context.Context, id string) (*models.RunRecord, error)
	ListRecent(ctx context.Context, owner string, limit int) ([]models.RunRecord, error)
}

type RunHandler struct {
	runner   RunExecutor
	store    RunReader
	timeout  time.Duration
	counter  *RunCounter
	upgrader websocket.Upgrader
}

func NewRunHandler(runner RunExecutor, store RunReader, timeout time.Duration, counter *RunCounter) *RunHandler {
	return &RunHandler{
		runner:  runner,
		store:   store,
		timeout: timeout,
		counter: counter,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS middleware already decides who may call the API
			},
		},
	}
}

// streamMessage is one SSE data frame or websocket message
type streamMessage struct {
	Type      string               `json:"type"` // "start", "progress", "done" or "error"
	RunID     string               `json:"runId"`
	Event     *revision.Event      `json:"event,omitempty"`
	Result    *coordination.Result `json:"result,omitempty"`
	Status    models.RunStatus     `json:"status,omitempty"`
	Message   string               `json:"message,omitempty"`
	RequestID string               `json:"request_id,omitempty"`
}

// CreateRun runs the whole pipeline and answers with the result
// POST /api/v1/runs
func (h *RunHandler) CreateRun(c *gin.Context) {
	var req models.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("❌ CreateRun: JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runID := uuid.NewString()
	c.Set("run_id", runID)
	log.Printf("🎬 CreateRun: run=%s photos=%d target=%.1fs", runID, len(req.Photos), req.TargetDurationSec)

	ctx, cancel := h.runContext(c.Request.Context())
	defer cancel()
	defer h.counter.start()()

	result, err := h.runner.Run(ctx, req, coordination.RunOptions{RunID: runID, Owner: middleware.Owner(c)})
	if err != nil {
		logger.Error("Run request failed", err, logger.WithContext(c))
		c.JSON(runErrorStatus(err), gin.H{
			"error":      err.Error(),
			"run_id":     runID,
			"request_id": c.GetString("request_id"),
		})
		return
	}

	log.Printf("✅ CreateRun: run %s finished with status %s", runID, result.Status())
	c.JSON(http.StatusOK, gin.H{
		"status": result.Status(),
		"result": result,
	})
}

// StreamRun runs the pipeline and streams progress as server-sent events
// POST /api/v1/runs/stream
func (h *RunHandler) StreamRun(c *gin.Context) {
	var req models.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("❌ StreamRun: JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Reject bad requests before switching to an event stream
	if _, err := coordination.ValidateRequest(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runID := uuid.NewString()
	c.Set("run_id", runID)

	// Set up SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering
	c.Header("X-Run-ID", runID)
	c.Writer.Flush()

	requestID := c.GetString("request_id")
	send := func(msg streamMessage) error {
		msg.RequestID = requestID
		eventJSON, err := json.Marshal(msg)
		if err != nil {
			log.Printf("❌ StreamRun: Failed to marshal event: %v", err)
			return err
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", eventJSON); err != nil {
			log.Printf("❌ StreamRun: Failed to write SSE event: %v", err)
			return err
		}
		c.Writer.Flush()
		return nil
	}

	h.streamRun(c.Request.Context(), req, runID, middleware.Owner(c), send)
}

// RunSocket runs the pipeline for the first request sent over a websocket
// and streams progress back on the same connection
// GET /api/v1/runs/ws
func (h *RunHandler) RunSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ RunSocket: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var req models.RunRequest
	if err := conn.ReadJSON(&req); err != nil {
		log.Printf("❌ RunSocket: bad request: %v", err)
		_ = writeSocket(conn, streamMessage{Type: "error", Message: "invalid run request: " + err.Error()})
		return
	}

	runID := uuid.NewString()
	c.Set("run_id", runID)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// The client has nothing more to say; a read error means it went away
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	h.streamRun(ctx, req, runID, middleware.Owner(c), func(msg streamMessage) error {
		return writeSocket(conn, msg)
	})

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"),
		time.Now().Add(wsWriteTimeout))
}

func writeSocket(conn *websocket.Conn, msg streamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(msg)
}

type runOutcome struct {
	result *coordination.Result
	err    error
}

// streamRun executes one run and forwards its progress events through send,
// ending with a done or error message. Heartbeats arrive on their own
// goroutines, so events are funnelled through a channel and send is only
// ever called from this goroutine.
func (h *RunHandler) streamRun(ctx context.Context, req models.RunRequest, runID, owner string, send func(streamMessage) error) {
	ctx, cancel := h.runContext(ctx)
	defer cancel()
	defer h.counter.start()()

	events := make(chan revision.Event, eventBuffer)
	finished := make(chan struct{})
	observer := revision.ObserverFunc(func(e revision.Event) {
		select {
		case events <- e:
		case <-finished:
		}
	})

	outcome := make(chan runOutcome, 1)
	go func() {
		result, err := h.runner.Run(ctx, req, coordination.RunOptions{RunID: runID, Owner: owner, Observer: observer})
		outcome <- runOutcome{result: result, err: err}
	}()

	log.Printf("📡 Streaming run %s", runID)
	_ = send(streamMessage{Type: "start", RunID: runID, Message: "Run started"})

	forward := func(e revision.Event) {
		if err := send(streamMessage{Type: "progress", RunID: runID, Event: &e}); err != nil {
			// The client is gone; stop the run instead of finishing it for nobody
			cancel()
		}
	}

	for {
		select {
		case e := <-events:
			forward(e)
		case out := <-outcome:
			close(finished)
			for drained := false; !drained; {
				select {
				case e := <-events:
					forward(e)
				default:
					drained = true
				}
			}
			if out.err != nil {
				log.Printf("❌ Run %s failed: %v", runID, out.err)
				_ = send(streamMessage{Type: "error", RunID: runID, Status: models.RunStatusFailed, Message: out.err.Error()})
				return
			}
			log.Printf("✅ Run %s streamed to completion (%s)", runID, out.result.Status())
			_ = send(streamMessage{Type: "done", RunID: runID, Status: out.result.Status(), Result: out.result})
			return
		}
	}
}

func (h *RunHandler) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(parent, h.timeout)
	}
	return context.WithCancel(parent)
}

func runErrorStatus(err error) int {
	switch {
	case errors.Is(err, coordination.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	default:
		return http.StatusBadGateway
	}
}

// GetRun returns a stored run with its review rounds
// GET /api/v1/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	id := c.Param("id")
	run, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, database.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		log.Printf("❌ GetRun: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run"})
		return
	}
	// Other owners' runs are reported as missing
	if run.Owner != middleware.Owner(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, run)
}

// ListRuns returns the caller's most recent runs
// GET /api/v1/runs?limit=20
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit := defaultListPageSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxListPageSize)
	}

	runs, err := h.store.ListRecent(c.Request.Context(), middleware.Owner(c), limit)
	if err != nil {
		log.Printf("❌ ListRuns: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}
