package coordination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/reel-director/internal/contracts"
	"github.com/Conceptual-Machines/reel-director/internal/logger"
	"github.com/Conceptual-Machines/reel-director/internal/metrics"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/Conceptual-Machines/reel-director/internal/observability"
	"github.com/Conceptual-Machines/reel-director/internal/revision"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ErrInvalidRequest marks requests rejected before any agent is called
var ErrInvalidRequest = errors.New("invalid run request")

// Agents are the six capabilities one run needs
type Agents struct {
	Planner   revision.CreativePlanner
	Visual    revision.VisualProducer
	Music     revision.MusicProducer
	Render    revision.RenderPlanProducer
	Director  revision.CreativeReviewer
	Narrative revision.ScriptReviewer
}

// RunRecorder persists runs. database.RunStore implements it.
type RunRecorder interface {
	Create(ctx context.Context, run *models.RunRecord) error
	AppendRounds(ctx context.Context, rounds []models.ReviewRoundRecord) error
	Finish(ctx context.Context, id string, update models.RunUpdate) error
}

// Orchestrator runs the pipeline: plan, creative review loop, script review loop
type Orchestrator struct {
	agents     Agents
	settings   Settings
	router     *revision.NoteRouter
	store      RunRecorder
	cloudwatch *metrics.Client
	metrics    *metrics.SentryMetrics
	langfuse   *observability.LangfuseClient
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithStore persists every run
func WithStore(store RunRecorder) Option {
	return func(o *Orchestrator) { o.store = store }
}

// WithRouter shares a note router, e.g. one whose vocabulary is hot reloaded
func WithRouter(router *revision.NoteRouter) Option {
	return func(o *Orchestrator) { o.router = router }
}

// WithCloudWatch sends run metrics to CloudWatch
func WithCloudWatch(client *metrics.Client) Option {
	return func(o *Orchestrator) { o.cloudwatch = client }
}

// WithLangfuse traces every run in Langfuse
func WithLangfuse(client *observability.LangfuseClient) Option {
	return func(o *Orchestrator) { o.langfuse = client }
}

// NewOrchestrator creates a new orchestrator instance
func NewOrchestrator(agents Agents, settings Settings, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		agents:   agents,
		settings: settings,
		metrics:  metrics.NewSentryMetrics(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.router == nil {
		o.router = revision.NewNoteRouter(nil)
	}
	if o.langfuse == nil {
		o.langfuse = observability.GetClient()
	}
	return o
}

// RunOptions carries per-run identity and the caller's progress observer
type RunOptions struct {
	RunID    string
	Owner    string
	Observer revision.Observer
}

// Result is everything downstream publication needs
type Result struct {
	RunID          string                   `json:"runId"`
	Plan           *models.CreativePlan     `json:"plan"`
	Visual         *models.VisualScript     `json:"visual"`
	Music          *models.MusicComposition `json:"music"`
	AudioAvailable bool                     `json:"audioAvailable"`
	RenderPlan     *models.RenderPlan       `json:"renderPlan"`
	DirectorLog    models.ReviewLog         `json:"directorLog"`
	ScriptLog      models.ReviewLog         `json:"scriptLog"`
	Passed         bool                     `json:"passed"`
	Warning        string                   `json:"warning,omitempty"`
	DurationMs     int64                    `json:"durationMs"`
}

// Status maps the result to the persisted run status
func (r *Result) Status() models.RunStatus {
	if r.Passed && r.AudioAvailable {
		return models.RunStatusPassed
	}
	return models.RunStatusDegraded
}

// Run executes one full pipeline run. Review budgets running out is not
// an error: the result then has Passed false and a warning.
func (o *Orchestrator) Run(ctx context.Context, req models.RunRequest, opts RunOptions) (*Result, error) {
	photos, err := ValidateRequest(req)
	if err != nil {
		return nil, err
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	videoSpec := o.settings.VideoSpec
	if req.VideoSpec != nil {
		videoSpec = *req.VideoSpec
	}
	startTime := time.Now()
	log.Printf("🎬 RUN STARTED: %s (photos=%d, target=%.1fs)", runID, len(photos), req.TargetDurationSec)

	transaction := sentry.StartTransaction(ctx, "pipeline.run")
	defer transaction.Finish()
	transaction.SetTag("run_id", runID)
	ctx = transaction.Context()

	trace := o.langfuse.StartTrace(ctx, "reel.run", map[string]interface{}{
		"run_id": runID,
		"owner":  opts.Owner,
		"photos": len(photos),
	})
	defer trace.Finish()
	ctx = observability.ContextWithTrace(ctx, trace)
	if traceID := trace.ID(); traceID != "" {
		transaction.SetTag("langfuse_trace_id", traceID)
	}

	collector := metrics.NewRunCollector()
	observer := revision.Observers{
		revision.LogObserver{Fields: logger.Fields{"run_id": runID}},
		collector,
		opts.Observer,
	}

	o.createRecord(ctx, runID, opts.Owner, req)

	result, err := o.run(ctx, runID, req, photos, videoSpec, observer)
	duration := time.Since(startTime)

	outcome := metrics.RunOutcome{Duration: duration}
	collector.Fill(&outcome)
	if err != nil {
		outcome.Status = metrics.RunStatusFailed
		transaction.SetTag("success", "false")
		logger.Error("Run failed", err, logger.Fields{"run_id": runID, "duration_ms": duration.Milliseconds()})
		o.finishRecord(ctx, runID, models.RunUpdate{
			Status:     models.RunStatusFailed,
			Error:      err.Error(),
			DurationMs: duration.Milliseconds(),
		})
		o.recordRun(ctx, outcome)
		return nil, err
	}

	result.DurationMs = duration.Milliseconds()
	outcome.Status = string(result.Status())
	outcome.Passed = result.Passed
	outcome.AudioAvailable = result.AudioAvailable
	outcome.DirectorRounds = len(result.DirectorLog.Rounds)
	outcome.ScriptRounds = len(result.ScriptLog.Rounds)
	transaction.SetTag("success", "true")
	transaction.SetTag("status", outcome.Status)

	trace.SetMetadata(map[string]interface{}{
		"status":          outcome.Status,
		"director_rounds": outcome.DirectorRounds,
		"script_rounds":   outcome.ScriptRounds,
		"audio_available": outcome.AudioAvailable,
	})
	if result.Status() == models.RunStatusDegraded {
		logger.LogToSentry(sentry.LevelWarning, "Run degraded", logger.Fields{
			"run_id":  runID,
			"warning": result.Warning,
			"passed":  result.Passed,
		})
	}

	o.persistResult(ctx, result)
	o.recordRun(ctx, outcome)

	log.Printf("✅ RUN COMPLETE: %s status=%s rounds=%d/%d in %v",
		runID, outcome.Status, outcome.DirectorRounds, outcome.ScriptRounds, duration)
	return result, nil
}

func (o *Orchestrator) run(
	ctx context.Context,
	runID string,
	req models.RunRequest,
	photos []models.Photo,
	videoSpec models.VideoSpec,
	observer revision.Observer,
) (*Result, error) {
	s := o.settings

	planStage := &revision.PlanStage{
		Planner:           o.agents.Planner,
		Observer:          observer,
		Attempts:          s.GenerationAttempts,
		HeartbeatInterval: s.HeartbeatInterval,
	}
	plan, _, err := planStage.Run(ctx, revision.PlanInput{
		Brief:             req.Brief,
		Photos:            photos,
		TargetDurationSec: req.TargetDurationSec,
		DurationEpsilon:   s.DurationEpsilon,
	})
	if err != nil {
		return nil, err
	}

	rules := contracts.NewRules(videoSpec, plan.DurationSec(), models.PhotoRefs(photos))
	rules.DurationEpsilon = s.DurationEpsilon

	directorLoop := &revision.DirectorLoop{
		Visual:             o.agents.Visual,
		Music:              o.agents.Music,
		Reviewer:           o.agents.Director,
		Router:             o.router,
		Observer:           observer,
		MaxRounds:          s.DirectorMaxRounds,
		GenerationAttempts: s.GenerationAttempts,
		ReviewAttempts:     s.ReviewAttempts,
		HeartbeatInterval:  s.HeartbeatInterval,
	}
	creative, err := directorLoop.Run(ctx, revision.DirectorInput{
		Brief:  req.Brief,
		Plan:   *plan,
		Photos: photos,
		Rules:  rules,
	})
	if err != nil {
		return nil, err
	}

	scriptLoop := &revision.ScriptLoop{
		Producer:          o.agents.Render,
		Reviewer:          o.agents.Narrative,
		Observer:          observer,
		MaxRounds:         s.ScriptMaxRounds,
		RenderAttempts:    1 + s.RenderExtraAttempts,
		ReviewAttempts:    s.ReviewAttempts,
		HeartbeatInterval: s.HeartbeatInterval,
	}
	script, err := scriptLoop.Run(ctx, revision.ScriptInput{
		Brief:     req.Brief,
		Photos:    photos,
		VideoSpec: videoSpec,
		Rules:     rules,
		Reference: creative.Visual,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:          runID,
		Plan:           plan,
		Visual:         creative.Visual,
		Music:          creative.Music,
		AudioAvailable: creative.AudioAvailable,
		RenderPlan:     script.RenderPlan,
		DirectorLog:    creative.Log,
		ScriptLog:      script.Log,
		Passed:         creative.Passed && script.Passed,
		Warning:        joinWarnings(creative.Warning, script.Warning),
	}, nil
}

// ValidateRequest checks a run request and returns the photo list the
// producers will see
func ValidateRequest(req models.RunRequest) ([]models.Photo, error) {
	photos := req.Photos
	if len(photos) == 0 {
		for _, ref := range req.Brief.PhotoRefs() {
			photos = append(photos, models.Photo{Ref: ref})
		}
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("%w: at least one photo is required", ErrInvalidRequest)
	}

	seen := make(map[string]bool, len(photos))
	for i, p := range photos {
		if strings.TrimSpace(p.Ref) == "" {
			return nil, fmt.Errorf("%w: photos[%d].ref is empty", ErrInvalidRequest, i)
		}
		if seen[p.Ref] {
			return nil, fmt.Errorf("%w: photo ref %q appears twice", ErrInvalidRequest, p.Ref)
		}
		seen[p.Ref] = true
	}

	if req.TargetDurationSec < 0 {
		return nil, fmt.Errorf("%w: targetDurationSec must be >= 0", ErrInvalidRequest)
	}
	if spec := req.VideoSpec; spec != nil && (spec.Width <= 0 || spec.Height <= 0 || spec.FPS <= 0) {
		return nil, fmt.Errorf("%w: videoSpec width, height and fps must be > 0", ErrInvalidRequest)
	}
	return photos, nil
}

func joinWarnings(warnings ...string) string {
	var out []string
	for _, w := range warnings {
		if w != "" {
			out = append(out, w)
		}
	}
	return strings.Join(out, "; ")
}

func (o *Orchestrator) recordRun(ctx context.Context, outcome metrics.RunOutcome) {
	o.metrics.RecordRun(ctx, outcome)
	o.cloudwatch.RecordRun(outcome)
}

// Persistence is best effort: a storage failure is logged and the run goes on

func (o *Orchestrator) createRecord(ctx context.Context, runID, owner string, req models.RunRequest) {
	if o.store == nil {
		return
	}
	brief, err := json.Marshal(req)
	if err != nil {
		logger.Error("Failed to encode run request", err, logger.Fields{"run_id": runID})
		return
	}
	if err := o.store.Create(ctx, &models.RunRecord{
		ID:     runID,
		Owner:  owner,
		Status: models.RunStatusRunning,
		Brief:  datatypes.JSON(brief),
	}); err != nil {
		logger.Error("Failed to store run", err, logger.Fields{"run_id": runID})
	}
}

func (o *Orchestrator) persistResult(ctx context.Context, result *Result) {
	if o.store == nil {
		return
	}
	fields := logger.Fields{"run_id": result.RunID}

	rounds := append(
		roundRecords(result.RunID, revision.LoopDirector, result.DirectorLog),
		roundRecords(result.RunID, revision.LoopScript, result.ScriptLog)...,
	)
	if err := o.store.AppendRounds(ctx, rounds); err != nil {
		logger.Error("Failed to store review rounds", err, fields)
	}

	body, err := json.Marshal(result)
	if err != nil {
		logger.Error("Failed to encode run result", err, fields)
		return
	}
	o.finishRecord(ctx, result.RunID, models.RunUpdate{
		Status:     result.Status(),
		Result:     datatypes.JSON(body),
		Warning:    result.Warning,
		DurationMs: result.DurationMs,
	})
}

func (o *Orchestrator) finishRecord(ctx context.Context, runID string, update models.RunUpdate) {
	if o.store == nil {
		return
	}
	// The run context may already be cancelled; the final state is still written
	ctx = context.WithoutCancel(ctx)
	if err := o.store.Finish(ctx, runID, update); err != nil {
		logger.Error("Failed to finish run", err, logger.Fields{"run_id": runID})
	}
}

func roundRecords(runID, loop string, reviewLog models.ReviewLog) []models.ReviewRoundRecord {
	records := make([]models.ReviewRoundRecord, 0, len(reviewLog.Rounds))
	for _, r := range reviewLog.Rounds {
		issues, _ := json.Marshal(r.Issues)
		changes, _ := json.Marshal(r.RequiredChanges)
		records = append(records, models.ReviewRoundRecord{
			RunID:           runID,
			Loop:            loop,
			Round:           r.Round,
			Passed:          r.Passed,
			Summary:         r.Summary,
			Issues:          datatypes.JSON(issues),
			RequiredChanges: datatypes.JSON(changes),
		})
	}
	return records
}
