// Package pipeline runs an instruction end to end: scan, select, consult the
// oracle, journal the proposed edits, apply them and settle the request
// status.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aaveggupta/cli-ai-code-editor/internal/apply"
	"github.com/aaveggupta/cli-ai-code-editor/internal/journal"
	"github.com/aaveggupta/cli-ai-code-editor/internal/models"
	"github.com/aaveggupta/cli-ai-code-editor/internal/oracle"
	"github.com/aaveggupta/cli-ai-code-editor/internal/relevance"
	"github.com/aaveggupta/cli-ai-code-editor/internal/scanner"

	"go.uber.org/zap"
)

// fallbackFiles is how many corpus files the oracle sees when selection
// finds nothing.
const fallbackFiles = 5

// ErrAccessDenied is returned when a user asks for another user's request.
var ErrAccessDenied = errors.New("access denied")

// ErrNothingToReapply is returned by Reapply when a request journaled no
// writable changes.
var ErrNothingToReapply = errors.New("no recorded changes to reapply")

// RequestStore persists execution requests. *db.Queries implements it.
type RequestStore interface {
	CreatePrompt(ctx context.Context, userID, prompt, targetRepo string) (*models.Prompt, error)
	GetPrompt(ctx context.Context, id string) (*models.Prompt, error)
	ListPromptsByUser(ctx context.Context, userID string) ([]models.Prompt, error)
	UpdatePromptStatus(ctx context.Context, id, status string) error
}

type Scanner interface {
	Scan(root string) (*scanner.Result, error)
}

type Proposer interface {
	Propose(ctx context.Context, instruction string, files []models.FileRecord, tree string) (*oracle.Plan, error)
}

// Deps are the collaborators of an Executor. Metrics may be nil.
type Deps struct {
	Store   RequestStore
	Journal *journal.Journal
	Scanner Scanner
	Oracle  Proposer
	Applier *apply.Applier
	Logger  *zap.Logger
	Metrics *Metrics
}

type Executor struct {
	store   RequestStore
	journal *journal.Journal
	scanner Scanner
	oracle  Proposer
	applier *apply.Applier
	logger  *zap.Logger
	metrics *Metrics
}

func New(d Deps) *Executor {
	return &Executor{
		store:   d.Store,
		journal: d.Journal,
		scanner: d.Scanner,
		oracle:  d.Oracle,
		applier: d.Applier,
		logger:  d.Logger,
		metrics: d.Metrics,
	}
}

// Result is the outcome of one execution. AppliedCount + len(Errors) equals
// len(Edits) whenever edits reached the applier.
type Result struct {
	Success      bool          `json:"success" yaml:"success"`
	RequestID    string        `json:"promptId" yaml:"promptId"`
	Plan         string        `json:"plan" yaml:"plan"`
	Edits        []oracle.Edit `json:"edits" yaml:"edits"`
	AppliedCount int           `json:"appliedCount" yaml:"appliedCount"`
	Errors       []string      `json:"errors" yaml:"errors"`
}

// Execute runs the whole pipeline for one instruction against repoPath. It
// never returns an error: failures are reported in the Result. Once started a
// run is not cancelled by ctx.
func (e *Executor) Execute(ctx context.Context, userID, instruction, repoPath string) (res *Result) {
	ctx = context.WithoutCancel(ctx)
	var (
		requestID string
		plan      *oracle.Plan
	)

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("pipeline panic", zap.String("prompt_id", requestID), zap.Any("panic", r), zap.Stack("stack"))
			res = e.fail(ctx, requestID, fmt.Errorf("internal error: %v", r), plan)
		}
	}()

	prompt, err := e.store.CreatePrompt(ctx, userID, instruction, repoPath)
	if err != nil {
		return e.fail(ctx, "", err, nil)
	}
	requestID = prompt.ID
	log := e.logger.With(zap.String("prompt_id", requestID))
	log.Info("prompt execution started", zap.String("user_id", userID), zap.String("repo", repoPath))

	if err := e.store.UpdatePromptStatus(ctx, requestID, models.StatusProcessing); err != nil {
		return e.fail(ctx, requestID, err, nil)
	}

	scan, err := e.scanner.Scan(repoPath)
	if err != nil {
		return e.fail(ctx, requestID, err, nil)
	}
	log.Info("repository scanned",
		zap.Int("files", len(scan.Files)),
		zap.String("size", fmt.Sprintf("%.2f KB", float64(scan.TotalSize)/1024)))

	files := relevance.Select(scan.Files, instruction)
	log.Info("relevant files identified", zap.Int("count", len(files)), zap.Strings("sample", samplePaths(files, 5)))
	if len(files) == 0 {
		files = scan.Files[:min(fallbackFiles, len(scan.Files))]
	}

	start := time.Now()
	plan, err = e.oracle.Propose(ctx, instruction, files, scan.Tree)
	e.metrics.oracleCall(start)
	if err != nil {
		return e.fail(ctx, requestID, err, nil)
	}
	log.Info("plan received", zap.Int("edits", len(plan.Edits)))

	items := make([]apply.Item, 0, len(plan.Edits))
	for _, edit := range plan.Edits {
		change, err := e.journal.Record(ctx, requestID, edit)
		if err != nil {
			return e.fail(ctx, requestID, err, plan)
		}
		items = append(items, apply.Item{ChangeID: change.ID, Edit: edit})
	}

	outcome := e.applier.Apply(repoPath, items, func(it apply.Item) error {
		return e.journal.MarkApplied(ctx, it.ChangeID)
	})
	return e.settle(ctx, log, requestID, plan, outcome)
}

// settle records the terminal status of a run that reached the applier.
func (e *Executor) settle(ctx context.Context, log *zap.Logger, requestID string, plan *oracle.Plan, outcome apply.Outcome) *Result {
	status := models.StatusCompleted
	if len(outcome.Errors) > 0 {
		status = models.StatusFailed
	}
	if err := e.store.UpdatePromptStatus(ctx, requestID, status); err != nil {
		log.Error("recording terminal status", zap.String("status", status), zap.Error(err))
	}
	e.metrics.finished(status, outcome.Applied, len(outcome.Errors))

	errs := outcome.Errors
	if errs == nil {
		errs = []string{}
	}
	log.Info("prompt execution finished",
		zap.String("status", status),
		zap.Int("applied", outcome.Applied),
		zap.Int("planned", len(plan.Edits)),
		zap.Strings("errors", errs))

	return &Result{
		Success:      len(errs) == 0,
		RequestID:    requestID,
		Plan:         plan.Plan,
		Edits:        plan.Edits,
		AppliedCount: outcome.Applied,
		Errors:       errs,
	}
}

// fail ends a run that did not settle normally. Without a request ID there
// is nothing to update. When the plan is known every planned edit is reported
// as not applied, the first one carrying the cause.
func (e *Executor) fail(ctx context.Context, requestID string, cause error, plan *oracle.Plan) *Result {
	res := &Result{
		RequestID: requestID,
		Edits:     []oracle.Edit{},
		Errors:    []string{cause.Error()},
	}
	if plan != nil && len(plan.Edits) > 0 {
		res.Plan = plan.Plan
		res.Edits = plan.Edits
		for _, edit := range plan.Edits[1:] {
			res.Errors = append(res.Errors, edit.FilePath+": not applied")
		}
	}

	log := e.logger.With(zap.String("prompt_id", requestID))
	log.Error("prompt execution failed", zap.Error(cause))
	if requestID != "" {
		if err := e.store.UpdatePromptStatus(ctx, requestID, models.StatusFailed); err != nil {
			log.Error("recording failed status", zap.Error(err))
		}
	}
	e.metrics.finished(models.StatusFailed, 0, 0)
	return res
}

func samplePaths(files []models.FileRecord, n int) []string {
	out := make([]string, 0, min(n, len(files)))
	for _, f := range files[:min(n, len(files))] {
		out = append(out, f.RelativePath)
	}
	return out
}
