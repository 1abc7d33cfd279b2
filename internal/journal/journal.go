// Package journal keeps the write-ahead record of every proposed edit. A
// record is created before its file is touched; the applied flag is the only
// field that changes afterwards.
package journal

import (
	"context"
	"fmt"

	"github.com/aaveggupta/cli-ai-code-editor/internal/db"
	"github.com/aaveggupta/cli-ai-code-editor/internal/models"
	"github.com/aaveggupta/cli-ai-code-editor/internal/oracle"

	"go.uber.org/zap"
)

// Store is the record store behind the journal. *db.Queries implements it.
type Store interface {
	CreateCodeChange(ctx context.Context, in db.CodeChangeInput) (*models.CodeChange, error)
	MarkCodeChangeApplied(ctx context.Context, id string) error
	ListCodeChanges(ctx context.Context, promptID string) ([]models.CodeChange, error)
}

type Journal struct {
	store  Store
	logger *zap.Logger
}

func New(store Store, logger *zap.Logger) *Journal {
	return &Journal{store: store, logger: logger}
}

// Record persists one proposed edit with applied=false.
func (j *Journal) Record(ctx context.Context, requestID string, e oracle.Edit) (*models.CodeChange, error) {
	modified := e.ModifiedContent
	in := db.CodeChangeInput{
		PromptID:        requestID,
		FilePath:        e.FilePath,
		OriginalContent: e.OriginalContent,
		ModifiedContent: &modified,
	}
	if e.Description != "" {
		desc := e.Description
		in.ChangeDescription = &desc
	}

	change, err := j.store.CreateCodeChange(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("recording change for %s: %w", e.FilePath, err)
	}
	j.logger.Debug("change recorded",
		zap.String("prompt_id", requestID),
		zap.String("change_id", change.ID),
		zap.String("file", e.FilePath))
	return change, nil
}

// MarkApplied flags a change as written to disk. Marking twice is harmless.
func (j *Journal) MarkApplied(ctx context.Context, changeID string) error {
	if err := j.store.MarkCodeChangeApplied(ctx, changeID); err != nil {
		return fmt.Errorf("marking change applied: %w", err)
	}
	return nil
}

// ListByRequest returns the changes of a request in recording order.
func (j *Journal) ListByRequest(ctx context.Context, requestID string) ([]models.CodeChange, error) {
	changes, err := j.store.ListCodeChanges(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("listing changes: %w", err)
	}
	return changes, nil
}
