package pipeline

import (
	"context"
	"fmt"

	"github.com/aaveggupta/cli-ai-code-editor/internal/apply"
	"github.com/aaveggupta/cli-ai-code-editor/internal/models"
	"github.com/aaveggupta/cli-ai-code-editor/internal/oracle"

	"go.uber.org/zap"
)

// Details is a request together with its journaled changes.
type Details struct {
	Prompt  *models.Prompt      `json:"prompt" yaml:"prompt"`
	Changes []models.CodeChange `json:"changes" yaml:"changes"`
}

// History returns the user's requests, newest first.
func (e *Executor) History(ctx context.Context, userID string) ([]models.Prompt, error) {
	prompts, err := e.store.ListPromptsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prompts == nil {
		prompts = []models.Prompt{}
	}
	return prompts, nil
}

// Details loads a request owned by userID.
func (e *Executor) Details(ctx context.Context, userID, requestID string) (*Details, error) {
	prompt, err := e.owned(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}
	changes, err := e.journal.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if changes == nil {
		changes = []models.CodeChange{}
	}
	return &Details{Prompt: prompt, Changes: changes}, nil
}

// Reapply writes the journaled content of a request again. Every write is a
// full overwrite, so reapplying an already applied request changes nothing.
// A request with nothing journaled is left untouched and ErrNothingToReapply
// is returned.
func (e *Executor) Reapply(ctx context.Context, userID, requestID string) (*Result, error) {
	ctx = context.WithoutCancel(ctx)
	prompt, err := e.owned(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}
	changes, err := e.journal.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	plan := &oracle.Plan{Edits: []oracle.Edit{}}
	var items []apply.Item
	for _, c := range changes {
		if c.ModifiedContent == nil {
			continue
		}
		edit := oracle.Edit{
			FilePath:        c.FilePath,
			OriginalContent: c.OriginalContent,
			ModifiedContent: *c.ModifiedContent,
			IsNewFile:       c.OriginalContent == nil,
		}
		if c.ChangeDescription != nil {
			edit.Description = *c.ChangeDescription
		}
		plan.Edits = append(plan.Edits, edit)
		items = append(items, apply.Item{ChangeID: c.ID, Edit: edit})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("prompt %s: %w", requestID, ErrNothingToReapply)
	}

	log := e.logger.With(zap.String("prompt_id", requestID))
	log.Info("reapplying journaled changes", zap.Int("changes", len(items)))
	if err := e.store.UpdatePromptStatus(ctx, requestID, models.StatusProcessing); err != nil {
		return nil, err
	}

	outcome := e.applier.Apply(prompt.TargetRepo, items, func(it apply.Item) error {
		return e.journal.MarkApplied(ctx, it.ChangeID)
	})
	return e.settle(ctx, log, requestID, plan, outcome), nil
}

func (e *Executor) owned(ctx context.Context, userID, requestID string) (*models.Prompt, error) {
	prompt, err := e.store.GetPrompt(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if prompt.UserID != userID {
		return nil, fmt.Errorf("prompt %s: %w", requestID, ErrAccessDenied)
	}
	return prompt, nil
}
