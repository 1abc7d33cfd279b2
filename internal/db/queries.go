package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aaveggupta/cli-ai-code-editor/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type Queries struct {
	db *sql.DB
}

func NewQueries(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// Prompts

func (q *Queries) CreatePrompt(ctx context.Context, userID, prompt, targetRepo string) (*models.Prompt, error) {
	id := uuid.NewString()
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO prompts (id, user_id, prompt, target_repo, status) VALUES (?, ?, ?, ?, ?)`,
		id, userID, prompt, targetRepo, models.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("creating prompt: %w", err)
	}
	return q.GetPrompt(ctx, id)
}

func (q *Queries) GetPrompt(ctx context.Context, id string) (*models.Prompt, error) {
	p := &models.Prompt{}
	var createdAt, updatedAt string
	err := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, prompt, target_repo, status, created_at, updated_at
		 FROM prompts WHERE id = ?`, id,
	).Scan(&p.ID, &p.UserID, &p.Prompt, &p.TargetRepo, &p.Status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting prompt %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting prompt: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	p.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return p, nil
}

// ListPromptsByUser returns the user's prompts, newest first.
func (q *Queries) ListPromptsByUser(ctx context.Context, userID string) ([]models.Prompt, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, user_id, prompt, target_repo, status, created_at, updated_at
		 FROM prompts WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing prompts: %w", err)
	}
	defer rows.Close()

	var results []models.Prompt
	for rows.Next() {
		var p models.Prompt
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.UserID, &p.Prompt, &p.TargetRepo, &p.Status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning prompt: %w", err)
		}
		p.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		p.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
		results = append(results, p)
	}
	return results, rows.Err()
}

func (q *Queries) UpdatePromptStatus(ctx context.Context, id, status string) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE prompts SET status = ?, updated_at = datetime('now') WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating prompt status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating prompt status %s: %w", id, ErrNotFound)
	}
	return nil
}

// Code changes

// CodeChangeInput carries the content snapshot of one proposed edit.
type CodeChangeInput struct {
	PromptID          string
	FilePath          string
	OriginalContent   *string
	ModifiedContent   *string
	ChangeDescription *string
}

func (q *Queries) CreateCodeChange(ctx context.Context, in CodeChangeInput) (*models.CodeChange, error) {
	id := uuid.NewString()
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO code_changes (id, prompt_id, file_path, original_content, modified_content, change_description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, in.PromptID, in.FilePath, in.OriginalContent, in.ModifiedContent, in.ChangeDescription,
	)
	if err != nil {
		return nil, fmt.Errorf("creating code change: %w", err)
	}
	return q.GetCodeChange(ctx, id)
}

func (q *Queries) GetCodeChange(ctx context.Context, id string) (*models.CodeChange, error) {
	c := &models.CodeChange{}
	var createdAt string
	err := q.db.QueryRowContext(ctx,
		`SELECT id, prompt_id, file_path, original_content, modified_content, change_description, applied, created_at
		 FROM code_changes WHERE id = ?`, id,
	).Scan(&c.ID, &c.PromptID, &c.FilePath, &c.OriginalContent, &c.ModifiedContent,
		&c.ChangeDescription, &c.Applied, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting code change %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting code change: %w", err)
	}
	c.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	return c, nil
}

func (q *Queries) MarkCodeChangeApplied(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `UPDATE code_changes SET applied = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking code change applied: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("marking code change %s applied: %w", id, ErrNotFound)
	}
	return nil
}

// ListCodeChanges returns a prompt's changes in the order they were recorded.
func (q *Queries) ListCodeChanges(ctx context.Context, promptID string) ([]models.CodeChange, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, prompt_id, file_path, original_content, modified_content, change_description, applied, created_at
		 FROM code_changes WHERE prompt_id = ? ORDER BY created_at ASC, rowid ASC`, promptID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing code changes: %w", err)
	}
	defer rows.Close()

	var results []models.CodeChange
	for rows.Next() {
		var c models.CodeChange
		var createdAt string
		if err := rows.Scan(&c.ID, &c.PromptID, &c.FilePath, &c.OriginalContent, &c.ModifiedContent,
			&c.ChangeDescription, &c.Applied, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning code change: %w", err)
		}
		c.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		results = append(results, c)
	}
	return results, rows.Err()
}
