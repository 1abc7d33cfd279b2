package models

import "time"

// Prompt statuses. A prompt moves pending -> processing -> completed|failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Prompt struct {
	ID         string    `json:"id" yaml:"id"`
	UserID     string    `json:"userId" yaml:"userId"`
	Prompt     string    `json:"prompt" yaml:"prompt"`
	TargetRepo string    `json:"targetRepo" yaml:"targetRepo"`
	Status     string    `json:"status" yaml:"status"` // "pending", "processing", "completed", "failed"
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" yaml:"updatedAt"`
}

type CodeChange struct {
	ID                string    `json:"id" yaml:"id"`
	PromptID          string    `json:"promptId" yaml:"promptId"`
	FilePath          string    `json:"filePath" yaml:"filePath"`
	OriginalContent   *string   `json:"originalContent,omitempty" yaml:"originalContent,omitempty"`
	ModifiedContent   *string   `json:"modifiedContent,omitempty" yaml:"modifiedContent,omitempty"`
	ChangeDescription *string   `json:"description,omitempty" yaml:"description,omitempty"`
	Applied           bool      `json:"applied" yaml:"applied"`
	CreatedAt         time.Time `json:"createdAt" yaml:"createdAt"`
}

// FileRecord is one scanned text file. It only lives for a single run.
type FileRecord struct {
	Path         string
	RelativePath string
	Content      string
	Extension    string
	Size         int64
}
