// Package oracle asks an external code-generation model for an edit plan.
//
// The Adapter bounds the context sent to the model, performs exactly one call
// per instruction and turns the reply into a typed Plan (see ParseReply).
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aaveggupta/cli-ai-code-editor/internal/models"

	"go.uber.org/zap"
)

const (
	// DefaultMaxContextFiles is also the hard ceiling on context files.
	DefaultMaxContextFiles = 10
	DefaultTemperature     = 0.7
	DefaultMaxTokens       = 4096
)

// Edit is one proposed whole-file change. OriginalContent is nil for new files.
type Edit struct {
	FilePath        string  `json:"filePath" yaml:"filePath"`
	OriginalContent *string `json:"originalContent" yaml:"originalContent,omitempty"`
	ModifiedContent string  `json:"modifiedContent" yaml:"modifiedContent"`
	Description     string  `json:"description" yaml:"description"`
	IsNewFile       bool    `json:"isNewFile" yaml:"isNewFile"`
}

// Plan is the parsed reply of the model.
type Plan struct {
	Plan  string `json:"plan" yaml:"plan"`
	Edits []Edit `json:"edits" yaml:"edits"`
}

// Request is a single completion call.
type Request struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Client sends one request to a model provider and returns the raw reply text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

const systemPrompt = `You are an expert software engineer assistant. Your task is to analyze a codebase and generate or modify code based on user requirements.

When given a task:
1. First, create a clear plan explaining what changes you'll make
2. Identify which files need to be modified or created
3. Generate the complete modified code for each file
4. Provide clear descriptions of each change

Return your response as a single JSON object in the following format and nothing else:
{
  "plan": "Detailed explanation of what you will do",
  "edits": [
    {
      "filePath": "relative/path/to/file.ts",
      "originalContent": "existing content or null if new file",
      "modifiedContent": "complete new content",
      "description": "what this change does",
      "isNewFile": true
    }
  ]
}

IMPORTANT:
- Always provide the COMPLETE file content in modifiedContent, never a diff or a fragment
- filePath is relative to the repository root
- For new files, set isNewFile to true and originalContent to null
- For existing files, include the original content
- Follow the conventions of the existing codebase`

type Adapter struct {
	client          Client
	logger          *zap.Logger
	maxContextFiles int
	temperature     float32
	maxTokens       int
}

type Option func(*Adapter)

// WithMaxContextFiles lowers the number of files sent to the model. Values
// above DefaultMaxContextFiles are clamped to it; values <= 0 are ignored.
func WithMaxContextFiles(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxContextFiles = min(n, DefaultMaxContextFiles)
		}
	}
}

func WithTemperature(t float32) Option {
	return func(a *Adapter) { a.temperature = t }
}

func WithMaxTokens(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

func NewAdapter(client Client, logger *zap.Logger, opts ...Option) *Adapter {
	a := &Adapter{
		client:          client,
		logger:          logger,
		maxContextFiles: DefaultMaxContextFiles,
		temperature:     DefaultTemperature,
		maxTokens:       DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Propose sends the instruction with a bounded view of the codebase and
// returns the parsed plan. A reply that cannot be parsed yields *ParseError.
func (a *Adapter) Propose(ctx context.Context, instruction string, files []models.FileRecord, tree string) (*Plan, error) {
	user := BuildContext(files, tree, a.maxContextFiles) +
		"\nUser Request: " + instruction +
		"\n\nPlease analyze the codebase and provide your response in the specified JSON format."

	a.logger.Debug("consulting oracle",
		zap.Int("context_files", min(len(files), a.maxContextFiles)),
		zap.Int("omitted_files", max(len(files)-a.maxContextFiles, 0)),
		zap.Int("request_bytes", len(user)))

	raw, err := a.client.Complete(ctx, Request{
		System:      systemPrompt,
		User:        user,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("oracle request failed: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("oracle returned an empty reply")
	}

	plan, err := ParseReply(raw)
	if err != nil {
		a.logger.Warn("unparseable oracle reply", zap.Int("reply_bytes", len(raw)), zap.Error(err))
		return nil, err
	}
	a.logger.Debug("oracle plan parsed", zap.Int("edits", len(plan.Edits)))
	return plan, nil
}

// BuildContext renders the tree and at most maxFiles files as labeled
// sections. Files past the cap are only counted.
func BuildContext(files []models.FileRecord, tree string, maxFiles int) string {
	var b strings.Builder
	b.WriteString("=== CODEBASE STRUCTURE ===\n")
	b.WriteString(tree)
	b.WriteString("\n\n")
	b.WriteString("=== RELEVANT FILES ===\n\n")

	n := min(len(files), maxFiles)
	for _, f := range files[:n] {
		fmt.Fprintf(&b, "--- %s ---\n", f.RelativePath)
		b.WriteString(f.Content)
		b.WriteString("\n\n")
	}
	if len(files) > maxFiles {
		fmt.Fprintf(&b, "... and %d more files\n", len(files)-maxFiles)
	}
	return b.String()
}
