// Package apply writes proposed edits to disk, one file at a time. A failed
// file is reported and skipped; it never stops the rest of the batch.
package apply

import (
	"fmt"
	"path/filepath"

	"github.com/aaveggupta/cli-ai-code-editor/internal/oracle"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Item pairs an edit with the journal record written for it.
type Item struct {
	ChangeID string
	Edit     oracle.Edit
}

// Outcome summarizes a batch. Applied + len(Errors) equals the batch size.
type Outcome struct {
	Applied int
	Errors  []string
}

type Applier struct {
	fs     afero.Fs
	logger *zap.Logger
}

func New(fs afero.Fs, logger *zap.Logger) *Applier {
	return &Applier{fs: fs, logger: logger}
}

// Apply writes each item's full content below root, in order. onApplied runs
// after every successful write; an error from it counts as a failure of that
// item. onApplied may be nil.
func (a *Applier) Apply(root string, items []Item, onApplied func(Item) error) Outcome {
	var out Outcome
	for i, item := range items {
		verb := "Modified"
		if item.Edit.IsNewFile {
			verb = "Created"
		}
		log := a.logger.With(
			zap.Int("step", i+1),
			zap.Int("total", len(items)),
			zap.String("file", item.Edit.FilePath))

		if err := a.write(filepath.Join(root, item.Edit.FilePath), item.Edit.ModifiedContent); err != nil {
			log.Error("apply failed", zap.Error(err))
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", item.Edit.FilePath, err))
			continue
		}
		if onApplied != nil {
			if err := onApplied(item); err != nil {
				log.Error("written but not confirmed", zap.Error(err))
				out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", item.Edit.FilePath, err))
				continue
			}
		}
		log.Info(verb + " file")
		out.Applied++
	}
	return out
}

func (a *Applier) write(path, content string) error {
	if err := a.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(a.fs, path, []byte(content), 0o644)
}
