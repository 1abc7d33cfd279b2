// Package scanner reads a source tree into an in-memory corpus of text files
// and renders the filtered tree as a connector-drawn listing.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aaveggupta/cli-ai-code-editor/internal/models"

	"github.com/spf13/afero"
)

// DefaultMaxDepth bounds how many directory levels below the root are walked.
const DefaultMaxDepth = 256

// ErrTooDeep is returned when the tree nests deeper than the configured limit.
var ErrTooDeep = errors.New("directory tree exceeds maximum depth")

var ignoredDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	".next":        true,
	".cache":       true,
	"tmp":          true,
	"temp":         true,
}

var ignoredFiles = map[string]bool{
	".DS_Store":         true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
}

var codeExtensions = map[string]bool{
	".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".py": true, ".java": true, ".go": true, ".rs": true,
	".c": true, ".cpp": true, ".h": true, ".hpp": true,
	".css": true, ".scss": true, ".html": true, ".json": true,
	".md": true, ".yaml": true, ".yml": true, ".sql": true,
}

// Result is the outcome of a full scan.
type Result struct {
	Files     []models.FileRecord
	Tree      string
	TotalSize int64
}

type Scanner struct {
	fs       afero.Fs
	maxDepth int
}

type Option func(*Scanner)

// WithMaxDepth overrides DefaultMaxDepth. Values <= 0 are ignored.
func WithMaxDepth(depth int) Option {
	return func(s *Scanner) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

func New(fs afero.Fs, opts ...Option) *Scanner {
	s := &Scanner{fs: fs, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks root and returns every allow-listed text file plus the tree
// rendering. Any read error aborts the whole scan.
func (s *Scanner) Scan(root string) (*Result, error) {
	files, err := s.collect(root)
	if err != nil {
		return nil, err
	}
	tree, err := s.render(root)
	if err != nil {
		return nil, err
	}

	res := &Result{Files: files, Tree: tree}
	for _, f := range files {
		res.TotalSize += f.Size
	}
	return res, nil
}

// frame is one directory on the explicit walk stack. next indexes the entry
// to visit when the frame is on top again.
type frame struct {
	path    string
	entries []os.FileInfo
	next    int
	depth   int
	prefix  string
}

func (s *Scanner) open(path string, depth int, prefix string) (*frame, error) {
	if depth > s.maxDepth {
		return nil, fmt.Errorf("%s: %w (%d)", path, ErrTooDeep, s.maxDepth)
	}
	entries, err := afero.ReadDir(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", path, err)
	}
	return &frame{path: path, entries: entries, depth: depth, prefix: prefix}, nil
}

// collect does a depth-first pre-order walk in directory-read order. Ignored
// directories are skipped before they are opened.
func (s *Scanner) collect(root string) ([]models.FileRecord, error) {
	top, err := s.open(root, 0, "")
	if err != nil {
		return nil, err
	}
	stack := []*frame{top}
	var files []models.FileRecord

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		if cur.next >= len(cur.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		entry := cur.entries[cur.next]
		cur.next++

		name := entry.Name()
		full := filepath.Join(cur.path, name)

		if entry.IsDir() {
			if ignoredDirs[name] {
				continue
			}
			child, err := s.open(full, cur.depth+1, "")
			if err != nil {
				return nil, err
			}
			stack = append(stack, child)
			continue
		}
		if !entry.Mode().IsRegular() || ignoredFiles[name] {
			continue
		}
		ext := filepath.Ext(name)
		if !codeExtensions[ext] {
			continue
		}
		rec, err := s.read(root, full)
		if err != nil {
			return nil, err
		}
		files = append(files, rec)
	}
	return files, nil
}

func (s *Scanner) read(root, path string) (models.FileRecord, error) {
	content, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return models.FileRecord{}, fmt.Errorf("reading file %s: %w", path, err)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return models.FileRecord{}, fmt.Errorf("relativizing %s: %w", path, err)
	}
	return models.FileRecord{
		Path:         path,
		RelativePath: rel,
		Content:      string(content),
		Extension:    filepath.Ext(path),
		Size:         int64(len(content)),
	}, nil
}
