// Package repo resolves the target source tree an instruction runs against.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotDirectory is returned when the target path exists but is a file.
var ErrNotDirectory = errors.New("not a directory")

// Resolve expands a leading ~, makes path absolute and checks that it names an
// existing directory on fs.
func Resolve(fs afero.Fs, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("invalid repository path: empty")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving repository path: %w", err)
	}
	info, err := fs.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("checking repository %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("repository %s: %w", abs, ErrNotDirectory)
	}
	return abs, nil
}
