package apply

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aaveggupta/cli-ai-code-editor/internal/oracle"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestApplyCreatesParentDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/repo/main.go", []byte("old"), 0o644))

	items := []Item{
		{ChangeID: "c1", Edit: oracle.Edit{FilePath: "main.go", ModifiedContent: "new"}},
		{ChangeID: "c2", Edit: oracle.Edit{FilePath: "internal/deep/util.go", ModifiedContent: "package deep", IsNewFile: true}},
	}
	var confirmed []string
	out := New(fs, zap.NewNop()).Apply("/repo", items, func(it Item) error {
		confirmed = append(confirmed, it.ChangeID)
		return nil
	})

	assert.Equal(t, 2, out.Applied)
	assert.Empty(t, out.Errors)
	assert.Equal(t, []string{"c1", "c2"}, confirmed)

	got, err := afero.ReadFile(fs, "/repo/main.go")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	got, err = afero.ReadFile(fs, "/repo/internal/deep/util.go")
	require.NoError(t, err)
	assert.Equal(t, "package deep", string(got))
}

func TestApplyIsolatesFailures(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "taken"), 0o755))

	items := []Item{
		{ChangeID: "c1", Edit: oracle.Edit{FilePath: "taken", ModifiedContent: "collides with a directory"}},
		{ChangeID: "c2", Edit: oracle.Edit{FilePath: "ok.txt", ModifiedContent: "fine"}},
	}
	var confirmed []string
	out := New(afero.NewOsFs(), zap.NewNop()).Apply(root, items, func(it Item) error {
		confirmed = append(confirmed, it.ChangeID)
		return nil
	})

	assert.Equal(t, 1, out.Applied)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "taken: ")
	assert.Equal(t, []string{"c2"}, confirmed)
	assert.Equal(t, out.Applied+len(out.Errors), len(items))

	got, err := os.ReadFile(filepath.Join(root, "ok.txt"))
	require.NoError(t, err)
	assert.Equal(t, "fine", string(got))
}

func TestApplyReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	items := []Item{
		{Edit: oracle.Edit{FilePath: "a.go", ModifiedContent: "a"}},
		{Edit: oracle.Edit{FilePath: "b/c.go", ModifiedContent: "c"}},
	}

	out := New(fs, zap.NewNop()).Apply("/repo", items, nil)
	assert.Equal(t, 0, out.Applied)
	assert.Len(t, out.Errors, 2)
	assert.Contains(t, out.Errors[0], "a.go: ")
	assert.Contains(t, out.Errors[1], "b/c.go: ")
}

func TestApplyConfirmationFailureIsNotCounted(t *testing.T) {
	fs := afero.NewMemMapFs()
	items := []Item{{ChangeID: "c1", Edit: oracle.Edit{FilePath: "a.go", ModifiedContent: "a"}}}

	out := New(fs, zap.NewNop()).Apply("/repo", items, func(Item) error {
		return errors.New("database is locked")
	})
	assert.Equal(t, 0, out.Applied)
	assert.Equal(t, []string{"a.go: database is locked"}, out.Errors)
}

func TestApplyIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	items := []Item{{Edit: oracle.Edit{FilePath: "a.go", ModifiedContent: "same"}}}
	a := New(fs, zap.NewNop())

	for range 2 {
		out := a.Apply("/repo", items, nil)
		assert.Equal(t, 1, out.Applied)
	}
	got, err := afero.ReadFile(fs, "/repo/a.go")
	require.NoError(t, err)
	assert.Equal(t, "same", string(got))
}
