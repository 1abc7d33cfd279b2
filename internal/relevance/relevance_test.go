package relevance

import (
	"testing"

	"github.com/aaveggupta/cli-ai-code-editor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		name        string
		instruction string
		want        []string
	}{
		{"drops short and stop words", "Fix the login bug with this form", []string{"login", "form"}},
		{"dedupes case-insensitively", "Login LOGIN login page", []string{"login", "page"}},
		{"splits on any whitespace", "add\tretry\nlogic  here", []string{"retry", "logic", "here"}},
		{"all short words", "fix a bug in it", nil},
		{"empty", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Keywords(tt.instruction))
		})
	}
}

func TestSelectLoginScenario(t *testing.T) {
	corpus := []models.FileRecord{
		{RelativePath: "auth/login.ts", Content: "export function login() {}"},
		{RelativePath: "readme.md", Content: "# project"},
	}

	got := Select(corpus, "fix the login bug")
	require.Len(t, got, 1)
	assert.Equal(t, "auth/login.ts", got[0].RelativePath)
}

func TestSelectMatchesPathOrContent(t *testing.T) {
	corpus := []models.FileRecord{
		{RelativePath: "a.go", Content: "func Checkout() {}"},
		{RelativePath: "payments/b.go", Content: "package payments"},
		{RelativePath: "c.go", Content: "nothing here"},
		{RelativePath: "d.go", Content: "// PAYMENTS helper"},
	}

	got := Select(corpus, "refactor payments checkout")
	var paths []string
	for _, f := range got {
		paths = append(paths, f.RelativePath)
	}
	assert.Equal(t, []string{"a.go", "payments/b.go", "d.go"}, paths)
}

func TestSelectIsIdempotent(t *testing.T) {
	corpus := []models.FileRecord{
		{RelativePath: "x/router.go", Content: "routes"},
		{RelativePath: "y.go", Content: "server router"},
		{RelativePath: "z.go", Content: "unrelated"},
	}

	first := Select(corpus, "update router")
	second := Select(corpus, "update router")
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestSelectNoKeywords(t *testing.T) {
	corpus := []models.FileRecord{{RelativePath: "fix.go", Content: "fix the bug"}}
	assert.Empty(t, Select(corpus, "fix the bug"))
}
