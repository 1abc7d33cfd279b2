package oracle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReplyDirect(t *testing.T) {
	raw := `{
	  "plan": "Add a greeting",
	  "edits": [
	    {"filePath": "src/hello.ts", "originalContent": null, "modifiedContent": "export const hi = 1;\n", "description": "new file", "isNewFile": true},
	    {"filePath": "README.md", "originalContent": "# old", "modifiedContent": "# new", "description": "docs", "isNewFile": false}
	  ]
	}`

	plan, err := ParseReply(raw)
	require.NoError(t, err)
	assert.Equal(t, "Add a greeting", plan.Plan)
	require.Len(t, plan.Edits, 2)

	assert.Equal(t, "src/hello.ts", plan.Edits[0].FilePath)
	assert.Nil(t, plan.Edits[0].OriginalContent)
	assert.True(t, plan.Edits[0].IsNewFile)

	require.NotNil(t, plan.Edits[1].OriginalContent)
	assert.Equal(t, "# old", *plan.Edits[1].OriginalContent)
	assert.Equal(t, "# new", plan.Edits[1].ModifiedContent)
	assert.False(t, plan.Edits[1].IsNewFile)
}

func TestParseReplyEmbedded(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "json fence",
			raw:  "Here you go:\n```json\n{\"plan\": \"p\", \"edits\": [{\"filePath\": \"a.go\", \"modifiedContent\": \"x\"}]}\n```\nDone.",
		},
		{
			name: "bare fence",
			raw:  "```\n{\"plan\": \"p\", \"edits\": [{\"filePath\": \"a.go\", \"modifiedContent\": \"x\"}]}\n```",
		},
		{
			name: "brace span",
			raw:  "Sure! {\"plan\": \"p\", \"edits\": [{\"filePath\": \"a.go\", \"modifiedContent\": \"x\"}]} Let me know.",
		},
		{
			name: "fence with bad json falls back to brace span",
			raw:  "```\nnot json\n```\n{\"plan\": \"p\", \"edits\": [{\"filePath\": \"a.go\", \"modifiedContent\": \"x\"}]}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ParseReply(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, "p", plan.Plan)
			require.Len(t, plan.Edits, 1)
			assert.Equal(t, "a.go", plan.Edits[0].FilePath)
		})
	}
}

func TestParseReplyDefaultsMissingFields(t *testing.T) {
	plan, err := ParseReply(`{"edits": [{"filePath": "a.go", "modifiedContent": "x"}]}`)
	require.NoError(t, err)
	assert.Equal(t, "", plan.Plan)
	assert.Len(t, plan.Edits, 1)

	plan, err = ParseReply(`{"plan": "nothing to do"}`)
	require.NoError(t, err)
	assert.Equal(t, "nothing to do", plan.Plan)
	assert.NotNil(t, plan.Edits)
	assert.Empty(t, plan.Edits)
}

func TestParseReplyAcceptsModificationsAlias(t *testing.T) {
	plan, err := ParseReply(`{"plan": "p", "modifications": [{"filePath": "b.go", "modifiedContent": "y"}]}`)
	require.NoError(t, err)
	require.Len(t, plan.Edits, 1)
	assert.Equal(t, "b.go", plan.Edits[0].FilePath)
}

func TestParseReplyFailure(t *testing.T) {
	for _, raw := range []string{
		"I could not figure out what to change, sorry.",
		"null",
		`["not", "an", "object"]`,
		"{ broken json",
	} {
		t.Run(raw, func(t *testing.T) {
			plan, err := ParseReply(raw)
			require.Error(t, err)
			assert.Nil(t, plan)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, raw, perr.Raw)
			assert.Contains(t, err.Error(), "failed to parse oracle response")
		})
	}
}
