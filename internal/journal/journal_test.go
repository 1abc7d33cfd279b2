package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aaveggupta/cli-ai-code-editor/internal/db"
	"github.com/aaveggupta/cli-ai-code-editor/internal/oracle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openQueries(t *testing.T) *db.Queries {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewQueries(database)
}

func strPtr(s string) *string { return &s }

func TestRecordIsWriteAhead(t *testing.T) {
	ctx := context.Background()
	q := openQueries(t)
	p, err := q.CreatePrompt(ctx, "user-1", "add a file", "/repo")
	require.NoError(t, err)

	j := New(q, zap.NewNop())
	edits := []oracle.Edit{
		{FilePath: "new.go", ModifiedContent: "package x\n", Description: "create", IsNewFile: true},
		{FilePath: "old.go", OriginalContent: strPtr("before"), ModifiedContent: "after"},
		{FilePath: "empty.go", OriginalContent: strPtr("text"), ModifiedContent: ""},
	}
	for _, e := range edits {
		c, err := j.Record(ctx, p.ID, e)
		require.NoError(t, err)
		assert.False(t, c.Applied)
		assert.NotEmpty(t, c.ID)
	}

	changes, err := j.ListByRequest(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, changes, 3)

	assert.Equal(t, "new.go", changes[0].FilePath)
	assert.Nil(t, changes[0].OriginalContent)
	require.NotNil(t, changes[0].ChangeDescription)
	assert.Equal(t, "create", *changes[0].ChangeDescription)

	assert.Equal(t, "old.go", changes[1].FilePath)
	assert.Equal(t, "before", *changes[1].OriginalContent)
	assert.Equal(t, "after", *changes[1].ModifiedContent)
	assert.Nil(t, changes[1].ChangeDescription)

	require.NotNil(t, changes[2].ModifiedContent)
	assert.Equal(t, "", *changes[2].ModifiedContent)

	for _, c := range changes {
		assert.False(t, c.Applied)
		assert.Equal(t, p.ID, c.PromptID)
	}
}

func TestMarkAppliedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	q := openQueries(t)
	p, err := q.CreatePrompt(ctx, "user-1", "x", "/repo")
	require.NoError(t, err)

	j := New(q, zap.NewNop())
	a, err := j.Record(ctx, p.ID, oracle.Edit{FilePath: "a.go", ModifiedContent: "a"})
	require.NoError(t, err)
	b, err := j.Record(ctx, p.ID, oracle.Edit{FilePath: "b.go", ModifiedContent: "b"})
	require.NoError(t, err)

	require.NoError(t, j.MarkApplied(ctx, a.ID))
	require.NoError(t, j.MarkApplied(ctx, a.ID))

	changes, err := j.ListByRequest(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, a.ID, changes[0].ID)
	assert.True(t, changes[0].Applied)
	assert.Equal(t, b.ID, changes[1].ID)
	assert.False(t, changes[1].Applied)
}

func TestMarkAppliedUnknownChange(t *testing.T) {
	err := New(openQueries(t), zap.NewNop()).MarkApplied(context.Background(), "missing")
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestRecordRequiresExistingRequest(t *testing.T) {
	_, err := New(openQueries(t), zap.NewNop()).Record(context.Background(), "no-such-prompt",
		oracle.Edit{FilePath: "a.go", ModifiedContent: "a"})
	require.Error(t, err)
}
