package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aaveggupta/cli-ai-code-editor/internal/paths"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS prompts (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL,
    prompt      TEXT NOT NULL,
    target_repo TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'processing', 'completed', 'failed')),
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS code_changes (
    id                 TEXT PRIMARY KEY,
    prompt_id          TEXT NOT NULL REFERENCES prompts(id) ON DELETE CASCADE,
    file_path          TEXT NOT NULL,
    original_content   TEXT,
    modified_content   TEXT,
    change_description TEXT,
    applied            INTEGER NOT NULL DEFAULT 0,
    created_at         TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_prompts_user ON prompts(user_id);
CREATE INDEX IF NOT EXISTS idx_prompts_status ON prompts(status);
CREATE INDEX IF NOT EXISTS idx_code_changes_prompt ON code_changes(prompt_id);
`

// DBPath returns the default database location inside the data directory,
// creating the directory when missing.
func DBPath() (string, error) {
	dir, err := paths.DataDir()
	if err != nil {
		return "", fmt.Errorf("getting data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return filepath.Join(dir, "cli-editor.db"), nil
}

func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running schema migration: %w", err)
	}
	return db, nil
}
