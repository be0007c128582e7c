package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"storysim/internal/game/actors"
	"storysim/internal/observability"
)

type CompletionLog struct {
	ID        int       `db:"id" json:"id"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	RunID     string    `db:"run_id" json:"run_id"`
	Speaker   string    `db:"speaker" json:"speaker"`
	Cue       string    `db:"cue" json:"cue"`
	Prompt    string    `db:"prompt" json:"prompt"`
	Raw       string    `db:"raw" json:"raw"`
	Cleaned   string    `db:"cleaned" json:"cleaned"`
	Metadata  string    `db:"metadata" json:"metadata"`
	Rating    int       `db:"rating" json:"rating"`
	Notes     string    `db:"notes" json:"notes"`
}

// CompletionLogger keeps an audit trail of every generated line so runs can be
// reviewed and rated afterwards.
type CompletionLogger struct {
	db *sqlx.DB
}

func NewCompletionLogger(path string) (*CompletionLogger, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger := &CompletionLogger{db: db}
	if err := logger.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return logger, nil
}

func (cl *CompletionLogger) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS completions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		run_id TEXT NOT NULL DEFAULT '',
		speaker TEXT NOT NULL,
		cue TEXT NOT NULL,
		prompt TEXT NOT NULL,
		raw TEXT NOT NULL,
		cleaned TEXT NOT NULL,
		metadata TEXT NOT NULL,
		rating INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_completions_timestamp ON completions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_completions_run ON completions(run_id);
	`

	_, err := cl.db.Exec(schema)
	return err
}

func (cl *CompletionLogger) LogCompletion(runID string, gen actors.Generation) (int64, error) {
	metadataJSON, err := json.Marshal(gen.Metadata)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	res, err := cl.db.Exec(`
		INSERT INTO completions (run_id, speaker, cue, prompt, raw, cleaned, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, gen.Speaker, gen.Cue, gen.Prompt, gen.Raw, gen.Cleaned, string(metadataJSON))
	if err != nil {
		return 0, fmt.Errorf("failed to insert completion: %w", err)
	}
	return res.LastInsertId()
}

// Record implements actors.Recorder, tagging the row with the run id carried by ctx.
func (cl *CompletionLogger) Record(ctx context.Context, gen actors.Generation) error {
	_, err := cl.LogCompletion(observability.GetSessionIDFromContext(ctx), gen)
	return err
}

// GetRecentCompletions returns the newest completions first.
func (cl *CompletionLogger) GetRecentCompletions(limit int) ([]CompletionLog, error) {
	var logs []CompletionLog
	err := cl.db.Select(&logs, `
		SELECT id, timestamp, run_id, speaker, cue, prompt, raw, cleaned, metadata, rating, notes
		FROM completions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	return logs, nil
}

// RateCompletion stores a reviewer score (1-5) and free-form notes.
func (cl *CompletionLogger) RateCompletion(id int, rating int, notes string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}

	res, err := cl.db.Exec("UPDATE completions SET rating = ?, notes = ? WHERE id = ?", rating, notes, id)
	if err != nil {
		return fmt.Errorf("failed to rate completion %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("completion %d not found", id)
	}
	return nil
}

func (cl *CompletionLogger) Close() error {
	return cl.db.Close()
}
