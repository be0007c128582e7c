// Package persistence provides a SQLite history backend for the story log.
package persistence

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"storysim/internal/game"
)

// SQLiteHistory stores the history as one row per entry, ordered by seq.
// It satisfies game.Persistence.
type SQLiteHistory struct {
	conn *sqlx.DB
	path string
}

type entryRow struct {
	Seq     int    `db:"seq"`
	Speaker string `db:"speaker"`
	Text    string `db:"text"`
	Type    string `db:"type"`
}

// OpenSQLiteHistory opens or creates the database at path.
func OpenSQLiteHistory(path string) (*SQLiteHistory, error) {
	conn, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, &game.StorageError{Op: "open", Path: path, Err: err}
	}

	h := &SQLiteHistory{conn: conn, path: path}
	if err := h.migrate(); err != nil {
		conn.Close()
		return nil, &game.StorageError{Op: "migrate", Path: path, Err: err}
	}
	return h, nil
}

func (h *SQLiteHistory) Close() error {
	return h.conn.Close()
}

func (h *SQLiteHistory) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history_entries (
		seq INTEGER PRIMARY KEY,
		speaker TEXT NOT NULL,
		text TEXT NOT NULL,
		type TEXT NOT NULL
	);
	`
	_, err := h.conn.Exec(schema)
	return err
}

// Load returns every entry in insertion order. A fresh database is an empty history.
func (h *SQLiteHistory) Load() ([]game.DialogueEntry, error) {
	var rows []entryRow
	if err := h.conn.Select(&rows, "SELECT seq, speaker, text, type FROM history_entries ORDER BY seq"); err != nil {
		return nil, &game.StorageError{Op: "read", Path: h.path, Err: err}
	}

	entries := make([]game.DialogueEntry, 0, len(rows))
	for _, r := range rows {
		kind := game.Kind(r.Type)
		if kind != game.KindDialogue && kind != game.KindNarration {
			return nil, &game.StorageError{Op: "parse", Path: h.path, Err: fmt.Errorf("entry %d has unknown type %q", r.Seq, r.Type)}
		}
		entries = append(entries, game.DialogueEntry{Speaker: r.Speaker, Text: r.Text, Kind: kind})
	}
	return entries, nil
}

// Save replaces the stored history with entries in a single transaction.
func (h *SQLiteHistory) Save(entries []game.DialogueEntry) error {
	if err := h.save(entries); err != nil {
		return &game.StorageError{Op: "write", Path: h.path, Err: err}
	}
	return nil
}

func (h *SQLiteHistory) save(entries []game.DialogueEntry) error {
	tx, err := h.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM history_entries"); err != nil {
		return err
	}

	stmt, err := tx.Preparex("INSERT INTO history_entries (seq, speaker, text, type) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.Exec(i, e.Speaker, e.Text, string(e.Kind)); err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
	}

	return tx.Commit()
}
