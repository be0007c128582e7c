package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Persistence stores the complete history. Save always receives the whole sequence.
type Persistence interface {
	Load() ([]DialogueEntry, error)
	Save(entries []DialogueEntry) error
}

// StorageError reports persisted history that could not be read or written.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("history %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// JSONFile keeps the history as an indented JSON array of {speaker, text, type} objects.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (f *JSONFile) Path() string {
	return f.path
}

func (f *JSONFile) Load() ([]DialogueEntry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []DialogueEntry{}, nil
		}
		return nil, &StorageError{Op: "read", Path: f.path, Err: err}
	}

	var entries []DialogueEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &StorageError{Op: "parse", Path: f.path, Err: err}
	}
	for i, entry := range entries {
		if entry.Kind != KindDialogue && entry.Kind != KindNarration {
			return nil, &StorageError{Op: "parse", Path: f.path, Err: fmt.Errorf("entry %d has unknown type %q", i, entry.Kind)}
		}
	}

	return entries, nil
}

func (f *JSONFile) Save(entries []DialogueEntry) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return &StorageError{Op: "encode", Path: f.path, Err: err}
	}

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &StorageError{Op: "write", Path: f.path, Err: err}
		}
	}
	if err := os.WriteFile(f.path, buf.Bytes(), 0644); err != nil {
		return &StorageError{Op: "write", Path: f.path, Err: err}
	}
	return nil
}
