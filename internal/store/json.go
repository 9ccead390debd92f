package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// JSONFile stores the state as the players document in a single file.
type JSONFile struct {
	path string
}

// NewJSONFile returns a repository backed by the file at path.
// The file is created on the first save.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the backing file path.
func (f *JSONFile) Path() string {
	return f.path
}

// Load reads the document. A missing file yields an empty state.
// Implements engine.Repository.
func (f *JSONFile) Load(_ context.Context) (*ir.State, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return ir.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	st := ir.NewState()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return st, nil
}

// Save writes the document to a temporary file and renames it over the
// previous one, so a crash never leaves a partial document behind.
// Implements engine.Repository.
func (f *JSONFile) Save(_ context.Context, st *ir.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("indent state: %w", err)
	}
	buf.WriteByte('\n')

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

// Close implements Repository. A JSONFile holds no open resources.
func (f *JSONFile) Close() error {
	return nil
}

// Repository is an engine repository that may hold resources.
type Repository interface {
	Load(ctx context.Context) (*ir.State, error)
	Save(ctx context.Context, st *ir.State) error
	Close() error
}

// Backend names accepted by OpenBackend.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// OpenBackend opens the named repository backend at path.
func OpenBackend(backend, path string) (Repository, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONFile(path), nil
	case BackendSQLite:
		s, err := Open(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown state backend %q (want %s or %s)", backend, BackendJSON, BackendSQLite)
	}
}
