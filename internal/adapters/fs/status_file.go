// Package fs persists service status on the local file system.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bft-labs/shiplog/internal/domain"
)

// StatusFileName is the name of the status file inside the state directory.
const StatusFileName = "status.json"

// StatusFile implements ports.StatusRepository with a JSON file written
// atomically.
type StatusFile struct {
	dir string
}

// NewStatusFile returns a repository storing status.json in dir.
func NewStatusFile(dir string) *StatusFile {
	return &StatusFile{dir: dir}
}

// Load reads the saved status. A missing file yields an empty status.
func (r *StatusFile) Load(ctx context.Context) (domain.Status, error) {
	data, err := os.ReadFile(r.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Status{}, nil
	}
	if err != nil {
		return domain.Status{}, fmt.Errorf("read status: %w", err)
	}

	var st domain.Status
	if err := json.Unmarshal(data, &st); err != nil {
		return domain.Status{}, fmt.Errorf("decode %s: %w", r.Path(), err)
	}
	return st, nil
}

// Save writes the status to a temporary file and renames it into place.
func (r *StatusFile) Save(ctx context.Context, st domain.Status) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, StatusFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp status: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp status: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp status: %w", err)
	}
	return os.Rename(tmp.Name(), r.Path())
}

// Path returns the full path of the status file.
func (r *StatusFile) Path() string {
	return filepath.Join(r.dir, StatusFileName)
}
