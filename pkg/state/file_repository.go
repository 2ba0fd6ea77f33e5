package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
)

const sessionFileName = "session.json"

// FileRepository implements Repository using a JSON file.
type FileRepository struct {
	dir string
}

// NewFileRepository creates a FileRepository for the given directory.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Load returns an empty session and nil error if no file exists.
func (r *FileRepository) Load(ctx context.Context) (Session, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, nil
		}
		return Session{}, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Save writes to a temporary file and renames it over the previous one.
func (r *FileRepository) Save(ctx context.Context, s Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, r.Path())
}

// Path returns the full path to the session file.
func (r *FileRepository) Path() string {
	return filepath.Join(r.dir, sessionFileName)
}

var _ Repository = (*FileRepository)(nil)
