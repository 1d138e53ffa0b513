package cursor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Cursor kept as plain text in a file
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (store *FileStore) Load(ctx context.Context) (int64, error) {

	data, err := os.ReadFile(store.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("could not read cursor file %s: %w", store.path, err)
	}

	// Only the first line matters
	line, _, _ := strings.Cut(string(data), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cursor file %s does not hold an integer: %w", store.path, err)
	}
	return value, nil
}

// Save through a temporary file so that a crash never leaves half a number behind
func (store *FileStore) Save(ctx context.Context, value int64) error {

	tmp, err := os.CreateTemp(filepath.Dir(store.path), filepath.Base(store.path)+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary cursor file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.FormatInt(value, 10)); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write cursor: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not write cursor: %w", err)
	}
	if err := os.Rename(tmp.Name(), store.path); err != nil {
		return fmt.Errorf("could not replace cursor file %s: %w", store.path, err)
	}
	return nil
}
