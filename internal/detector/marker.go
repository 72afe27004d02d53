package detector

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileMarker creates an empty file that a deploy/commit job watches for.
type FileMarker struct {
	path string
}

func NewFileMarker(path string) *FileMarker {
	return &FileMarker{path: path}
}

func (m *FileMarker) Mark() error {
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create marker directory: %w", err)
		}
	}
	if err := os.WriteFile(m.path, nil, 0o644); err != nil {
		return fmt.Errorf("write marker %s: %w", m.path, err)
	}
	return nil
}
