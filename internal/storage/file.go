package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps one JSON array of strings per topic under dir.
type FileStore struct {
	dir string
	now func() time.Time
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

// Path returns the state file for topic.
func (s *FileStore) Path(topic string) string {
	return filepath.Join(s.dir, Key(topic)+".json")
}

func (s *FileStore) Load(_ context.Context, topic string) ([]string, error) {
	path := s.Path(topic)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("No state for topic, creating empty store", "topic", topic, "path", path)
		if err := s.write(path, []string{}); err != nil {
			return nil, fmt.Errorf("failed to create state for topic %s: %w", topic, err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state for topic %s: %w", topic, err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		backup := fmt.Sprintf("%s.%s.bak", path, s.now().UTC().Format("20060102T150405"))
		if werr := os.WriteFile(backup, data, 0o644); werr != nil {
			return nil, fmt.Errorf("failed to back up corrupted state %s: %w", path, werr)
		}
		slog.Warn("Recovered from corrupted state, starting with an empty seen-set",
			"topic", topic, "path", path, "backup", backup, "error", errors.Join(ErrStateCorrupted, err))
		return nil, nil
	}
	return ids, nil
}

func (s *FileStore) Save(_ context.Context, topic string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	if err := s.write(s.Path(topic), ids); err != nil {
		return fmt.Errorf("failed to save state for topic %s: %w", topic, err)
	}
	return nil
}

// write replaces path atomically via a temp file in the same directory.
func (s *FileStore) write(path string, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
