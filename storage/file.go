package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mirren/emberfall/engine/save"
)

// FileStore keeps one pretty-printed JSON document per slot under a
// save directory.
type FileStore struct {
	dir string
	log *zap.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the save directory if it does not exist.
func NewFileStore(dir string, log *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating save directory: %w", err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

func (s *FileStore) path(slot string) string {
	return filepath.Join(s.dir, slot+".json")
}

func (s *FileStore) Save(ctx context.Context, slot string, doc *save.Document) error {
	data, err := save.Encode(doc)
	if err != nil {
		return fmt.Errorf("encoding save %q: %w", slot, err)
	}
	if err := os.WriteFile(s.path(slot), data, 0o644); err != nil {
		return fmt.Errorf("writing save %q: %w", slot, err)
	}
	s.log.Debug("save written", zap.String("slot", slot), zap.Int("bytes", len(data)))
	return nil
}

func (s *FileStore) Load(ctx context.Context, slot string) (*save.Document, error) {
	data, err := os.ReadFile(s.path(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading save %q: %w", slot, err)
	}
	doc, err := save.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding save %q: %w", slot, err)
	}
	return doc, nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	var slots []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		slots = append(slots, strings.TrimSuffix(e.Name(), ".json"))
	}
	return slots, nil
}

func (s *FileStore) Delete(ctx context.Context, slot string) error {
	if err := os.Remove(s.path(slot)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting save %q: %w", slot, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
