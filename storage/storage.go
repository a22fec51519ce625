// Package storage persists save documents keyed by slot name.
package storage

import (
	"context"
	"errors"

	"github.com/mirren/emberfall/engine/save"
)

// ErrNotFound reports that a save slot does not exist.
var ErrNotFound = errors.New("save slot not found")

// Store is a save-slot backend. Implementations own their underlying
// resources and release them on Close.
type Store interface {
	Save(ctx context.Context, slot string, doc *save.Document) error
	Load(ctx context.Context, slot string) (*save.Document, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, slot string) error
	Close() error
}
