package store

import (
	"context"

	"github.com/yangwenmai/leetreview/internal/model"
)

// Snapshot is the decoded collection document together with the version it
// was read at. Version 0 means the document has never been written.
type Snapshot struct {
	Items   []model.Item
	Version int64
}

// DocumentReader provides read access to the collection document.
type DocumentReader interface {
	Load(ctx context.Context) (Snapshot, error)
}

// DocumentWriter replaces the collection document as a whole.
// version is the version the caller last read; a stale version fails with
// ErrVersionConflict. The new version is returned on success.
type DocumentWriter interface {
	Save(ctx context.Context, items []model.Item, version int64) (int64, error)
}

// DocumentStore combines both sides for the tracker.
type DocumentStore interface {
	DocumentReader
	DocumentWriter
}
