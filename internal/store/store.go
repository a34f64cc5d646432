// Package store provides the key/value storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/course-selector/internal/model"
)

// ErrNotFound is returned when no live entry exists for a namespace/key.
var ErrNotFound = errors.New("entry not found")

// PutParams holds parameters for storing a value.
type PutParams struct {
	NS    string
	Key   string
	Value string
	TTL   string // e.g. "24h", "7d"; empty means no expiry
}

// GetParams holds parameters for retrieving a value.
type GetParams struct {
	NS      string
	Key     string
	History bool
	Version int // 0 means latest
}

// ListParams holds parameters for listing entries.
type ListParams struct {
	NS     string
	Prefix string
	Limit  int
}

// RmParams holds parameters for deleting an entry.
type RmParams struct {
	NS          string
	Key         string
	AllVersions bool
	Hard        bool
}

// Store defines the key/value storage interface.
type Store interface {
	// Put stores a new version of a key. Returns the created entry.
	Put(ctx context.Context, p PutParams) (*model.Entry, error)

	// Get retrieves an entry by namespace and key.
	// Returns a slice (single element normally, multiple with History=true).
	Get(ctx context.Context, p GetParams) ([]model.Entry, error)

	// List lists the latest version of each key matching the given filters.
	List(ctx context.Context, p ListParams) ([]model.Entry, error)

	// Rm soft-deletes (or hard-deletes) an entry.
	Rm(ctx context.Context, p RmParams) error

	// Close closes the store.
	Close() error
}
