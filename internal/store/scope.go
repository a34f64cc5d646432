package store

import (
	"context"
	"errors"

	"github.com/rcliao/course-selector/internal/model"
)

// Scoped exposes a single namespace of a Store as flat string key/value
// storage. Every client (browser profile, CLI user) gets its own namespace.
type Scoped struct {
	s  Store
	ns string
}

// Scope binds s to namespace ns.
func Scope(s Store, ns string) *Scoped {
	return &Scoped{s: s, ns: ns}
}

// NS returns the bound namespace.
func (c *Scoped) NS() string {
	return c.ns
}

// Get returns the latest value for key. A missing key is reported as
// ok=false with a nil error.
func (c *Scoped) Get(ctx context.Context, key string) (string, bool, error) {
	entries, err := c.s.Get(ctx, GetParams{NS: c.ns, Key: key})
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entries[0].Value, true, nil
}

// Set stores value as the new latest version of key.
func (c *Scoped) Set(ctx context.Context, key, value string) error {
	_, err := c.s.Put(ctx, PutParams{NS: c.ns, Key: key, Value: value})
	return err
}

// Delete removes every version of key. Deleting a missing key is not an error.
func (c *Scoped) Delete(ctx context.Context, key string) error {
	return c.s.Rm(ctx, RmParams{NS: c.ns, Key: key, AllVersions: true, Hard: true})
}

// List returns the latest entry of every key starting with prefix.
func (c *Scoped) List(ctx context.Context, prefix string, limit int) ([]model.Entry, error) {
	return c.s.List(ctx, ListParams{NS: c.ns, Prefix: prefix, Limit: limit})
}
