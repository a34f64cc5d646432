package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e, err := s.Put(ctx, PutParams{NS: "client-1", Key: "hello", Value: "world"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if e.Version != 1 {
		t.Errorf("expected version 1, got %d", e.Version)
	}
	if e.ID == "" {
		t.Error("expected non-empty ID")
	}

	got, err := s.Get(ctx, GetParams{NS: "client-1", Key: "hello"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Value != "world" {
		t.Errorf("expected 'world', got %q", got[0].Value)
	}
}

func TestPutRequiresNamespaceAndKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Put(ctx, PutParams{Key: "k", Value: "v"}); err == nil {
		t.Error("expected error for empty namespace")
	}
	if _, err := s.Put(ctx, PutParams{NS: "ns", Value: "v"}); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), GetParams{NS: "ns", Key: "nope"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestVersioning(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{NS: "ns", Key: "k", Value: "v1"})
	e2, _ := s.Put(ctx, PutParams{NS: "ns", Key: "k", Value: "v2"})

	if e2.Version != 2 {
		t.Errorf("expected version 2, got %d", e2.Version)
	}
	if e2.Supersedes == "" {
		t.Error("expected supersedes to be set")
	}

	got, _ := s.Get(ctx, GetParams{NS: "ns", Key: "k"})
	if got[0].Value != "v2" {
		t.Errorf("expected 'v2', got %q", got[0].Value)
	}

	hist, _ := s.Get(ctx, GetParams{NS: "ns", Key: "k", History: true})
	if len(hist) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(hist))
	}
	if hist[0].Value != "v2" {
		t.Errorf("expected newest first, got %q", hist[0].Value)
	}

	v1, _ := s.Get(ctx, GetParams{NS: "ns", Key: "k", Version: 1})
	if v1[0].Value != "v1" {
		t.Errorf("expected 'v1', got %q", v1[0].Value)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{NS: "ns", Key: "a", Value: "alpha"})
	s.Put(ctx, PutParams{NS: "ns", Key: "b", Value: "beta"})
	s.Put(ctx, PutParams{NS: "other", Key: "c", Value: "gamma"})

	all, _ := s.List(ctx, ListParams{})
	if len(all) != 3 {
		t.Errorf("expected 3, got %d", len(all))
	}

	nsOnly, _ := s.List(ctx, ListParams{NS: "ns"})
	if len(nsOnly) != 2 {
		t.Errorf("expected 2, got %d", len(nsOnly))
	}
}

func TestListPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{NS: "ns", Key: "selected/CS101", Value: "{}"})
	s.Put(ctx, PutParams{NS: "ns", Key: "selected/CS102", Value: "{}"})
	s.Put(ctx, PutParams{NS: "ns", Key: "filter/Department", Value: "CSE"})

	list, err := s.List(ctx, ListParams{NS: "ns", Prefix: "selected/"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 with prefix, got %d", len(list))
	}
	if list[0].Key != "selected/CS101" || list[1].Key != "selected/CS102" {
		t.Errorf("unexpected keys: %q, %q", list[0].Key, list[1].Key)
	}
}

func TestListShowsLatestVersion(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{NS: "ns", Key: "k", Value: "v1"})
	s.Put(ctx, PutParams{NS: "ns", Key: "k", Value: "v2"})

	list, _ := s.List(ctx, ListParams{NS: "ns"})
	if len(list) != 1 {
		t.Fatalf("expected 1 (latest only), got %d", len(list))
	}
	if list[0].Value != "v2" {
		t.Errorf("expected latest 'v2', got %q", list[0].Value)
	}
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{NS: "ns", Key: "k", Value: "data"})
	if err := s.Rm(ctx, RmParams{NS: "ns", Key: "k"}); err != nil {
		t.Fatalf("rm: %v", err)
	}

	_, err := s.Get(ctx, GetParams{NS: "ns", Key: "k"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after soft delete, got %v", err)
	}
}

func TestSoftDeleteRevealsPreviousVersion(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{NS: "ns", Key: "k", Value: "v1"})
	s.Put(ctx, PutParams{NS: "ns", Key: "k", Value: "v2"})
	s.Rm(ctx, RmParams{NS: "ns", Key: "k"})

	got, err := s.Get(ctx, GetParams{NS: "ns", Key: "k"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got[0].Value != "v1" {
		t.Errorf("expected 'v1', got %q", got[0].Value)
	}
}

func TestHardDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{NS: "ns", Key: "k", Value: "data"})
	if err := s.Rm(ctx, RmParams{NS: "ns", Key: "k", Hard: true}); err != nil {
		t.Fatalf("rm hard: %v", err)
	}

	_, err := s.Get(ctx, GetParams{NS: "ns", Key: "k"})
	if err == nil {
		t.Error("expected error after hard delete")
	}
}

func TestRmMissing(t *testing.T) {
	s := newTestStore(t)

	err := s.Rm(context.Background(), RmParams{NS: "ns", Key: "nope"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAllVersions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{NS: "ns", Key: "k", Value: "v1"})
	s.Put(ctx, PutParams{NS: "ns", Key: "k", Value: "v2"})

	s.Rm(ctx, RmParams{NS: "ns", Key: "k", AllVersions: true})

	_, err := s.Get(ctx, GetParams{NS: "ns", Key: "k", History: true})
	if err == nil {
		t.Error("expected error after deleting all versions")
	}
}

func TestExpiredEntriesAreHidden(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e, err := s.Put(ctx, PutParams{NS: "ns", Key: "k", Value: "v", TTL: "24h"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if e.ExpiresAt == nil {
		t.Fatal("expected expires_at to be set")
	}

	past := time.Now().UTC().Add(-time.Minute).Format(timeFormat)
	if _, err := s.db.Exec(`UPDATE entries SET expires_at = ? WHERE id = ?`, past, e.ID); err != nil {
		t.Fatalf("expire: %v", err)
	}

	if _, err := s.Get(ctx, GetParams{NS: "ns", Key: "k"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for expired entry, got %v", err)
	}
	list, _ := s.List(ctx, ListParams{NS: "ns"})
	if len(list) != 0 {
		t.Errorf("expected expired entry to be excluded from list, got %d", len(list))
	}
	hist, _ := s.Get(ctx, GetParams{NS: "ns", Key: "k", History: true})
	if len(hist) != 1 {
		t.Errorf("expected history to keep expired entry, got %d", len(hist))
	}
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"7d", 7 * 24 * time.Hour, true},
		{"24h", 24 * time.Hour, true},
		{"30m", 30 * time.Minute, true},
		{"60s", 60 * time.Second, true},
		{"1w", 0, false},
		{"h", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, err := parseTTL(tt.in)
		if tt.ok && err != nil {
			t.Errorf("parseTTL(%q): unexpected error %v", tt.in, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("parseTTL(%q): expected error", tt.in)
		}
		if got != tt.want {
			t.Errorf("parseTTL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestListNamespaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{NS: "b", Key: "k", Value: "1"})
	s.Put(ctx, PutParams{NS: "a", Key: "k", Value: "1"})
	s.Put(ctx, PutParams{NS: "a", Key: "j", Value: "1"})

	got, err := s.ListNamespaces(ctx)
	if err != nil {
		t.Fatalf("list namespaces: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected [a b], got %v", got)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}
