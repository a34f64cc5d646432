// Package dismissal decides whether the version announcement banner is shown.
//
// The decision is a pure function of the persisted dismissal record, the
// current time and the banner configuration. Records are read from and
// written to a caller-supplied key/value Storage; every read failure falls
// back to showing the banner.
package dismissal

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Config identifies the current announcement and how long a dismissal lasts.
type Config struct {
	StorageKey      string
	Version         string
	DismissDuration time.Duration
	TargetURL       string
}

// DefaultConfig returns the configuration of the v6 announcement.
func DefaultConfig() Config {
	return Config{
		StorageKey:      "v6VersionAlertDismissed",
		Version:         "v6-announcement-2025",
		DismissDuration: 24 * time.Hour,
		TargetURL:       "https://nsysu-opendev.github.io/NSYSUCourseSelectorV6/",
	}
}

// FlagKey is the storage key of the dismissed flag.
func (c Config) FlagKey() string { return c.StorageKey }

// TimestampKey is the storage key of the dismissal time in epoch milliseconds.
func (c Config) TimestampKey() string { return c.StorageKey + "Timestamp" }

// VersionKey is the storage key of the dismissed announcement version.
func (c Config) VersionKey() string { return c.StorageKey + "_version" }

// Record is a persisted dismissal.
type Record struct {
	Dismissed   bool   `json:"dismissed"`
	DismissedAt int64  `json:"dismissed_at_ms"`
	Version     string `json:"version"`
}

// Storage is the key/value capability the policy persists records through.
// Get reports ok=false for a missing key.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Clock returns the current wall-clock time.
type Clock func() time.Time

// ComputeVisibility reports whether the banner should be shown. A nil
// record, a record that is not marked dismissed, a record for another
// version, or a dismissal at least DismissDuration old all yield true.
func ComputeVisibility(rec *Record, now time.Time, cfg Config) bool {
	if rec == nil || !rec.Dismissed || rec.Version != cfg.Version {
		return true
	}
	// Sub saturates, so timestamps near the int64 limits cannot wrap around.
	elapsed := now.Sub(time.UnixMilli(rec.DismissedAt))
	return elapsed >= cfg.DismissDuration
}

// ReadRecord loads the dismissal record. It returns nil when no dismissal
// has been stored. A timestamp that is not a decimal integer is an error.
func ReadRecord(ctx context.Context, s Storage, cfg Config) (*Record, error) {
	flag, ok, err := s.Get(ctx, cfg.FlagKey())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cfg.FlagKey(), err)
	}
	if !ok {
		return nil, nil
	}

	version, _, err := s.Get(ctx, cfg.VersionKey())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cfg.VersionKey(), err)
	}
	rec := &Record{Dismissed: flag == "true", Version: version}

	ts, ok, err := s.Get(ctx, cfg.TimestampKey())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cfg.TimestampKey(), err)
	}
	if !ok || ts == "" {
		// A flag without a timestamp cannot prove a recent dismissal.
		rec.Dismissed = false
		return rec, nil
	}
	rec.DismissedAt, err = strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s %q: %w", cfg.TimestampKey(), ts, err)
	}

	return rec, nil
}

// WriteRecord overwrites all three keys of the dismissal record.
func WriteRecord(ctx context.Context, s Storage, cfg Config, rec Record) error {
	writes := []struct{ key, value string }{
		{cfg.FlagKey(), strconv.FormatBool(rec.Dismissed)},
		{cfg.TimestampKey(), strconv.FormatInt(rec.DismissedAt, 10)},
		{cfg.VersionKey(), rec.Version},
	}
	for _, w := range writes {
		if err := s.Set(ctx, w.key, w.value); err != nil {
			return fmt.Errorf("write %s: %w", w.key, err)
		}
	}
	return nil
}
