package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/course-selector/internal/model"
)

// Fixed-width so that stored timestamps compare correctly as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id          TEXT PRIMARY KEY,
		ns          TEXT NOT NULL,
		key         TEXT NOT NULL,
		value       TEXT NOT NULL,
		version     INTEGER NOT NULL DEFAULT 1,
		supersedes  TEXT,
		created_at  TEXT NOT NULL,
		deleted_at  TEXT,
		expires_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_entries_ns_key ON entries(ns, key);
	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_entries_deleted ON entries(deleted_at);
	CREATE INDEX IF NOT EXISTS idx_entries_expires ON entries(expires_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Put(ctx context.Context, p PutParams) (*model.Entry, error) {
	if p.NS == "" || p.Key == "" {
		return nil, fmt.Errorf("namespace and key are required")
	}

	now := time.Now().UTC()
	id := s.newID()

	var expiresAt *string
	if p.TTL != "" {
		d, err := parseTTL(p.TTL)
		if err != nil {
			return nil, fmt.Errorf("invalid ttl: %w", err)
		}
		exp := now.Add(d).Format(timeFormat)
		expiresAt = &exp
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Latest live version, if any
	var prevID string
	var prevVersion int
	err = tx.QueryRowContext(ctx,
		`SELECT id, version FROM entries
		 WHERE ns = ? AND key = ? AND deleted_at IS NULL
		 ORDER BY version DESC LIMIT 1`, p.NS, p.Key).Scan(&prevID, &prevVersion)

	version := 1
	var supersedes *string
	if err == nil {
		version = prevVersion + 1
		supersedes = &prevID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (id, ns, key, value, version, supersedes, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.NS, p.Key, p.Value, version, supersedes,
		now.Format(timeFormat), expiresAt)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	e := &model.Entry{
		ID:        id,
		NS:        p.NS,
		Key:       p.Key,
		Value:     p.Value,
		Version:   version,
		CreatedAt: now,
	}
	if expiresAt != nil {
		t, _ := time.Parse(timeFormat, *expiresAt)
		e.ExpiresAt = &t
	}
	if supersedes != nil {
		e.Supersedes = *supersedes
	}

	return e, nil
}

const entryColumns = `id, ns, key, value, version, supersedes, created_at, deleted_at, expires_at`

func (s *SQLiteStore) Get(ctx context.Context, p GetParams) ([]model.Entry, error) {
	var query string
	var args []interface{}

	now := time.Now().UTC().Format(timeFormat)

	if p.History {
		// History shows all versions including expired (for audit)
		query = `SELECT ` + entryColumns + `
				 FROM entries WHERE ns = ? AND key = ? AND deleted_at IS NULL
				 ORDER BY version DESC`
		args = []interface{}{p.NS, p.Key}
	} else if p.Version > 0 {
		query = `SELECT ` + entryColumns + `
				 FROM entries WHERE ns = ? AND key = ? AND version = ? AND deleted_at IS NULL
				   AND (expires_at IS NULL OR expires_at > ?)
				 LIMIT 1`
		args = []interface{}{p.NS, p.Key, p.Version, now}
	} else {
		query = `SELECT ` + entryColumns + `
				 FROM entries WHERE ns = ? AND key = ? AND deleted_at IS NULL
				   AND (expires_at IS NULL OR expires_at > ?)
				 ORDER BY version DESC LIMIT 1`
		args = []interface{}{p.NS, p.Key, now}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, p.NS, p.Key)
	}

	return entries, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Entry, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	// Only the latest version of each ns+key
	now := time.Now().UTC().Format(timeFormat)
	where := []string{"e.deleted_at IS NULL", "(e.expires_at IS NULL OR e.expires_at > ?)"}
	args := []interface{}{now}

	if p.NS != "" {
		where = append(where, "e.ns = ?")
		args = append(args, p.NS)
	}
	if p.Prefix != "" {
		where = append(where, "substr(e.key, 1, length(?)) = ?")
		args = append(args, p.Prefix, p.Prefix)
	}

	query := fmt.Sprintf(`
		SELECT e.id, e.ns, e.key, e.value, e.version, e.supersedes,
		       e.created_at, e.deleted_at, e.expires_at
		FROM entries e
		INNER JOIN (
			SELECT ns, key, MAX(version) AS max_ver
			FROM entries WHERE deleted_at IS NULL
			GROUP BY ns, key
		) latest ON e.ns = latest.ns AND e.key = latest.key AND e.version = latest.max_ver
		WHERE %s
		ORDER BY e.ns, e.key
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	if p.Hard {
		if p.AllVersions {
			_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE ns = ? AND key = ?`, p.NS, p.Key)
			return err
		}
		// Hard delete latest only
		var id string
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM entries WHERE ns = ? AND key = ? AND deleted_at IS NULL ORDER BY version DESC LIMIT 1`,
			p.NS, p.Key).Scan(&id)
		if err != nil {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, p.NS, p.Key)
		}
		_, err = s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
		return err
	}

	now := time.Now().UTC().Format(timeFormat)
	if p.AllVersions {
		_, err := s.db.ExecContext(ctx,
			`UPDATE entries SET deleted_at = ? WHERE ns = ? AND key = ? AND deleted_at IS NULL`,
			now, p.NS, p.Key)
		return err
	}

	// Soft-delete latest version only
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM entries WHERE ns = ? AND key = ? AND deleted_at IS NULL ORDER BY version DESC LIMIT 1`,
		p.NS, p.Key).Scan(&id)
	if err != nil {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, p.NS, p.Key)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE entries SET deleted_at = ? WHERE id = ?`, now, id)
	return err
}

// ListNamespaces returns every namespace holding at least one live entry.
func (s *SQLiteStore) ListNamespaces(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT ns FROM entries WHERE deleted_at IS NULL ORDER BY ns`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var namespaces []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, err
		}
		namespaces = append(namespaces, ns)
	}
	return namespaces, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (model.Entry, error) {
	var e model.Entry
	var supersedes, deletedAt, expiresAt sql.NullString
	var createdAt string

	err := row.Scan(
		&e.ID, &e.NS, &e.Key, &e.Value, &e.Version,
		&supersedes, &createdAt, &deletedAt, &expiresAt,
	)
	if err != nil {
		return e, err
	}

	e.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	if supersedes.Valid {
		e.Supersedes = supersedes.String
	}
	if deletedAt.Valid {
		t, _ := time.Parse(timeFormat, deletedAt.String)
		e.DeletedAt = &t
	}
	if expiresAt.Valid {
		t, _ := time.Parse(timeFormat, expiresAt.String)
		e.ExpiresAt = &t
	}

	return e, nil
}

// parseTTL parses a TTL string like "7d", "24h", "30m" into a time.Duration.
var ttlRegex = regexp.MustCompile(`^(\d+)([dhms])$`)

func parseTTL(s string) (time.Duration, error) {
	m := ttlRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid format %q (use e.g. 7d, 24h, 30m, 60s)", s)
	}
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "s":
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("unknown unit %q", m[2])
}
