// Package session keeps per-client host state (filter values, selected
// courses) in a client's namespace of the key/value store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rcliao/course-selector/internal/courselist"
	"github.com/rcliao/course-selector/internal/model"
	"github.com/rcliao/course-selector/internal/store"
)

const (
	filterPrefix   = "filter/"
	selectedPrefix = "selected/"
)

// maxSelected bounds how many selected courses Selected loads.
var maxSelected = 10000

// ErrTooManySelected is returned when a selection exceeds maxSelected courses.
var ErrTooManySelected = errors.New("too many selected courses")

// Session is the state of one client.
type Session struct {
	kv *store.Scoped
}

// New returns the session of client in s.
func New(s store.Store, client string) *Session {
	return &Session{kv: store.Scope(s, client)}
}

// Client returns the client whose state this is.
func (s *Session) Client() string {
	return s.kv.NS()
}

// Storage exposes the client's namespace as flat key/value storage.
func (s *Session) Storage() *store.Scoped {
	return s.kv
}

// Filters returns the stored filter values; unset fields are empty.
func (s *Session) Filters(ctx context.Context) (courselist.Filters, error) {
	var f courselist.Filters
	for _, field := range courselist.Fields {
		v, _, err := s.kv.Get(ctx, filterPrefix+string(field))
		if err != nil {
			return f, fmt.Errorf("read filter %s: %w", field, err)
		}
		f = f.Apply(courselist.FilterUpdate{field: v})
	}
	return f, nil
}

// ApplyFilter persists a partial filter update and returns the merged filters.
func (s *Session) ApplyFilter(ctx context.Context, u courselist.FilterUpdate) (courselist.Filters, error) {
	for field, v := range u {
		if err := s.kv.Set(ctx, filterPrefix+string(field), v); err != nil {
			return courselist.Filters{}, fmt.Errorf("write filter %s: %w", field, err)
		}
	}
	return s.Filters(ctx)
}

// Selected returns the selected courses ordered by course ID. A selection
// larger than maxSelected is an error rather than a truncated list.
func (s *Session) Selected(ctx context.Context) ([]model.Course, error) {
	entries, err := s.kv.List(ctx, selectedPrefix, maxSelected+1)
	if err != nil {
		return nil, fmt.Errorf("list selected: %w", err)
	}
	if len(entries) > maxSelected {
		return nil, fmt.Errorf("%w: more than %d", ErrTooManySelected, maxSelected)
	}
	courses := make([]model.Course, 0, len(entries))
	for _, e := range entries {
		var c model.Course
		if err := json.Unmarshal([]byte(e.Value), &c); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		courses = append(courses, c)
	}
	return courses, nil
}

// SetSelected adds course to or removes it from the selection.
func (s *Session) SetSelected(ctx context.Context, c model.Course, selected bool) error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("course without id")
	}
	key := selectedPrefix + c.ID
	if !selected {
		return s.kv.Delete(ctx, key)
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, string(b))
}

// Aggregate sums credits and hours of courses.
func Aggregate(courses []model.Course) model.Totals {
	var t model.Totals
	for _, c := range courses {
		t.TotalCredits += c.Credits
		t.TotalHours += c.Hours
	}
	return t
}
