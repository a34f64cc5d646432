package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rcliao/course-selector/internal/courselist"
	"github.com/rcliao/course-selector/internal/dismissal"
	"github.com/rcliao/course-selector/internal/model"
	"github.com/rcliao/course-selector/internal/store"
)

func newTestSession(t *testing.T, client string) (*Session, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s, client), s
}

func TestFiltersDefaultEmpty(t *testing.T) {
	sess, _ := newTestSession(t, "alice")

	f, err := sess.Filters(context.Background())
	if err != nil {
		t.Fatalf("filters: %v", err)
	}
	if f != (courselist.Filters{}) {
		t.Errorf("expected empty filters, got %+v", f)
	}
}

func TestApplyFilterMerges(t *testing.T) {
	ctx := context.Background()
	sess, _ := newTestSession(t, "alice")

	sess.ApplyFilter(ctx, courselist.FilterUpdate{courselist.FieldDepartment: "資工系"})
	f, err := sess.ApplyFilter(ctx, courselist.FilterUpdate{courselist.FieldGrade: "2"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := courselist.Filters{Department: "資工系", Grade: "2"}
	if f != want {
		t.Errorf("expected %+v, got %+v", want, f)
	}

	// Clearing a field stores the empty value.
	f, _ = sess.ApplyFilter(ctx, courselist.FilterUpdate{courselist.FieldDepartment: ""})
	if f.Department != "" || f.Grade != "2" {
		t.Errorf("unexpected filters after clearing department: %+v", f)
	}
}

func TestSelection(t *testing.T) {
	ctx := context.Background()
	sess, _ := newTestSession(t, "alice")

	a := model.Course{ID: "CSE101", Credits: 3, Hours: 3}
	b := model.Course{ID: "CSE102", Credits: 2, Hours: 4}

	sess.SetSelected(ctx, b, true)
	sess.SetSelected(ctx, a, true)
	sess.SetSelected(ctx, a, true) // repeat is harmless

	got, err := sess.Selected(ctx)
	if err != nil {
		t.Fatalf("selected: %v", err)
	}
	if len(got) != 2 || got[0].ID != "CSE101" || got[1].ID != "CSE102" {
		t.Fatalf("expected [CSE101 CSE102], got %+v", got)
	}

	if err := sess.SetSelected(ctx, a, false); err != nil {
		t.Fatalf("deselect: %v", err)
	}
	got, _ = sess.Selected(ctx)
	if len(got) != 1 || got[0].ID != "CSE102" {
		t.Errorf("expected only CSE102 left, got %+v", got)
	}

	// Deselecting something never selected is fine.
	if err := sess.SetSelected(ctx, model.Course{ID: "X"}, false); err != nil {
		t.Errorf("deselect unknown: %v", err)
	}
}

func TestSetSelectedRequiresID(t *testing.T) {
	sess, _ := newTestSession(t, "alice")
	if err := sess.SetSelected(context.Background(), model.Course{}, true); err == nil {
		t.Error("expected error for course without id")
	}
}

func TestSelectedRejectsOversizedSelection(t *testing.T) {
	ctx := context.Background()
	sess, _ := newTestSession(t, "alice")

	old := maxSelected
	maxSelected = 2
	t.Cleanup(func() { maxSelected = old })

	sess.SetSelected(ctx, model.Course{ID: "A", Credits: 1}, true)
	sess.SetSelected(ctx, model.Course{ID: "B", Credits: 1}, true)
	if got, err := sess.Selected(ctx); err != nil || len(got) != 2 {
		t.Fatalf("expected 2 courses at the limit, got %d (%v)", len(got), err)
	}

	sess.SetSelected(ctx, model.Course{ID: "C", Credits: 1}, true)
	got, err := sess.Selected(ctx)
	if !errors.Is(err, ErrTooManySelected) {
		t.Fatalf("expected ErrTooManySelected, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial selection, got %d courses", len(got))
	}
}

func TestClientsAreIsolated(t *testing.T) {
	ctx := context.Background()
	alice, s := newTestSession(t, "alice")
	bob := New(s, "bob")

	alice.SetSelected(ctx, model.Course{ID: "CSE101"}, true)
	got, _ := bob.Selected(ctx)
	if len(got) != 0 {
		t.Errorf("expected bob's selection empty, got %+v", got)
	}
}

func TestAggregate(t *testing.T) {
	got := Aggregate([]model.Course{{Credits: 3, Hours: 3}, {Credits: 2, Hours: 4}, {Credits: 0.5, Hours: 1}})
	if got.TotalCredits != 5.5 || got.TotalHours != 8 {
		t.Errorf("unexpected totals %+v", got)
	}
	if Aggregate(nil) != (model.Totals{}) {
		t.Error("expected zero totals for empty selection")
	}
}

func TestBulkSelectThroughView(t *testing.T) {
	ctx := context.Background()
	sess, _ := newTestSession(t, "alice")
	filtered := []model.Course{{ID: "A", Credits: 3, Hours: 3}, {ID: "B", Credits: 2, Hours: 2}}

	v := courselist.New(courselist.Props{
		Filters:         courselist.Filters{Department: "資工系"},
		FilteredCourses: filtered,
		OnCourseSelect: func(c model.Course, selected bool) {
			if err := sess.SetSelected(ctx, c, selected); err != nil {
				t.Errorf("set selected: %v", err)
			}
		},
	})
	if err := v.SelectAll(); err != nil {
		t.Fatalf("select all: %v", err)
	}

	selected, _ := sess.Selected(ctx)
	totals := courselist.New(courselist.Props{SelectedCourses: selected, Aggregate: Aggregate}).Totals()
	if totals.TotalCredits != 5 || totals.TotalHours != 5 {
		t.Errorf("unexpected totals after select all: %+v", totals)
	}

	v.DeselectAll()
	selected, _ = sess.Selected(ctx)
	if len(selected) != 0 {
		t.Errorf("expected empty selection after deselect all, got %d", len(selected))
	}
}

func TestDismissalPersistsInClientNamespace(t *testing.T) {
	ctx := context.Background()
	sess, s := newTestSession(t, "alice")
	cfg := dismissal.DefaultConfig()

	b := dismissal.NewBanner(ctx, sess.Storage(), nil, cfg)
	if !b.Visible() {
		t.Fatal("expected visible on first visit")
	}
	if err := b.Dismiss(ctx); err != nil {
		t.Fatalf("dismiss: %v", err)
	}

	if dismissal.NewBanner(ctx, sess.Storage(), nil, cfg).Visible() {
		t.Error("expected hidden after reload for same client")
	}
	if !dismissal.NewBanner(ctx, New(s, "bob").Storage(), nil, cfg).Visible() {
		t.Error("expected visible for a different client")
	}
}
