package session

import (
	"context"
	"fmt"

	"github.com/rcliao/course-selector/internal/courselist"
	"github.com/rcliao/course-selector/internal/dismissal"
	"github.com/rcliao/course-selector/internal/logging"
	"github.com/rcliao/course-selector/internal/model"
)

// Summary reports the state of one client.
type Summary struct {
	Client        string             `json:"client"`
	Filters       courselist.Filters `json:"filters"`
	Selected      int                `json:"selected"`
	Totals        model.Totals       `json:"totals"`
	BannerVisible bool               `json:"banner_visible"`
	Dismissal     *dismissal.Record  `json:"dismissal,omitempty"`
}

// Summary evaluates the client's banner at now and counts its selection.
func (s *Session) Summary(ctx context.Context, cfg dismissal.Config, now dismissal.Clock) (*Summary, error) {
	filters, err := s.Filters(ctx)
	if err != nil {
		return nil, err
	}
	selected, err := s.Selected(ctx)
	if err != nil {
		return nil, err
	}
	st := dismissal.Initialize(ctx, s.kv, now, cfg)

	return &Summary{
		Client:        s.Client(),
		Filters:       filters,
		Selected:      len(selected),
		Totals:        Aggregate(selected),
		BannerVisible: st.Visible,
		Dismissal:     st.Record,
	}, nil
}

// Snapshot is a portable copy of one client's state: the filters, the
// selected courses and the banner dismissal.
type Snapshot struct {
	Client    string             `json:"client"`
	Filters   courselist.Filters `json:"filters"`
	Selected  []model.Course     `json:"selected"`
	Dismissal *dismissal.Record  `json:"dismissal,omitempty"`
}

// Export copies the client's state. An unreadable dismissal record is left
// out, which imports as "never dismissed".
func (s *Session) Export(ctx context.Context, cfg dismissal.Config) (*Snapshot, error) {
	filters, err := s.Filters(ctx)
	if err != nil {
		return nil, err
	}
	selected, err := s.Selected(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := dismissal.ReadRecord(ctx, s.kv, cfg)
	if err != nil {
		logging.From(ctx).Warn("skipping unreadable dismissal record", "error", err)
		rec = nil
	}

	return &Snapshot{
		Client:    s.Client(),
		Filters:   filters,
		Selected:  selected,
		Dismissal: rec,
	}, nil
}

// Import replaces the client's filters and selection with those of snap and
// writes its dismissal record, if any. Courses selected now but absent from
// snap are deselected. The snapshot's own Client is ignored, so state can be
// moved between clients.
func (s *Session) Import(ctx context.Context, snap *Snapshot, cfg dismissal.Config) error {
	keep := make(map[string]bool, len(snap.Selected))
	for _, c := range snap.Selected {
		if c.ID == "" {
			return fmt.Errorf("snapshot has a course without id")
		}
		keep[c.ID] = true
	}

	if _, err := s.ApplyFilter(ctx, courselist.FilterUpdate{
		courselist.FieldDepartment: snap.Filters.Department,
		courselist.FieldGrade:      snap.Filters.Grade,
		courselist.FieldClass:      snap.Filters.Class,
	}); err != nil {
		return err
	}

	current, err := s.Selected(ctx)
	if err != nil {
		return err
	}
	for _, c := range current {
		if !keep[c.ID] {
			if err := s.SetSelected(ctx, c, false); err != nil {
				return fmt.Errorf("deselect %s: %w", c.ID, err)
			}
		}
	}
	for _, c := range snap.Selected {
		if err := s.SetSelected(ctx, c, true); err != nil {
			return fmt.Errorf("select %s: %w", c.ID, err)
		}
	}

	if snap.Dismissal != nil {
		if err := dismissal.WriteRecord(ctx, s.kv, cfg, *snap.Dismissal); err != nil {
			return err
		}
	}
	return nil
}
