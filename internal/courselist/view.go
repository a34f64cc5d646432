// Package courselist implements the required-course list panel: three
// dependent filter fields, bulk select/deselect over an externally filtered
// course list, and the credit/hour total of the current selection.
//
// The view owns no state. Filtering and aggregation are done by the caller;
// the view only forwards events.
package courselist

import (
	"errors"

	"github.com/rcliao/course-selector/internal/model"
)

// ErrNoDepartment is returned by bulk actions while no department is chosen.
var ErrNoDepartment = errors.New("bulk actions require a department")

// Field names one of the filter controls.
type Field string

const (
	FieldDepartment Field = "Department"
	FieldGrade      Field = "Grade"
	FieldClass      Field = "Class"
)

// FilterUpdate is a partial filter change. The view always emits exactly one key.
type FilterUpdate map[Field]string

// Filters is the current value of every filter control. Empty means "all"
// for Grade and Class, and "none chosen" for Department.
type Filters struct {
	Department string `json:"department"`
	Grade      string `json:"grade"`
	Class      string `json:"class"`
}

// Apply returns f with the fields in u overwritten.
func (f Filters) Apply(u FilterUpdate) Filters {
	for field, v := range u {
		switch field {
		case FieldDepartment:
			f.Department = v
		case FieldGrade:
			f.Grade = v
		case FieldClass:
			f.Class = v
		}
	}
	return f
}

// Get returns the value of a single field.
func (f Filters) Get(field Field) string {
	switch field {
	case FieldDepartment:
		return f.Department
	case FieldGrade:
		return f.Grade
	case FieldClass:
		return f.Class
	}
	return ""
}

// Props are the inputs of the panel, all supplied by the host.
type Props struct {
	Options         Options
	Filters         Filters
	FilteredCourses []model.Course
	SelectedCourses []model.Course
	Aggregate       func([]model.Course) model.Totals
	OnFilterChange  func(FilterUpdate)
	OnCourseSelect  func(course model.Course, selected bool)
}

// View is the required-course list panel.
type View struct {
	props Props
}

// New returns a view over p.
func New(p Props) *View {
	return &View{props: p}
}

// SelectDepartment emits {Department: value}.
func (v *View) SelectDepartment(value string) { v.emit(FieldDepartment, value) }

// SelectGrade emits {Grade: value}.
func (v *View) SelectGrade(value string) { v.emit(FieldGrade, value) }

// SelectClass emits {Class: value}.
func (v *View) SelectClass(value string) { v.emit(FieldClass, value) }

func (v *View) emit(field Field, value string) {
	if v.props.OnFilterChange != nil {
		v.props.OnFilterChange(FilterUpdate{field: value})
	}
}

// BulkEnabled reports whether select-all and deselect-all are available.
func (v *View) BulkEnabled() bool {
	return v.props.Filters.Department != ""
}

// SelectAll marks every filtered course as selected, in list order.
func (v *View) SelectAll() error { return v.bulk(true) }

// DeselectAll marks every filtered course as not selected, in list order.
func (v *View) DeselectAll() error { return v.bulk(false) }

func (v *View) bulk(selected bool) error {
	if !v.BulkEnabled() {
		return ErrNoDepartment
	}
	if v.props.OnCourseSelect == nil {
		return nil
	}
	for _, c := range v.props.FilteredCourses {
		v.props.OnCourseSelect(c, selected)
	}
	return nil
}

// Totals returns the aggregate of the selected courses as computed by the host.
func (v *View) Totals() model.Totals {
	if v.props.Aggregate == nil {
		return model.Totals{}
	}
	return v.props.Aggregate(v.props.SelectedCourses)
}
