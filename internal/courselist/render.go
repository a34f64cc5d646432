package courselist

import (
	"fmt"
	"io"
	"strconv"
)

// Fields lists the filter controls in display order.
var Fields = []Field{FieldDepartment, FieldGrade, FieldClass}

// Render writes a plain-text rendition of the panel to w.
func (v *View) Render(w io.Writer) error {
	for _, field := range Fields {
		current := v.props.Filters.Get(field)
		if _, err := fmt.Fprintf(w, "%s:\n", field); err != nil {
			return err
		}
		for _, opt := range v.props.Options.Choices(field) {
			mark := " "
			if opt.Value == current {
				mark = "*"
			}
			if _, err := fmt.Fprintf(w, "  [%s] %s\n", mark, opt.Display()); err != nil {
				return err
			}
		}
	}

	t := v.Totals()
	if _, err := fmt.Fprintf(w, "%s 學分  %s 小時\n", formatNumber(t.TotalCredits), formatNumber(t.TotalHours)); err != nil {
		return err
	}

	state := "enabled"
	if !v.BulkEnabled() {
		state = "disabled (choose a department)"
	}
	_, err := fmt.Fprintf(w, "select-all / deselect-all: %s, %d course(s) in list\n", state, len(v.props.FilteredCourses))
	return err
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
