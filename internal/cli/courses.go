package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/course-selector/internal/courselist"
	"github.com/rcliao/course-selector/internal/model"
	"github.com/rcliao/course-selector/internal/session"
	"github.com/rcliao/course-selector/internal/store"
)

func init() {
	coursesCmd := &cobra.Command{
		Use:   "courses",
		Short: "Required-course list",
		Long:  "Required-course list panel. Commands that act on the filtered list read it as a JSON array of courses on stdin.",
	}

	filterCmd := &cobra.Command{
		Use:   "filter",
		Short: "Change the department, grade or class filter",
		RunE:  runCoursesFilter,
	}
	filterCmd.Flags().String("department", "", "Department (empty clears it)")
	filterCmd.Flags().String("grade", "", "Grade (empty means all)")
	filterCmd.Flags().String("class", "", "Class (empty means all)")

	coursesCmd.AddCommand(filterCmd)
	coursesCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the panel for the filtered list on stdin",
		RunE:  runCoursesShow,
	})
	coursesCmd.AddCommand(&cobra.Command{
		Use:   "select-all",
		Short: "Select every course of the filtered list on stdin",
		RunE:  func(cmd *cobra.Command, args []string) error { return runCoursesBulk(cmd, true) },
	})
	coursesCmd.AddCommand(&cobra.Command{
		Use:   "deselect-all",
		Short: "Deselect every course of the filtered list on stdin",
		RunE:  func(cmd *cobra.Command, args []string) error { return runCoursesBulk(cmd, false) },
	})
	coursesCmd.AddCommand(&cobra.Command{
		Use:   "totals",
		Short: "Show credit and hour totals of the selection",
		RunE:  runCoursesTotals,
	})

	RootCmd.AddCommand(coursesCmd)
}

type selectionEvent struct {
	Course   string `json:"course"`
	Selected bool   `json:"selected"`
}

type panelOutput struct {
	Client      string             `json:"client"`
	Filters     courselist.Filters `json:"filters"`
	BulkEnabled bool               `json:"bulk_enabled"`
	Filtered    int                `json:"filtered"`
	Selected    int                `json:"selected"`
	Totals      model.Totals       `json:"totals"`
}

// panel assembles the view from the client's stored state.
type panel struct {
	store *store.SQLiteStore
	sess  *session.Session
	props courselist.Props
}

func openPanel(ctx context.Context, filtered []model.Course) (*panel, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	sess := session.New(s, clientFlag)

	filters, err := sess.Filters(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("read filters: %w", err)
	}
	selected, err := sess.Selected(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("read selection: %w", err)
	}

	return &panel{
		store: s,
		sess:  sess,
		props: courselist.Props{
			Options:         cfg.Options(),
			Filters:         filters,
			FilteredCourses: filtered,
			SelectedCourses: selected,
			Aggregate:       session.Aggregate,
		},
	}, nil
}

func (p *panel) close() { p.store.Close() }

func (p *panel) output() panelOutput {
	v := courselist.New(p.props)
	return panelOutput{
		Client:      clientFlag,
		Filters:     p.props.Filters,
		BulkEnabled: v.BulkEnabled(),
		Filtered:    len(p.props.FilteredCourses),
		Selected:    len(p.props.SelectedCourses),
		Totals:      v.Totals(),
	}
}

func runCoursesFilter(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if !flags.Changed("department") && !flags.Changed("grade") && !flags.Changed("class") {
		return fmt.Errorf("filter: set at least one of --department, --grade, --class")
	}

	ctx := cmd.Context()
	p, err := openPanel(ctx, nil)
	if err != nil {
		return err
	}
	defer p.close()

	var errs []error
	p.props.OnFilterChange = func(u courselist.FilterUpdate) {
		f, err := p.sess.ApplyFilter(ctx, u)
		if err != nil {
			errs = append(errs, err)
			return
		}
		p.props.Filters = f
	}
	v := courselist.New(p.props)

	if flags.Changed("department") {
		val, _ := flags.GetString("department")
		v.SelectDepartment(val)
	}
	if flags.Changed("grade") {
		val, _ := flags.GetString("grade")
		v.SelectGrade(val)
	}
	if flags.Changed("class") {
		val, _ := flags.GetString("class")
		v.SelectClass(val)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("filter: %w", err)
	}

	return printPanel(cmd, p)
}

func runCoursesShow(cmd *cobra.Command, args []string) error {
	courses, err := readCourses(cmd)
	if err != nil {
		return err
	}
	p, err := openPanel(cmd.Context(), courses)
	if err != nil {
		return err
	}
	defer p.close()
	return printPanel(cmd, p)
}

func runCoursesBulk(cmd *cobra.Command, selected bool) error {
	courses, err := readCourses(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	p, err := openPanel(ctx, courses)
	if err != nil {
		return err
	}
	defer p.close()

	var events []selectionEvent
	var errs []error
	p.props.OnCourseSelect = func(c model.Course, sel bool) {
		if err := p.sess.SetSelected(ctx, c, sel); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.ID, err))
			return
		}
		events = append(events, selectionEvent{Course: c.ID, Selected: sel})
	}
	v := courselist.New(p.props)

	if selected {
		err = v.SelectAll()
	} else {
		err = v.DeselectAll()
	}
	if err != nil {
		return fmt.Errorf("bulk select: %w", err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("bulk select: %w", err)
	}

	w := cmd.OutOrStdout()
	if textOutput() {
		for _, e := range events {
			fmt.Fprintf(w, "%s\t%v\n", e.Course, e.Selected)
		}
		return nil
	}
	return printJSON(w, events)
}

func runCoursesTotals(cmd *cobra.Command, args []string) error {
	p, err := openPanel(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer p.close()

	totals := courselist.New(p.props).Totals()
	if textOutput() {
		fmt.Fprintf(cmd.OutOrStdout(), "%v credits, %v hours\n", totals.TotalCredits, totals.TotalHours)
		return nil
	}
	return printJSON(cmd.OutOrStdout(), totals)
}

func printPanel(cmd *cobra.Command, p *panel) error {
	if textOutput() {
		if err := courselist.New(p.props).Render(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		return nil
	}
	return printJSON(cmd.OutOrStdout(), p.output())
}

// readCourses reads a JSON array of courses from stdin when it is piped.
func readCourses(cmd *cobra.Command) ([]model.Course, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		stat, _ := f.Stat()
		if stat == nil || (stat.Mode()&os.ModeCharDevice) != 0 {
			return nil, nil
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var courses []model.Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, fmt.Errorf("parse courses: %w", err)
	}
	return courses, nil
}
