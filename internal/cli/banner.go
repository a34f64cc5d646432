package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rcliao/course-selector/internal/dismissal"
	"github.com/rcliao/course-selector/internal/session"
)

func init() {
	bannerCmd := &cobra.Command{
		Use:   "banner",
		Short: "Version announcement banner",
	}

	bannerCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether the announcement is visible",
		RunE:  runBannerStatus,
	})
	bannerCmd.AddCommand(&cobra.Command{
		Use:   "dismiss",
		Short: "Hide the announcement for the dismiss duration",
		RunE:  runBannerDismiss,
	})
	bannerCmd.AddCommand(&cobra.Command{
		Use:   "visit",
		Short: "Print the announcement target; visibility is unchanged",
		RunE:  runBannerVisit,
	})

	RootCmd.AddCommand(bannerCmd)
}

type bannerOutput struct {
	Client  string            `json:"client"`
	Version string            `json:"version"`
	Visible bool              `json:"visible"`
	Record  *dismissal.Record `json:"record,omitempty"`
	ShowsAt *time.Time        `json:"shows_again_at,omitempty"`
	Target  string            `json:"target_url,omitempty"`
	Warning string            `json:"warning,omitempty"`
}

func loadDismissalConfig() (dismissal.Config, error) {
	c, err := loadConfig()
	if err != nil {
		return dismissal.Config{}, err
	}
	cfg, err := c.Dismissal()
	if err != nil {
		return dismissal.Config{}, fmt.Errorf("banner config: %w", err)
	}
	return cfg, nil
}

func openBanner(cmd *cobra.Command, opts ...dismissal.Option) (*dismissal.Banner, func(), error) {
	cfg, err := loadDismissalConfig()
	if err != nil {
		return nil, nil, err
	}
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	sess := session.New(s, clientFlag)
	b := dismissal.NewBanner(cmd.Context(), sess.Storage(), time.Now, cfg, opts...)
	return b, func() { s.Close() }, nil
}

func runBannerStatus(cmd *cobra.Command, args []string) error {
	b, done, err := openBanner(cmd)
	if err != nil {
		return err
	}
	defer done()
	return report(cmd, b, "")
}

func runBannerDismiss(cmd *cobra.Command, args []string) error {
	b, done, err := openBanner(cmd)
	if err != nil {
		return err
	}
	defer done()

	var warning string
	if err := b.Dismiss(cmd.Context()); err != nil {
		// Hidden for this run regardless; the next run may show it again.
		warning = fmt.Sprintf("dismissal not saved: %v", err)
	}
	return report(cmd, b, warning)
}

func runBannerVisit(cmd *cobra.Command, args []string) error {
	b, done, err := openBanner(cmd, dismissal.WithOpener(func(_ context.Context, url string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), url)
		return err
	}))
	if err != nil {
		return err
	}
	defer done()

	if err := b.Visit(cmd.Context()); err != nil {
		return fmt.Errorf("visit: %w", err)
	}
	return nil
}

func report(cmd *cobra.Command, b *dismissal.Banner, warning string) error {
	cfg := b.Config()
	out := bannerOutput{
		Client:  clientFlag,
		Version: cfg.Version,
		Visible: b.Visible(),
		Record:  b.Record(),
		Target:  cfg.TargetURL,
		Warning: warning,
	}
	if !out.Visible && out.Record != nil {
		t := time.UnixMilli(out.Record.DismissedAt).Add(cfg.DismissDuration)
		out.ShowsAt = &t
	}

	w := cmd.OutOrStdout()
	if !textOutput() {
		return printJSON(w, out)
	}

	if out.Visible {
		color.New(color.FgGreen, color.Bold).Fprint(w, "visible")
		fmt.Fprintf(w, "  %s  %s\n", out.Version, out.Target)
	} else {
		color.New(color.FgYellow).Fprint(w, "hidden")
		fmt.Fprintf(w, "  %s", out.Version)
		if out.ShowsAt != nil {
			fmt.Fprintf(w, "  until %s", out.ShowsAt.Local().Format(time.DateTime))
		}
		fmt.Fprintln(w)
	}
	if warning != "" {
		color.New(color.FgRed).Fprintln(w, warning)
	}
	return nil
}
