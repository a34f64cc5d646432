package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rcliao/course-selector/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show banner state, filters and selection of every client",
		RunE:  runStats,
	}

	cmd.Flags().Bool("only-client", false, "Report only the --client client")

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	onlyClient, _ := cmd.Flags().GetBool("only-client")
	ctx := cmd.Context()

	cfg, err := loadDismissalConfig()
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	clients := []string{clientFlag}
	if !onlyClient {
		if clients, err = s.ListNamespaces(ctx); err != nil {
			return fmt.Errorf("list clients: %w", err)
		}
	}

	summaries := make([]*session.Summary, 0, len(clients))
	for _, c := range clients {
		sum, err := session.New(s, c).Summary(ctx, cfg, time.Now)
		if err != nil {
			return fmt.Errorf("client %s: %w", c, err)
		}
		summaries = append(summaries, sum)
	}

	w := cmd.OutOrStdout()
	if !textOutput() {
		return printJSON(w, summaries)
	}
	for _, sum := range summaries {
		state := color.GreenString("visible")
		if !sum.BannerVisible {
			state = color.YellowString("hidden")
		}
		fmt.Fprintf(w, "%s\t%s\t%s/%s/%s\t%d selected, %v credits, %v hours\n",
			sum.Client, state,
			sum.Filters.Department, sum.Filters.Grade, sum.Filters.Class,
			sum.Selected, sum.Totals.TotalCredits, sum.Totals.TotalHours)
	}
	return nil
}
