package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/course-selector/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a client's filters, selection and banner dismissal as JSON",
		RunE:  runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadDismissalConfig()
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := session.New(s, clientFlag).Export(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), snap)
}
