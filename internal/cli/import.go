package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/course-selector/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace a client's state with an exported snapshot",
		Long:  "Read a snapshot produced by export on stdin and make it the state of --client. Courses not in the snapshot are deselected.",
		RunE:  runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	cfg, err := loadDismissalConfig()
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := session.New(s, clientFlag).Import(cmd.Context(), &snap, cfg); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	return printJSON(cmd.OutOrStdout(), map[string]interface{}{
		"ok":       true,
		"client":   clientFlag,
		"selected": len(snap.Selected),
	})
}
