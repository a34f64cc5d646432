package cli

import (
	"fmt"

	"github.com/rcliao/course-selector/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <key>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE:  runRm,
	}

	cmd.Flags().Bool("all-versions", false, "Delete all versions")
	cmd.Flags().Bool("hard", false, "Permanent delete (irreversible)")

	kvCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	allVersions, _ := cmd.Flags().GetBool("all-versions")
	hard, _ := cmd.Flags().GetBool("hard")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	err = s.Rm(cmd.Context(), store.RmParams{
		NS:          clientFlag,
		Key:         args[0],
		AllVersions: allVersions,
		Hard:        hard,
	})
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"client":%q,"key":%q}`+"\n", clientFlag, args[0])
	return err
}
