package cli

import (
	"fmt"

	"github.com/rcliao/course-selector/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Retrieve a value",
		Args:  cobra.ExactArgs(1),
		RunE:  runGet,
	}

	cmd.Flags().Bool("history", false, "Return all versions (newest first)")
	cmd.Flags().IntP("version", "v", 0, "Specific version number")

	kvCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	history, _ := cmd.Flags().GetBool("history")
	version, _ := cmd.Flags().GetInt("version")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.Get(cmd.Context(), store.GetParams{
		NS:      clientFlag,
		Key:     args[0],
		History: history,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}

	w := cmd.OutOrStdout()
	if textOutput() {
		for _, e := range entries {
			fmt.Fprintf(w, "v%d\t%s\n", e.Version, e.Value)
		}
		return nil
	}
	if history || len(entries) > 1 {
		return printJSON(w, entries)
	}
	return printJSON(w, entries[0])
}
