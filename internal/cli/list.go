package cli

import (
	"fmt"

	"github.com/rcliao/course-selector/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		RunE:  runList,
	}

	cmd.Flags().StringP("prefix", "p", "", "Only keys starting with prefix")
	cmd.Flags().Bool("all-clients", false, "List entries of every client")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("keys-only", false, "Only output client/key pairs")

	kvCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) error {
	prefix, _ := cmd.Flags().GetString("prefix")
	allClients, _ := cmd.Flags().GetBool("all-clients")
	limit, _ := cmd.Flags().GetInt("limit")
	keysOnly, _ := cmd.Flags().GetBool("keys-only")

	ns := clientFlag
	if allClients {
		ns = ""
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.List(cmd.Context(), store.ListParams{
		NS:     ns,
		Prefix: prefix,
		Limit:  limit,
	})
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	w := cmd.OutOrStdout()
	if keysOnly || textOutput() {
		for _, e := range entries {
			if keysOnly {
				fmt.Fprintf(w, "%s/%s\n", e.NS, e.Key)
			} else {
				fmt.Fprintf(w, "%s/%s\t%s\n", e.NS, e.Key, e.Value)
			}
		}
		return nil
	}

	return printJSON(w, entries)
}
