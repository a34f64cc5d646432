package cli

import (
	"fmt"

	"github.com/rcliao/course-selector/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value as the new latest version of a key",
		Args:  cobra.ExactArgs(2),
		RunE:  runSet,
	}

	cmd.Flags().String("ttl", "", "Expire after e.g. 7d, 24h, 30m")

	kvCmd.AddCommand(cmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	ttl, _ := cmd.Flags().GetString("ttl")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	e, err := s.Put(cmd.Context(), store.PutParams{
		NS:    clientFlag,
		Key:   args[0],
		Value: args[1],
		TTL:   ttl,
	})
	if err != nil {
		return fmt.Errorf("set: %w", err)
	}

	return printJSON(cmd.OutOrStdout(), e)
}
