package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List clients with stored state",
		RunE:  runClients,
	}

	RootCmd.AddCommand(cmd)
}

func runClients(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	clients, err := s.ListNamespaces(cmd.Context())
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}

	if textOutput() {
		for _, c := range clients {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	}
	return printJSON(cmd.OutOrStdout(), clients)
}
