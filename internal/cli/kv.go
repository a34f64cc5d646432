package cli

import "github.com/spf13/cobra"

// kvCmd groups raw key/value access to a client's namespace.
var kvCmd = &cobra.Command{
	Use:   "kv",
	Short: "Inspect and edit stored key/value entries",
}

func init() {
	RootCmd.AddCommand(kvCmd)
}
