package display

import (
	"github.com/spf13/cobra"
)

// ShouldOutputJSON reports whether a command should print JSON summaries,
// from its own --json flag or a persistent --json on the root command.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}

	if cmd.Flags().Lookup("json") != nil {
		if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
			return true
		}
	}

	if globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json"); globalFlag {
		return true
	}

	return false
}
