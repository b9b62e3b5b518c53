package cli

import (
	"github.com/spf13/cobra"

	"github.com/spyglass-re/spyglass/internal/contract"
)

// newValidateCmd creates the 'spyglass validate' command.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <snapshot.json>",
		Short: "Validate a snapshot file against the sync contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := contract.LoadFile(args[0])
			if err != nil {
				return err
			}

			cmd.Printf("%s: valid snapshot (schema %s)\n", args[0], snapshot.SchemaVersion)
			cmd.Printf("  functions: %d\n", len(snapshot.Functions))
			cmd.Printf("  strings:   %d\n", len(snapshot.Strings))
			cmd.Printf("  comments:  %d\n", len(snapshot.Comments))
			return nil
		},
	}
}
