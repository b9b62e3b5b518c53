// Package cli builds the spyglass command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/spyglass-re/spyglass/pkg/version"
)

// NewRootCmd creates the spyglass root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "spyglass",
		Short:         "Spyglass - MCP bridge to a live binary-analysis session",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newListToolsCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("Spyglass version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
			cmd.Printf("Go version: %s\n", version.GoVersion)
		},
	}
}
