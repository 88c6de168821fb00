// Package cli holds the polymesh command line commands that need no window.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRootCmd returns the polymesh command with every headless subcommand
// attached. Extra commands, such as the viewer, are added alongside them.
func NewRootCmd(extra ...*cobra.Command) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "polymesh",
		Short:        "Generate, inspect, convert and view polygon meshes",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")

	root.AddCommand(
		newGenCmd(),
		newInfoCmd(),
		newConvertCmd(),
		newNormalsCmd(),
		newRecenterCmd(),
		newWeldCmd(),
	)
	root.AddCommand(extra...)
	return root
}
