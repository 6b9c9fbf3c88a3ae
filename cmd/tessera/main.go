// Command tessera is the tiling window manager's process entrypoint:
// it loads configuration, opens the platform backend, and runs the
// single-threaded event pump for the lifetime of the process.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "tessera",
		Short: "A minimal tiling window manager core",
	}

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCommand(&verbose))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the tessera version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(os.Stdout, version)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
