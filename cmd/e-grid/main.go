// Command e-grid is the process entry point for both roles this module
// ships: the server (spec component C7, everything under internal/server)
// and an interactive client (spec component C8, internal/client),
// following the teacher's cmd/termtile single-binary-multiple-subcommands
// shape but dispatched through github.com/spf13/cobra instead of a
// hand-rolled flag/switch table.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davehorner/e-grid/internal/logging"
)

func main() {
	logging.LoadEnv()
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeForError(err)
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "e-grid",
		Short: "E-Grid window-management fabric: server and client",
		Long: "e-grid runs either the grid server (window tracking, animation, IPC fan-out)\n" +
			"or an interactive client that attaches to a running server.\n\n" +
			"With no subcommand, e-grid auto-detects: if a server is already reachable it\n" +
			"attaches an interactive client, otherwise it starts the server and spawns a\n" +
			"detached client against it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAutoDetect(cmd.Context())
		},
	}

	root.AddCommand(newServerCmd())
	root.AddCommand(newClientCmd())
	return root
}

// exitCodeForError maps a returned error to spec §6's process exit codes:
// 0 normal, 1 initialization failure, 2 incompatible monitor
// configuration.
func exitCodeForError(err error) int {
	var monErr incompatibleMonitorError
	if errors.As(err, &monErr) {
		return 2
	}
	return 1
}

type incompatibleMonitorError struct{ reason string }

func (e incompatibleMonitorError) Error() string { return "incompatible monitor configuration: " + e.reason }
