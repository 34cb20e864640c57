// Command fixexplorer loads a cloud inventory graph export and explores it
// interactively from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lselvakumaran/fixinventory/internal/cli"
)

func main() {
	// Ctrl-C must tear the TUI and any in-flight stream down cleanly, so the
	// whole command tree runs under a signal-cancelled context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			// 128+SIGINT, the shell convention for an interrupted command.
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// The log level depends on a flag cobra only parses at execution time, so
	// it is applied in a pre-run hook ahead of the command's own setup.
	configPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if configPreRun != nil {
			return configPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
