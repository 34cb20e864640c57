package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lselvakumaran/fixinventory/pkg/session"
)

// loadCommand creates the load command.
func (c *CLI) loadCommand() *cobra.Command {
	var positionsFile string

	cmd := &cobra.Command{
		Use:   "load [dump-file]",
		Short: "Ingest a local graph dump and report the snapshot",
		Long: `Load ingests a line-delimited JSON graph dump, assembles the snapshot and
assigns every node a position. Without an argument the configured default
dump is used, falling back to the bundled example dataset.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			track := newProgress(logger)

			var dump string
			if len(args) == 1 {
				dump = args[0]
			}
			sess := session.New(logger)
			snap, err := c.runIngest(cmd, sess, c.pickSource(dump))
			if err != nil {
				return err
			}

			positions := c.applyLayout(cmd, snap, positionsFile)
			sess.SetPositions(positions)

			printSuccess("Loaded %s", StyleHighlight.Render(snap.Hash()[:12]))
			printStats(snap.NodeCount(), snap.EdgeCount(), 0)
			track.done(fmt.Sprintf("Ingested %d nodes and %d edges", snap.NodeCount(), snap.EdgeCount()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&positionsFile, "positions", "p", "", "position cache side file (read and updated)")
	return cmd
}
