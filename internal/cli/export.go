package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lselvakumaran/fixinventory/pkg/layout"
	"github.com/lselvakumaran/fixinventory/pkg/session"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format        string
		out           string
		positionsFile string
		detailed      bool
	)

	cmd := &cobra.Command{
		Use:   "export [dump-file]",
		Short: "Write the positioned graph as DOT or SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

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

			dot := layout.ToDOT(snap, layout.DOTOptions{
				Detailed:  detailed,
				Positions: positions,
			})

			var data []byte
			switch strings.ToLower(format) {
			case "dot":
				data = []byte(dot)
			case "svg":
				data, err = layout.RenderSVG(cmd.Context(), dot)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported format %q (dot, svg)", format)
			}

			if out == "" {
				out = "graph." + strings.ToLower(format)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}

			printSuccess("Exported %d nodes", snap.NodeCount())
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: dot or svg")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default graph.<format>)")
	cmd.Flags().StringVarP(&positionsFile, "positions", "p", "", "position cache side file")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include node kinds in labels")
	return cmd
}
