package cli

import (
	"github.com/spf13/cobra"

	"github.com/lselvakumaran/fixinventory/pkg/catalog"
	"github.com/lselvakumaran/fixinventory/pkg/search"
	"github.com/lselvakumaran/fixinventory/pkg/session"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var dump string

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search the loaded snapshot and query catalog",
		Long: `Search runs one bounded, case-insensitive substring search: nodes match on
their display name, canned queries on short name and description. Each result
list is capped at 30 entries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			cat, err := catalog.Load(c.Config.Ingest.QueryCatalog)
			if err != nil {
				return err
			}

			sess := session.New(logger)
			snap, err := c.runIngest(cmd, sess, c.pickSource(dump))
			if err != nil {
				return err
			}

			idx := search.New(cat, logger)
			idx.SetSnapshot(snap)
			res := idx.Search(args[0])

			if res.Empty() {
				printInfo("No matches for %q", args[0])
				return nil
			}
			if len(res.Nodes) > 0 {
				printInfo("Nodes (%d)", len(res.Nodes))
				for _, e := range res.Nodes {
					printDetail("%s  %s", e.Label, StyleDim.Render(e.Detail))
				}
			}
			if len(res.Queries) > 0 {
				printInfo("Queries (%d)", len(res.Queries))
				for _, e := range res.Queries {
					printDetail("%s  %s", e.Label, StyleDim.Render(e.Detail))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dump, "dump", "d", "", "dump file to search (default from config)")
	return cmd
}
