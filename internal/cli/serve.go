package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lselvakumaran/fixinventory/pkg/graph"
	"github.com/lselvakumaran/fixinventory/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		graphName string
	)

	cmd := &cobra.Command{
		Use:   "serve [dump-file]",
		Short: "Run the demo export server",
		Long: `Serve loads a dump and speaks the chunked graph export protocol, so
"fixexplorer stream" has a local counterpart. Append ?fail=N to an export
request to inject a stream error after N records.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			var records []graph.Record
			if len(args) == 1 {
				var err error
				if records, err = graph.ReadDumpFile(args[0]); err != nil {
					return err
				}
			} else {
				snap, err := c.exampleSnapshot(cmd)
				if err != nil {
					return err
				}
				records = snapshotRecords(snap)
			}

			srv := server.New(logger)
			srv.Register(graphName, records)

			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			done := make(chan error, 1)
			go func() { done <- httpSrv.ListenAndServe() }()
			logger.Info("export server listening", "addr", addr, "graph", graphName, "records", len(records))
			printInfo("Streaming %d records at http://localhost%s/graph/%s/export", len(records), addr, graphName)

			select {
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			case err := <-done:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8900", "listen address")
	cmd.Flags().StringVarP(&graphName, "graph", "g", "resoto", "graph name to serve")
	return cmd
}
