package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lselvakumaran/fixinventory/pkg/graph"
	"github.com/lselvakumaran/fixinventory/pkg/ingest"
	"github.com/lselvakumaran/fixinventory/pkg/layout"
	"github.com/lselvakumaran/fixinventory/pkg/session"
)

// pickSource resolves the local ingestion source. An explicitly named dump
// must exist; otherwise the configured default dump is used when present,
// and the bundled example dataset when nothing is configured.
func (c *CLI) pickSource(explicit string) ingest.Source {
	if explicit != "" {
		return ingest.FileSource{Path: explicit}
	}
	if path := c.Config.Ingest.DumpPath; path != "" {
		if _, err := os.Stat(path); err == nil {
			return ingest.FileSource{Path: path}
		}
		c.Logger.Warn("configured dump not found, using example dataset", "path", path)
	}
	return ingest.FallbackSource{}
}

// runIngest drives one full ingestion session: pipeline events are consumed
// in delivery order, progress is surfaced through the spinner, and the
// snapshot is finalized only after the pipeline reports success.
func (c *CLI) runIngest(cmd *cobra.Command, sess *session.Session, src ingest.Source) (*graph.Snapshot, error) {
	logger := loggerFromContext(cmd.Context())

	pipe := ingest.New(src, sess.Store, logger)
	events, err := pipe.Run(cmd.Context())
	if err != nil {
		return nil, err
	}

	spin := newSpinner(cmd.Context(), fmt.Sprintf("Ingesting %s", src.Name()))
	spin.Start()
	records := 0
	for ev := range events {
		switch {
		case ev.Record != nil:
			records++
		case ev.Progress != nil:
			spin.SetMessage(fmt.Sprintf("Ingesting %s · %3.0f%% · %s",
				src.Name(), ev.Progress.Fraction*100, ev.Progress.Message))
		}
	}
	if err := pipe.Err(); err != nil {
		spin.StopWithError(fmt.Sprintf("Ingestion failed after %d records", records))
		return nil, err
	}
	spin.Stop()

	return sess.Finalize()
}

// exampleSnapshot ingests the bundled example dataset into a fresh session.
func (c *CLI) exampleSnapshot(cmd *cobra.Command) (*graph.Snapshot, error) {
	sess := session.New(loggerFromContext(cmd.Context()))
	return c.runIngest(cmd, sess, ingest.FallbackSource{})
}

// snapshotRecords flattens a snapshot back into export records, nodes first.
func snapshotRecords(snap *graph.Snapshot) []graph.Record {
	out := make([]graph.Record, 0, snap.NodeCount()+snap.EdgeCount())
	for _, n := range snap.Nodes() {
		out = append(out, graph.NodeRecord(n))
	}
	for _, e := range snap.Edges() {
		out = append(out, graph.EdgeRecord(e))
	}
	return out
}

// writeDump persists the snapshot as a line-delimited dump file.
func writeDump(snap *graph.Snapshot, path string) error {
	return graph.WriteDumpFile(snap, path)
}

// applyLayout positions every node of the snapshot: cached positions are
// used verbatim, the rest comes from the seeded fallback layout. When a side
// file is given it is both the cache source and the persistence target;
// otherwise the configured cache backend is used, keyed by snapshot hash.
func (c *CLI) applyLayout(cmd *cobra.Command, snap *graph.Snapshot, sideFile string) map[string]graph.Vector3 {
	logger := loggerFromContext(cmd.Context())

	var cached layout.PositionCache
	backend := c.newCache(cmd)
	defer backend.Close()

	if sideFile != "" {
		cached = layout.LoadPositionCache(sideFile)
	} else {
		cached = layout.LoadCached(cmd.Context(), backend, snap)
	}

	eng := layout.NewEngine(layout.Options{
		Seed:   c.Config.Layout.Seed,
		Spread: c.Config.Layout.Spread,
	}, logger)
	positions := eng.Apply(snap, cached)

	if sideFile != "" {
		if err := layout.SavePositionCache(sideFile, positions); err != nil {
			logger.Warn("could not persist position cache", "err", err)
		}
	} else if err := layout.SaveCached(cmd.Context(), backend, snap, positions); err != nil {
		logger.Warn("could not persist position cache", "err", err)
	}
	return positions
}
