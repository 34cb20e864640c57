package ingest

import (
	"bytes"
	"context"
	_ "embed"
)

// The bundled example dataset: a small AWS-shaped inventory used when no
// local dump exists and no remote endpoint is configured. Substituting it is
// a designed fallback, not an error.
//
//go:embed example.ndjson
var exampleDataset []byte

// FallbackSource ingests the bundled example dataset.
type FallbackSource struct{}

// Name implements Source.
func (FallbackSource) Name() string { return "example dataset" }

// Stream implements Source.
func (FallbackSource) Stream(ctx context.Context, emit *Emitter) error {
	return streamLines(ctx, bytes.NewReader(exampleDataset), int64(len(exampleDataset)), emit)
}
