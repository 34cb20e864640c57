package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lselvakumaran/fixinventory/pkg/client"
	"github.com/lselvakumaran/fixinventory/pkg/errors"
	"github.com/lselvakumaran/fixinventory/pkg/graph"
)

// StreamSource ingests a remote graph export through the chunk transport.
//
// Chunk handling rules:
//   - "", "[", "\n]" and ",\n" are pure framing, discarded
//   - a chunk with the literal prefix "Error:" fails the whole session; the
//     stream is still drained to its finished event so teardown happens, but
//     no further record is appended
//   - any other chunk has a leading ",\n" stripped and is parsed as exactly
//     one JSON record; a parse failure is logged and skipped
//
// If the transport announces a total element count before the first record,
// progress is reported roughly every 1% of expected elements instead of on
// every record.
type StreamSource struct {
	Client *client.Client
	Req    client.Request
}

// Name implements Source.
func (s StreamSource) Name() string { return "stream:" + s.Req.Path }

// Stream implements Source. The subscription is established before any chunk
// is consumed and torn down exactly once.
func (s StreamSource) Stream(ctx context.Context, emit *Emitter) error {
	sub, err := s.Client.Stream(ctx, s.Req)
	if err != nil {
		return err
	}
	defer sub.Close()

	var dec chunkDecoder
	for ev := range sub.Events() {
		if err := dec.event(ev, emit); err != nil {
			return err
		}
	}
	return dec.failed
}

// =============================================================================
// Chunk Decoder
// =============================================================================

// framing chunks carry no payload.
var framing = map[string]struct{}{
	"":    {},
	"[":   {},
	"\n]": {},
	",\n": {},
}

// chunkDecoder applies the chunk rules to one event sequence. Once failed is
// set it stays set for the session: later chunks are drained, not appended.
type chunkDecoder struct {
	failed   error
	total    int
	modulus  int
	received int
}

// event consumes one subscription event. The returned error is a store
// append failure; stream-level failure is tracked in dec.failed so the
// stream can still be drained to its terminal event.
func (d *chunkDecoder) event(ev client.Event, emit *Emitter) error {
	switch ev.Kind {
	case client.KindTotal:
		d.total = ev.Total
		if d.modulus = d.total / 100; d.modulus < 1 {
			d.modulus = 1
		}

	case client.KindChunk:
		if d.failed != nil {
			return nil
		}
		if _, ok := framing[ev.Chunk]; ok {
			return nil
		}
		if strings.HasPrefix(ev.Chunk, "Error:") {
			d.failed = errors.New(errors.ErrCodeStreamFailed, "%s",
				strings.TrimSpace(strings.TrimPrefix(ev.Chunk, "Error:")))
			return nil
		}

		payload := strings.TrimPrefix(ev.Chunk, ",\n")
		var rec graph.Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			emit.Skip(errors.Wrap(errors.ErrCodeInvalidRecord, err, "chunk %d", d.received))
			return nil
		}
		if err := emit.Record(rec); err != nil {
			return err
		}
		d.received++
		if d.modulus > 0 && d.received%d.modulus == 0 && d.total > 0 {
			emit.Progress(float64(d.received)/float64(d.total),
				fmt.Sprintf("%d of %d elements", d.received, d.total))
		}

	case client.KindFinished:
		if d.failed == nil && ev.Err != nil {
			d.failed = ev.Err
		}
	}
	return nil
}
