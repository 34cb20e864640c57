// Package ingest implements the ingestion pipeline: it turns a record source
// (local dump file, remote chunk stream, or the bundled example dataset) into
// appends on a graph store plus a sequence of progress events, without ever
// blocking the consumer for long stretches.
//
// # Architecture
//
// A Pipeline couples one Source with one graph.Store for exactly one load
// session:
//
//	Source → Pipeline → Store appends + Event channel (records, progress)
//
// The pipeline is the store's only writer; records are appended in delivery
// order. A pipeline is finite and not restartable - a second Run returns
// ErrAlreadyRan. The terminal outcome is binary: nil, or a single error
// (typically STREAM_FAILED), readable via Err after the event channel closes.
// Record-level parse failures never escape; they are logged and skipped.
//
// On a stream-level failure the pipeline discards the store, so a failed load
// never leaves a partial graph behind.
//
// # Usage
//
//	p := ingest.New(ingest.FileSource{Path: "graph.ndjson"}, store, logger)
//	events, err := p.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	for ev := range events {
//	    if ev.Progress != nil {
//	        render(ev.Progress.Fraction, ev.Progress.Message)
//	    }
//	}
//	if err := p.Err(); err != nil {
//	    return err // store already discarded
//	}
//	snap, err := store.Finalize()
package ingest

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lselvakumaran/fixinventory/pkg/errors"
	"github.com/lselvakumaran/fixinventory/pkg/graph"
	"github.com/lselvakumaran/fixinventory/pkg/observability"
)

// ErrAlreadyRan is returned by Run when the pipeline was started before.
// Pipelines are single-session; build a new one for a new load.
var ErrAlreadyRan = stderrors.New("pipeline already ran")

// Progress reports how far ingestion has advanced. Fraction is in [0, 1] and
// non-decreasing across one session; it reaches exactly 1.0 once, at the end
// of a successful session.
type Progress struct {
	Fraction float64
	Message  string
}

// Event is one element of the pipeline's output sequence: a record that was
// appended, or a progress report. Exactly one field is non-nil.
type Event struct {
	Record   *graph.Record
	Progress *Progress
}

// Source produces records and progress for one session.
type Source interface {
	// Name identifies the source in logs and progress messages.
	Name() string

	// Stream delivers all records into the emitter. Returning an error marks
	// the whole session as failed.
	Stream(ctx context.Context, emit *Emitter) error
}

// =============================================================================
// Pipeline
// =============================================================================

// Pipeline drives one ingestion session.
type Pipeline struct {
	src    Source
	store  *graph.Store
	logger *log.Logger

	ran    bool
	err    error
	events chan Event
}

// New creates a pipeline for one session. The store must be fresh; the
// pipeline becomes its only writer.
func New(src Source, store *graph.Store, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		src:    src,
		store:  store,
		logger: logger,
		events: make(chan Event),
	}
}

// Run starts ingestion and returns the event channel. The channel closes
// after the terminal event; Err is valid from that point on. Run returns
// ErrAlreadyRan if called a second time.
func (p *Pipeline) Run(ctx context.Context) (<-chan Event, error) {
	if p.ran {
		return nil, ErrAlreadyRan
	}
	p.ran = true

	go p.run(ctx)
	return p.events, nil
}

// Err returns the terminal outcome of the session. It must only be consulted
// after the event channel has closed.
func (p *Pipeline) Err() error {
	return p.err
}

func (p *Pipeline) run(ctx context.Context) {
	defer close(p.events)

	name := p.src.Name()
	start := time.Now()
	observability.Ingest().OnIngestStart(ctx, name)
	p.logger.Debug("ingestion started", "source", name)

	emit := &Emitter{pipeline: p, ctx: ctx, source: name}
	err := p.src.Stream(ctx, emit)

	switch {
	case err != nil:
		// A failed session never leaves a partial graph behind.
		p.store.Discard()
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeStreamFailed, err, "ingest %s", name)
		}
		p.err = err
		p.logger.Error("ingestion failed", "source", name, "err", err)
	default:
		emit.finish("done")
		p.logger.Debug("ingestion complete",
			"source", name,
			"nodes", p.store.NodeCount(),
			"edges", p.store.EdgeCount(),
			"elapsed", time.Since(start).Round(time.Millisecond))
	}
	observability.Ingest().OnIngestComplete(ctx, name, emit.records, time.Since(start), p.err)
}

// =============================================================================
// Emitter
// =============================================================================

// Emitter is the sink a Source writes into. It appends records to the store,
// forwards them on the event channel, and enforces the progress contract
// (monotone, 1.0 only at the end).
type Emitter struct {
	pipeline *Pipeline
	ctx      context.Context
	source   string

	records  int
	fraction float64
	done     bool // true once the final 1.0 went out
}

// Record appends one record to the store and emits it.
func (e *Emitter) Record(rec graph.Record) error {
	if err := e.pipeline.store.Append(rec); err != nil {
		return err
	}
	e.records++
	e.send(Event{Record: &rec})
	return nil
}

// Skip records a non-fatal per-record failure: logged, counted by hooks,
// never surfaced to the session outcome.
func (e *Emitter) Skip(err error) {
	e.pipeline.logger.Debug("record skipped", "source", e.source, "err", err)
	observability.Ingest().OnRecordSkipped(e.ctx, e.source, err)
}

// Progress emits an intermediate progress event. Regressing fractions are
// lifted to the high-water mark, and reports at or above 1.0 are dropped:
// the exact 1.0 is reserved for the terminal report, so it appears exactly
// once per successful session.
func (e *Emitter) Progress(fraction float64, message string) {
	if e.done || fraction >= 1.0 {
		return
	}
	if fraction < e.fraction {
		fraction = e.fraction
	}
	e.fraction = fraction
	observability.Ingest().OnProgress(e.ctx, e.source, fraction)
	e.send(Event{Progress: &Progress{Fraction: fraction, Message: message}})
}

// finish emits the terminal 1.0 progress report.
func (e *Emitter) finish(message string) {
	if e.done {
		return
	}
	e.done = true
	e.fraction = 1.0
	observability.Ingest().OnProgress(e.ctx, e.source, 1.0)
	e.send(Event{Progress: &Progress{Fraction: 1.0, Message: message}})
}

func (e *Emitter) send(ev Event) {
	select {
	case e.pipeline.events <- ev:
	case <-e.ctx.Done():
	}
}
