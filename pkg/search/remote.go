package search

// ===== Remote Search (disabled by default) =====

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/lselvakumaran/fixinventory/pkg/client"
	"github.com/lselvakumaran/fixinventory/pkg/errors"
	"github.com/lselvakumaran/fixinventory/pkg/graph"
)

// Remote searches the backend instead of the local snapshot. It is a
// documented alternative that ships disabled: the local scan covers the
// loaded snapshot, and backend search only pays off once snapshots no longer
// fit in memory.
type Remote struct {
	// Enabled gates the feature. While false, Search returns UNSUPPORTED.
	Enabled bool

	// Client issues the one-shot search request.
	Client *client.Client

	// GraphName selects the backend graph to search.
	GraphName string
}

// Search sends the term as a single remote request and collects the streamed
// result records. The response subscription is established before the request
// is issued and torn down exactly once, on the terminal event.
func (r *Remote) Search(ctx context.Context, term string) ([]graph.Record, error) {
	if !r.Enabled {
		return nil, errors.New(errors.ErrCodeUnsupported, "remote search is disabled")
	}
	if term == "" {
		return nil, nil
	}

	req := client.Request{
		Method: "GET",
		Path:   "/graph/" + r.GraphName + "/search?term=" + url.QueryEscape(term),
	}
	sub, err := r.Client.Stream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer sub.Close()

	var records []graph.Record
	var failed error
	for ev := range sub.Events() {
		switch ev.Kind {
		case client.KindChunk:
			if failed != nil {
				continue
			}
			if rec, ok, err := parseChunk(ev.Chunk); err != nil {
				failed = err
			} else if ok {
				records = append(records, rec)
			}
		case client.KindFinished:
			if ev.Err != nil {
				failed = ev.Err
			}
		}
	}
	if failed != nil {
		return nil, failed
	}
	return records, nil
}

// parseChunk decodes one streamed chunk under the export framing rules.
func parseChunk(chunk string) (graph.Record, bool, error) {
	switch chunk {
	case "", "[", "\n]", ",\n":
		return graph.Record{}, false, nil
	}
	if strings.HasPrefix(chunk, "Error:") {
		return graph.Record{}, false, errors.New(errors.ErrCodeStreamFailed, "%s", strings.TrimSpace(chunk))
	}
	payload := strings.TrimPrefix(chunk, ",\n")
	var rec graph.Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		// Transient parse failure; skip the fragment.
		return graph.Record{}, false, nil
	}
	return rec, true, nil
}
