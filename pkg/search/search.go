// Package search provides bounded substring search over the loaded snapshot
// and the static query catalog.
//
// # Behavior
//
// Each input change discards the previous result arena (interaction handlers
// are detached before disposal) and schedules an evaluation one tick later,
// so bursts of fast edits collapse into a single scan. Evaluation is a
// case-insensitive substring match: nodes on their display name, queries on
// the concatenation of short name and description. Both result lists are
// capped at MaxResults entries in catalog iteration order.
package search

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lselvakumaran/fixinventory/pkg/catalog"
	"github.com/lselvakumaran/fixinventory/pkg/graph"
)

// MaxResults caps each result list. The cap bounds rendering cost of a
// catalog scan; it is not pagination.
const MaxResults = 30

// Entry is one lightweight result record. Entries live for exactly one
// evaluation: the next evaluation disposes them and builds fresh ones, so no
// identity is ever reused across evaluations.
type Entry struct {
	NodeID  string // set for node results
	QueryID string // set for query results
	Label   string
	Detail  string

	onSelect func()
}

// Select invokes the entry's interaction handler. Selecting a disposed entry
// is a no-op; its handler was detached.
func (e *Entry) Select() {
	if e.onSelect != nil {
		e.onSelect()
	}
}

func (e *Entry) detach() { e.onSelect = nil }

// Results is one evaluation's arena of entries.
type Results struct {
	Nodes   []*Entry
	Queries []*Entry
}

// Empty reports whether both lists are empty (panels hidden).
func (r *Results) Empty() bool {
	return r == nil || (len(r.Nodes) == 0 && len(r.Queries) == 0)
}

// dispose detaches every handler before the arena is dropped, so a stale
// entry held by the presentation layer can't fire a dangling callback.
func (r *Results) dispose() {
	if r == nil {
		return
	}
	for _, e := range r.Nodes {
		e.detach()
	}
	for _, e := range r.Queries {
		e.detach()
	}
}

// Index evaluates searches against the current snapshot and catalog.
// Not safe for concurrent use; the owner's tick loop is the single caller.
type Index struct {
	catalog *catalog.Catalog
	snap    *graph.Snapshot
	logger  *log.Logger

	onSelectNode  func(nodeID string)
	onSelectQuery func(q catalog.Query)
	onResults     func(*Results)

	current *Results
	pending *string
}

// Option customizes an Index.
type Option func(*Index)

// WithSelectNode registers the handler attached to node entries.
func WithSelectNode(fn func(nodeID string)) Option {
	return func(i *Index) { i.onSelectNode = fn }
}

// WithSelectQuery registers the handler attached to query entries.
func WithSelectQuery(fn func(q catalog.Query)) Option {
	return func(i *Index) { i.onSelectQuery = fn }
}

// WithResults registers the callback receiving each evaluation's arena.
func WithResults(fn func(*Results)) Option {
	return func(i *Index) { i.onResults = fn }
}

// New creates an index over the catalog. Attach a snapshot with SetSnapshot.
func New(cat *catalog.Catalog, logger *log.Logger, options ...Option) *Index {
	if logger == nil {
		logger = log.Default()
	}
	i := &Index{catalog: cat, logger: logger}
	for _, o := range options {
		o(i)
	}
	return i
}

// SetSnapshot swaps the searched snapshot. Current results are disposed;
// they referenced nodes the new snapshot may not contain.
func (i *Index) SetSnapshot(snap *graph.Snapshot) {
	i.snap = snap
	i.current.dispose()
	i.current = nil
	i.pending = nil
}

// Input records a term edit: the previous arena is disposed immediately and
// the evaluation waits for the next Tick.
func (i *Index) Input(term string) {
	i.current.dispose()
	i.current = nil
	i.pending = &term
}

// Tick runs at most one pending evaluation. The owner drives it from its
// scheduling loop; one tick of delay is the debounce.
func (i *Index) Tick() {
	if i.pending == nil {
		return
	}
	term := *i.pending
	i.pending = nil
	i.current = i.Search(term)
	if i.onResults != nil {
		i.onResults(i.current)
	}
}

// Results returns the arena of the most recent evaluation.
func (i *Index) Results() *Results { return i.current }

// Search evaluates a term immediately, bypassing the debounce. An empty term
// short-circuits to empty results without scanning.
func (i *Index) Search(term string) *Results {
	res := &Results{}
	if term == "" {
		return res
	}
	needle := strings.ToLower(term)

	if i.snap != nil {
		for _, n := range i.snap.Nodes() {
			if len(res.Nodes) >= MaxResults {
				break
			}
			if !strings.Contains(strings.ToLower(n.DisplayName()), needle) {
				continue
			}
			id := n.ID
			res.Nodes = append(res.Nodes, &Entry{
				NodeID: id,
				Label:  n.DisplayName(),
				Detail: n.Reported.Kind,
				onSelect: func() {
					if i.onSelectNode != nil {
						i.onSelectNode(id)
					}
				},
			})
		}
	}

	for _, q := range i.catalog.Queries() {
		if len(res.Queries) >= MaxResults {
			break
		}
		if !strings.Contains(strings.ToLower(q.ShortName+q.Description), needle) {
			continue
		}
		q := q
		res.Queries = append(res.Queries, &Entry{
			QueryID: q.ID,
			Label:   q.ShortName,
			Detail:  q.Description,
			onSelect: func() {
				if i.onSelectQuery != nil {
					i.onSelectQuery(q)
				}
			},
		})
	}

	i.logger.Debug("search evaluated", "term", term,
		"nodes", len(res.Nodes), "queries", len(res.Queries))
	return res
}
