package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/lselvakumaran/fixinventory/pkg/catalog"
	"github.com/lselvakumaran/fixinventory/pkg/errors"
	"github.com/lselvakumaran/fixinventory/pkg/graph"
)

func testSnapshot(t *testing.T, names ...string) *graph.Snapshot {
	t.Helper()
	store := graph.NewStore()
	for i, name := range names {
		rec := graph.NodeRecord(&graph.Node{
			ID:       fmt.Sprintf("n%d", i),
			Reported: graph.Reported{Name: name, Kind: "resource"},
		})
		if err := store.Append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	snap, err := store.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return snap
}

func TestSearchSubstring(t *testing.T) {
	idx := New(catalog.Defaults(), nil)
	idx.SetSnapshot(testSnapshot(t, "database", "web-server"))

	res := idx.Search("dat")

	if len(res.Nodes) != 1 || res.Nodes[0].Label != "database" {
		t.Errorf("search(dat) nodes = %v, want exactly [database]", labels(res.Nodes))
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	idx := New(catalog.Defaults(), nil)
	idx.SetSnapshot(testSnapshot(t, "Database", "web-server"))

	upper := idx.Search("DATABASE")
	lower := idx.Search("database")

	if len(upper.Nodes) != 1 || len(lower.Nodes) != 1 {
		t.Fatalf("expected one node match each, got %d and %d", len(upper.Nodes), len(lower.Nodes))
	}
	if upper.Nodes[0].NodeID != lower.Nodes[0].NodeID {
		t.Error("case variants returned different results")
	}
	if len(upper.Queries) != len(lower.Queries) {
		t.Error("query match counts differ between case variants")
	}
}

func TestSearchCapped(t *testing.T) {
	names := make([]string, 100)
	for i := range names {
		names[i] = fmt.Sprintf("instance-%03d", i)
	}
	idx := New(catalog.Defaults(), nil)
	idx.SetSnapshot(testSnapshot(t, names...))

	res := idx.Search("instance")

	if len(res.Nodes) != MaxResults {
		t.Errorf("node results = %d, want capped at %d", len(res.Nodes), MaxResults)
	}
	// Catalog iteration order, not relevance.
	if res.Nodes[0].Label != "instance-000" {
		t.Errorf("first result = %s, want instance-000", res.Nodes[0].Label)
	}
}

func TestSearchEmptyTerm(t *testing.T) {
	idx := New(catalog.Defaults(), nil)
	idx.SetSnapshot(testSnapshot(t, "database"))

	res := idx.Search("")

	if !res.Empty() {
		t.Error("empty term should yield empty results without scanning")
	}
}

func TestSearchMatchesQueries(t *testing.T) {
	idx := New(catalog.Defaults(), nil)

	res := idx.Search("expired")

	if len(res.Queries) < 2 {
		t.Fatalf("expected built-in expired queries, got %v", labels(res.Queries))
	}
	for _, e := range res.Queries {
		if e.QueryID == "" {
			t.Error("query entry without id")
		}
	}
}

func TestDebounceCoalescesEdits(t *testing.T) {
	evaluations := 0
	idx := New(catalog.Defaults(), nil, WithResults(func(*Results) { evaluations++ }))
	idx.SetSnapshot(testSnapshot(t, "database"))

	idx.Input("d")
	idx.Input("da")
	idx.Input("dat")
	if evaluations != 0 {
		t.Fatal("evaluation must wait for the tick")
	}

	idx.Tick()
	if evaluations != 1 {
		t.Errorf("burst of edits evaluated %d times, want 1", evaluations)
	}
	if got := idx.Results(); len(got.Nodes) != 1 {
		t.Errorf("results = %v, want [database]", labels(got.Nodes))
	}

	idx.Tick()
	if evaluations != 1 {
		t.Error("tick without pending input must not re-evaluate")
	}
}

func TestInputDisposesPreviousArena(t *testing.T) {
	selected := 0
	idx := New(catalog.Defaults(), nil, WithSelectNode(func(string) { selected++ }))
	idx.SetSnapshot(testSnapshot(t, "database"))

	idx.Input("data")
	idx.Tick()
	stale := idx.Results().Nodes[0]
	stale.Select()
	if selected != 1 {
		t.Fatal("live entry should dispatch")
	}

	idx.Input("web")
	stale.Select()
	if selected != 1 {
		t.Error("disposed entry fired its handler")
	}

	idx.Tick()
	if idx.Results() == nil {
		t.Fatal("second evaluation missing")
	}
}

func TestArenaEntriesAreFreshPerEvaluation(t *testing.T) {
	idx := New(catalog.Defaults(), nil)
	idx.SetSnapshot(testSnapshot(t, "database"))

	first := idx.Search("data").Nodes[0]
	second := idx.Search("data").Nodes[0]

	if first == second {
		t.Error("entry identity reused across evaluations")
	}
}

func TestSelectNodeHandler(t *testing.T) {
	var picked string
	idx := New(catalog.Defaults(), nil, WithSelectNode(func(id string) { picked = id }))
	idx.SetSnapshot(testSnapshot(t, "database"))

	idx.Search("data").Nodes[0].Select()

	if picked != "n0" {
		t.Errorf("selected node = %q, want n0", picked)
	}
}

func TestRemoteDisabled(t *testing.T) {
	r := &Remote{}
	_, err := r.Search(context.Background(), "database")
	if errors.GetCode(err) != errors.ErrCodeUnsupported {
		t.Errorf("disabled remote search should be UNSUPPORTED, got %v", err)
	}
}

func TestParseChunk(t *testing.T) {
	tests := []struct {
		chunk   string
		want    bool
		wantErr bool
	}{
		{"", false, false},
		{"[", false, false},
		{"\n]", false, false},
		{",\n", false, false},
		{`{"id":"a"}`, true, false},
		{",\n{\"id\":\"b\"}", true, false},
		{"\n{\"id\":\"c\"}", true, false},
		{"Error: backend exploded", false, true},
		{"{not json", false, false},
	}
	for _, tt := range tests {
		rec, ok, err := parseChunk(tt.chunk)
		if ok != tt.want {
			t.Errorf("parseChunk(%q) ok = %v, want %v", tt.chunk, ok, tt.want)
		}
		if (err != nil) != tt.wantErr {
			t.Errorf("parseChunk(%q) err = %v", tt.chunk, err)
		}
		if ok && rec.Node == nil {
			t.Errorf("parseChunk(%q) returned empty record", tt.chunk)
		}
	}
}

func labels(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label
	}
	return out
}
