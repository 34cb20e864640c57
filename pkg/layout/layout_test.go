package layout

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lselvakumaran/fixinventory/pkg/graph"
)

func snapshot(t *testing.T, records ...graph.Record) *graph.Snapshot {
	t.Helper()
	store := graph.NewStore()
	for _, rec := range records {
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

func node(id string) graph.Record {
	return graph.NodeRecord(&graph.Node{ID: id, Reported: graph.Reported{Name: id, Kind: "test"}})
}

func edge(from, to string) graph.Record {
	return graph.EdgeRecord(graph.Edge{From: from, To: to, Kind: graph.DefaultEdgeKind})
}

func TestApplyAssignsEveryNode(t *testing.T) {
	snap := snapshot(t, node("root"), node("a"), node("b"), edge("root", "a"), edge("root", "b"))
	eng := NewEngine(Options{}, nil)

	out := eng.Apply(snap, PositionCache{})

	if len(out) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(out))
	}
	for _, n := range snap.Nodes() {
		if n.Position == nil {
			t.Errorf("node %s has no position", n.ID)
		}
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	build := func() *graph.Snapshot {
		return snapshot(t, node("root"), node("a"), node("b"), node("c"),
			edge("root", "a"), edge("root", "b"), edge("a", "c"))
	}
	eng := NewEngine(Options{Seed: 7}, nil)

	first := eng.Apply(build(), PositionCache{})
	second := eng.Apply(build(), PositionCache{})

	for id, p := range first {
		if second[id] != p {
			t.Errorf("node %s moved between runs: %v vs %v", id, p, second[id])
		}
	}
}

func TestApplySeedChangesLayout(t *testing.T) {
	snap1 := snapshot(t, node("a"), node("b"))
	snap2 := snapshot(t, node("a"), node("b"))

	p1 := NewEngine(Options{Seed: 1}, nil).Apply(snap1, PositionCache{})
	p2 := NewEngine(Options{Seed: 999}, nil).Apply(snap2, PositionCache{})

	if p1["a"] == p2["a"] && p1["b"] == p2["b"] {
		t.Error("different seeds produced identical layouts")
	}
}

func TestApplyUsesCacheVerbatim(t *testing.T) {
	snap := snapshot(t, node("a"), node("b"))
	cached := graph.Vector3{X: 12.5, Y: -3, Z: 99}
	eng := NewEngine(Options{}, nil)

	out := eng.Apply(snap, PositionCache{"a": cached})

	if out["a"] != cached {
		t.Errorf("cached position not used verbatim: got %v", out["a"])
	}
	if out["b"] == (graph.Vector3{}) {
		t.Error("uncached node got zero position")
	}
}

func TestDepthLayering(t *testing.T) {
	snap := snapshot(t, node("root"), node("child"), edge("root", "child"))
	eng := NewEngine(Options{}, nil)

	out := eng.Apply(snap, PositionCache{})

	if out["root"].Y != 0 {
		t.Errorf("root should sit at depth 0, got Y=%v", out["root"].Y)
	}
	if out["child"].Y >= out["root"].Y {
		t.Errorf("child should sit below root: child Y=%v root Y=%v", out["child"].Y, out["root"].Y)
	}
}

// ===== Position Cache =====

func TestPositionCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.json")
	in := map[string]graph.Vector3{
		"a": {X: 1, Y: 2, Z: 3},
		"b": {X: -4.5, Y: 0, Z: 7},
	}

	if err := SavePositionCache(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out := LoadPositionCache(path)

	if len(out) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(out))
	}
	for id, p := range in {
		if out[id] != p {
			t.Errorf("entry %s: got %v, want %v", id, out[id], p)
		}
	}
}

func TestLoadPositionCacheTolerant(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"missing file", "", 0},
		{"not json", "not json at all", 0},
		{"top level array", `[1, 2, 3]`, 0},
		{"top level scalar", `42`, 0},
		{"bad entry skipped", `{"good": [1,2,3], "bad": "nope"}`, 1},
		{"object form accepted", `{"a": {"x": 1, "y": 2, "z": 3}}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cache.json")
			if tt.content != "" {
				if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			got := LoadPositionCache(path)
			if got == nil {
				t.Fatal("cache must never be nil")
			}
			if len(got) != tt.want {
				t.Errorf("expected %d entries, got %d", tt.want, len(got))
			}
		})
	}
}

// ===== DOT Export =====

func TestToDOT(t *testing.T) {
	snap := snapshot(t, node("web"), node("db"), edge("web", "db"))

	dot := ToDOT(snap, DOTOptions{})

	if !strings.HasPrefix(dot, "digraph G {") {
		t.Error("missing digraph header")
	}
	for _, want := range []string{`"web" [`, `"db" [`, `"web" -> "db";`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailedIncludesKind(t *testing.T) {
	snap := snapshot(t, node("web"))

	dot := ToDOT(snap, DOTOptions{Detailed: true})

	if !strings.Contains(dot, `label="web\ntest"`) {
		t.Errorf("detailed label should include kind:\n%s", dot)
	}
}

func TestToDOTPinsPositions(t *testing.T) {
	snap := snapshot(t, node("web"))
	positions := map[string]graph.Vector3{"web": {X: 40, Y: 0, Z: -80}}

	dot := ToDOT(snap, DOTOptions{Positions: positions})

	if !strings.Contains(dot, `pos="10.00,-20.00!"`) {
		t.Errorf("expected pinned position attribute:\n%s", dot)
	}
}
