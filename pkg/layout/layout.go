// Package layout assigns every node of a snapshot a spatial position.
//
// Positions come from two places, merged per node: a persisted position
// cache (used verbatim on hit) and a computed fallback layout for everything
// the cache doesn't cover. The fallback is a ringed golden-angle scatter:
// nodes are layered by their depth from the graph roots, each layer forms a
// ring, and nodes spread along the ring at the golden angle so neighbors in
// ingestion order don't clump. The algorithm is deterministic for the same
// snapshot and seed.
package layout

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/lselvakumaran/fixinventory/pkg/graph"
)

// DefaultSeed is the default random seed for reproducibility.
const DefaultSeed = uint64(42)

// goldenAngle spreads consecutive nodes around a ring without clumping.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Options configures the fallback layout.
type Options struct {
	// Seed rotates the whole layout; the same seed reproduces the same
	// positions for the same snapshot.
	Seed uint64

	// Spread is the base ring radius in world units per depth level.
	Spread float64

	// LevelHeight is the vertical distance between depth levels.
	LevelHeight float64
}

// withDefaults fills zero fields.
func (o Options) withDefaults() Options {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Spread == 0 {
		o.Spread = 120
	}
	if o.LevelHeight == 0 {
		o.LevelHeight = 90
	}
	return o
}

// Engine computes node positions.
type Engine struct {
	opts   Options
	logger *log.Logger
}

// NewEngine creates a layout engine.
func NewEngine(opts Options, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{opts: opts.withDefaults(), logger: logger}
}

// Apply assigns a position to every node of the snapshot: the cached value
// verbatim if present, otherwise the computed fallback. It returns the full
// id → position mapping, suitable for persisting as the next position cache.
func (e *Engine) Apply(snap *graph.Snapshot, cache PositionCache) map[string]graph.Vector3 {
	computed := e.compute(snap)
	out := make(map[string]graph.Vector3, snap.NodeCount())

	hits := 0
	for _, n := range snap.Nodes() {
		pos, ok := cache[n.ID]
		if ok {
			hits++
		} else {
			pos = computed[n.ID]
		}
		p := pos
		n.Position = &p
		out[n.ID] = pos
	}
	e.logger.Debug("layout applied", "nodes", snap.NodeCount(), "cached", hits)
	return out
}

// compute runs the fallback layout for all nodes.
func (e *Engine) compute(snap *graph.Snapshot) map[string]graph.Vector3 {
	depths := nodeDepths(snap)

	// Group nodes per depth level, keeping ingestion order.
	levels := make(map[int][]string)
	maxDepth := 0
	for _, n := range snap.Nodes() {
		d := depths[n.ID]
		levels[d] = append(levels[d], n.ID)
		if d > maxDepth {
			maxDepth = d
		}
	}

	phase := float64(e.opts.Seed%3600) / 3600 * 2 * math.Pi
	out := make(map[string]graph.Vector3, snap.NodeCount())
	for depth := 0; depth <= maxDepth; depth++ {
		ids := levels[depth]
		if len(ids) == 0 {
			continue
		}
		// Ring radius grows with both depth and occupancy so dense levels
		// don't overlap.
		radius := e.opts.Spread * (1 + float64(depth)) * (1 + math.Sqrt(float64(len(ids)))/10)
		for i, id := range ids {
			angle := phase + float64(i)*goldenAngle
			out[id] = graph.Vector3{
				X: radius * math.Cos(angle),
				Y: -float64(depth) * e.opts.LevelHeight,
				Z: radius * math.Sin(angle),
			}
		}
	}
	return out
}

// nodeDepths returns each node's BFS depth from the root set. Roots are
// nodes without incoming edges; nodes unreachable from any root keep the
// depth of their shallowest incoming neighbor, or zero.
func nodeDepths(snap *graph.Snapshot) map[string]int {
	incoming := make(map[string]int)
	children := make(map[string][]string)
	for _, e := range snap.Edges() {
		incoming[e.To]++
		children[e.From] = append(children[e.From], e.To)
	}

	depths := make(map[string]int, snap.NodeCount())
	var frontier []string
	for _, n := range snap.Nodes() {
		if incoming[n.ID] == 0 {
			depths[n.ID] = 0
			frontier = append(frontier, n.ID)
		}
	}

	for len(frontier) > 0 {
		var next []string
		for _, id := range frontier {
			for _, child := range children[id] {
				if _, seen := depths[child]; seen {
					continue
				}
				depths[child] = depths[id] + 1
				next = append(next, child)
			}
		}
		frontier = next
	}
	return depths
}
