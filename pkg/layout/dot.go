package layout

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/lselvakumaran/fixinventory/pkg/graph"
)

// DOTOptions configures DOT export.
type DOTOptions struct {
	// Detailed includes the node kind in labels. When false, only the
	// display name is shown.
	Detailed bool

	// Positions pins nodes to their layout positions (projected onto the
	// XZ plane) instead of letting Graphviz place them. Render pinned
	// graphs with the neato engine.
	Positions map[string]graph.Vector3
}

// ToDOT converts a snapshot to Graphviz DOT format. The resulting string can
// be rendered with [RenderSVG] or fed to any Graphviz tool.
func ToDOT(snap *graph.Snapshot, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range snap.Nodes() {
		attrs := fmtAttrs(n, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range snap.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n *graph.Node, opts DOTOptions) []string {
	label := n.DisplayName()
	if opts.Detailed && n.Reported.Kind != "" {
		label += "\n" + n.Reported.Kind
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if pos, ok := opts.Positions[n.ID]; ok {
		// Graphviz points; scale down world units so neato output stays
		// readable.
		attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"", pos.X/4, pos.Z/4))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
