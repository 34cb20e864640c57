package graph

import (
	"encoding/json"
	"fmt"
	"math"
)

// =============================================================================
// Record Types - Single Source of Truth
// =============================================================================

// Record types as they appear on the wire.
const (
	TypeNode = "node"
	TypeEdge = "edge"
)

// DefaultEdgeKind is assumed when an edge record carries no edge_type.
const DefaultEdgeKind = "dependency"

// =============================================================================
// Vector3 - Spatial Position
// =============================================================================

// Vector3 is a position or displacement in world units.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vector3) Sub(o Vector3) Vector3 { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v scaled by s.
func (v Vector3) Scale(s float64) Vector3 { return Vector3{v.X * s, v.Y * s, v.Z * s} }

// Length returns the Euclidean norm of v.
func (v Vector3) Length() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Vector3) float64 { return a.Sub(b).Length() }

// Lerp linearly interpolates from a to b. t is not clamped.
func Lerp(a, b Vector3, t float64) Vector3 {
	return Vector3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// =============================================================================
// Reported - Collector Payload
// =============================================================================

// Reported is the collector-reported section of a node. Name and Kind are the
// two fields the explorer reads; everything else a collector attached is kept
// verbatim in Extra so unknown fields survive a round-trip.
type Reported struct {
	Name  string
	Kind  string
	Extra map[string]any
}

// MarshalJSON flattens Name, Kind and Extra into a single object.
func (r Reported) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+2)
	for k, v := range r.Extra {
		out[k] = v
	}
	if r.Name != "" {
		out["name"] = r.Name
	}
	if r.Kind != "" {
		out["kind"] = r.Kind
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the object into the typed fields and Extra.
func (r *Reported) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Reported{}
	for k, v := range raw {
		switch k {
		case "name":
			if s, ok := v.(string); ok {
				r.Name = s
				continue
			}
		case "kind":
			if s, ok := v.(string); ok {
				r.Kind = s
				continue
			}
		}
		if r.Extra == nil {
			r.Extra = make(map[string]any)
		}
		r.Extra[k] = v
	}
	return nil
}

// =============================================================================
// Node and Edge
// =============================================================================

// Node is a vertex of a graph snapshot. Position is assigned by the layout
// engine after ingestion completes; a node without a position is not eligible
// for selection or camera focus. Selected is owned by the camera controller.
type Node struct {
	ID       string
	Reported Reported
	Position *Vector3
	Selected bool
}

// DisplayName returns the reported name if set, otherwise the ID.
func (n *Node) DisplayName() string {
	if n.Reported.Name != "" {
		return n.Reported.Name
	}
	return n.ID
}

// Edge is a directed connection between two nodes. Either endpoint may
// reference a node that has not been ingested yet; edges are resolved lazily
// and dangling endpoints are only dropped at snapshot finalization.
type Edge struct {
	From string
	To   string
	Kind string
}

// =============================================================================
// Record - One Parsed Ingestion Element
// =============================================================================

// Record is one parsed element of an ingestion stream: a node or an edge.
// Exactly one of Node and Edge is non-nil.
type Record struct {
	Type string
	Node *Node
	Edge *Edge
}

// nodeWire and edgeWire mirror the backend export format.
type nodeWire struct {
	Type     string   `json:"type,omitempty"`
	ID       string   `json:"id"`
	Reported Reported `json:"reported"`
}

type edgeWire struct {
	Type string `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"edge_type,omitempty"`
}

// UnmarshalJSON decodes a wire record. Records tagged "edge" become edges;
// records tagged "node", or untagged objects carrying an id, become nodes.
func (r *Record) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch {
	case probe.Type == TypeEdge:
		var w edgeWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		if w.From == "" || w.To == "" {
			return fmt.Errorf("edge record missing endpoint")
		}
		kind := w.Kind
		if kind == "" {
			kind = DefaultEdgeKind
		}
		*r = Record{Type: TypeEdge, Edge: &Edge{From: w.From, To: w.To, Kind: kind}}
		return nil

	case probe.Type == TypeNode || probe.ID != "":
		var w nodeWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		if w.ID == "" {
			return fmt.Errorf("node record missing id")
		}
		*r = Record{Type: TypeNode, Node: &Node{ID: w.ID, Reported: w.Reported}}
		return nil
	}

	return fmt.Errorf("record is neither node nor edge")
}

// MarshalJSON encodes the record in the backend export format.
func (r Record) MarshalJSON() ([]byte, error) {
	switch r.Type {
	case TypeNode:
		return json.Marshal(nodeWire{Type: TypeNode, ID: r.Node.ID, Reported: r.Node.Reported})
	case TypeEdge:
		return json.Marshal(edgeWire{Type: TypeEdge, From: r.Edge.From, To: r.Edge.To, Kind: r.Edge.Kind})
	}
	return nil, fmt.Errorf("record has unknown type %q", r.Type)
}

// NodeRecord wraps a node as a Record.
func NodeRecord(n *Node) Record { return Record{Type: TypeNode, Node: n} }

// EdgeRecord wraps an edge as a Record.
func EdgeRecord(e Edge) Record { return Record{Type: TypeEdge, Edge: &e} }
