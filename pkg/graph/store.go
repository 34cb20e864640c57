// Package graph holds the in-memory graph model for one explorer session:
// nodes and edges accumulated during ingestion, and the immutable snapshot
// produced once the stream completes.
//
// # Lifecycle
//
// A Store belongs to exactly one load session. The ingestion pipeline is its
// only writer; records are appended in delivery order. Finalize is called at
// most once and yields the read-only Snapshot every other component consumes.
// Discard drops the accumulated state wholesale - a new load never merges
// into the remains of a previous one.
//
//	store := graph.NewStore()
//	for rec := range events { store.Append(rec) }
//	snap, err := store.Finalize()
package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
)

var (
	// ErrFinalized is returned by Append and Finalize after the store has
	// been finalized. The snapshot is read-only from that point on.
	ErrFinalized = errors.New("store already finalized")

	// ErrDiscarded is returned by Append and Finalize after Discard.
	// A discarded store never accepts another record.
	ErrDiscarded = errors.New("store discarded")

	// ErrEmptyNodeID is returned by Append for a node without an ID.
	ErrEmptyNodeID = errors.New("node ID must not be empty")
)

// Store accumulates records for one ingestion session.
// It is not safe for concurrent use; the pipeline is the single writer.
type Store struct {
	nodes     map[string]*Node
	order     []string // node IDs in first-append order
	edges     []Edge
	finalized bool
	discarded bool
}

// NewStore creates an empty store for a new load session.
func NewStore() *Store {
	return &Store{nodes: make(map[string]*Node)}
}

// Append adds one record. Re-appending a node with an ID already present in
// this session overwrites the earlier payload instead of duplicating the
// node; its position in the ingestion order is kept.
func (s *Store) Append(rec Record) error {
	if err := s.writable(); err != nil {
		return err
	}

	switch rec.Type {
	case TypeNode:
		if rec.Node == nil || rec.Node.ID == "" {
			return ErrEmptyNodeID
		}
		if existing, ok := s.nodes[rec.Node.ID]; ok {
			existing.Reported = rec.Node.Reported
			return nil
		}
		n := *rec.Node
		s.nodes[n.ID] = &n
		s.order = append(s.order, n.ID)
	case TypeEdge:
		if rec.Edge == nil {
			return errors.New("edge record without edge")
		}
		// Endpoints may not exist yet; resolution is deferred to Finalize.
		s.edges = append(s.edges, *rec.Edge)
	}
	return nil
}

// NodeCount returns the number of distinct nodes appended so far.
func (s *Store) NodeCount() int { return len(s.order) }

// EdgeCount returns the number of edges appended so far.
func (s *Store) EdgeCount() int { return len(s.edges) }

// Finalize seals the store and returns the snapshot. It may be called once
// per session; afterwards the store rejects all writes. Edges whose endpoints
// never arrived are dropped here.
func (s *Store) Finalize() (*Snapshot, error) {
	if err := s.writable(); err != nil {
		return nil, err
	}
	s.finalized = true

	snap := &Snapshot{
		byID:  s.nodes,
		order: s.order,
	}
	for _, e := range s.edges {
		if _, ok := s.nodes[e.From]; !ok {
			continue
		}
		if _, ok := s.nodes[e.To]; !ok {
			continue
		}
		snap.edges = append(snap.edges, e)
	}
	return snap, nil
}

// Discard drops everything accumulated in this session. Used when a new load
// starts, or when a stream error is observed mid-session, so no snapshot is
// ever a silent mixture of two load attempts.
func (s *Store) Discard() {
	s.discarded = true
	s.nodes = make(map[string]*Node)
	s.order = nil
	s.edges = nil
}

func (s *Store) writable() error {
	if s.discarded {
		return ErrDiscarded
	}
	if s.finalized {
		return ErrFinalized
	}
	return nil
}

// =============================================================================
// Snapshot - Immutable Result of One Session
// =============================================================================

// Snapshot is the sealed graph of one completed ingestion session. The
// node/edge sets never change after Finalize; node Position and Selected
// fields are the only mutable state, owned by layout and camera respectively.
type Snapshot struct {
	byID  map[string]*Node
	order []string
	edges []Edge
}

// Node returns the node with the given ID, or nil.
func (s *Snapshot) Node(id string) *Node { return s.byID[id] }

// Nodes returns all nodes in ingestion order.
func (s *Snapshot) Nodes() []*Node {
	out := make([]*Node, len(s.order))
	for i, id := range s.order {
		out[i] = s.byID[id]
	}
	return out
}

// Edges returns all resolved edges.
func (s *Snapshot) Edges() []Edge { return s.edges }

// NodeCount returns the number of nodes.
func (s *Snapshot) NodeCount() int { return len(s.order) }

// EdgeCount returns the number of resolved edges.
func (s *Snapshot) EdgeCount() int { return len(s.edges) }

// Hash returns a content hash of the snapshot, suitable as a cache key for
// derived artifacts like layouts. Nodes and edges are hashed in ingestion
// order, so re-ingesting the same source yields the same hash.
func (s *Snapshot) Hash() string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, id := range s.order {
		_ = enc.Encode(NodeRecord(s.byID[id]))
	}
	for _, e := range s.edges {
		_ = enc.Encode(EdgeRecord(e))
	}
	return hex.EncodeToString(h.Sum(nil))
}
