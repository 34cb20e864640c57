// Package session ties one graph load to the components that consume it.
//
// A Session is the explicit per-load context: it owns the store being filled
// by ingestion, the snapshot produced at finalization, and the positions the
// layout engine assigned. The Manager enforces the load lifecycle: starting a
// new session discards the previous one wholesale and clears the camera's
// focus target, while the camera controller itself survives from load to
// load.
package session

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lselvakumaran/fixinventory/pkg/camera"
	"github.com/lselvakumaran/fixinventory/pkg/graph"
	"github.com/lselvakumaran/fixinventory/pkg/search"
)

// Session is the context of one graph load.
type Session struct {
	ID     uuid.UUID
	Store  *graph.Store
	logger *log.Logger

	snap      *graph.Snapshot
	positions map[string]graph.Vector3
}

// New creates a fresh session with an empty store.
func New(logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	s := &Session{
		ID:     uuid.New(),
		Store:  graph.NewStore(),
		logger: logger,
	}
	logger.Debug("session started", "session", s.ID)
	return s
}

// Finalize seals the store and keeps the snapshot on the session.
func (s *Session) Finalize() (*graph.Snapshot, error) {
	snap, err := s.Store.Finalize()
	if err != nil {
		return nil, err
	}
	s.snap = snap
	s.logger.Debug("session finalized",
		"session", s.ID, "nodes", snap.NodeCount(), "edges", snap.EdgeCount())
	return snap, nil
}

// Snapshot returns the finalized snapshot, or nil while ingestion runs.
func (s *Session) Snapshot() *graph.Snapshot { return s.snap }

// SetPositions records the layout result for this session.
func (s *Session) SetPositions(p map[string]graph.Vector3) { s.positions = p }

// Positions returns the layout result, or nil.
func (s *Session) Positions() map[string]graph.Vector3 { return s.positions }

// Discard drops the session's accumulated state.
func (s *Session) Discard() {
	s.Store.Discard()
	s.snap = nil
	s.positions = nil
	s.logger.Debug("session discarded", "session", s.ID)
}

// ===== Manager =====

// Manager owns the active session and the long-lived view components.
// The camera and search index are optional; a headless load passes nil.
type Manager struct {
	logger *log.Logger
	camera *camera.Controller
	search *search.Index

	current *Session
}

// NewManager creates a manager around the (possibly nil) view components.
func NewManager(cam *camera.Controller, idx *search.Index, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{logger: logger, camera: cam, search: idx}
}

// Begin starts a new load session. The previous session, if any, is discarded
// wholesale and the camera's focus target is cleared; the camera controller
// and its pose persist.
func (m *Manager) Begin() *Session {
	if m.current != nil {
		m.current.Discard()
	}
	if m.camera != nil {
		m.camera.SetSnapshot(nil)
	}
	if m.search != nil {
		m.search.SetSnapshot(nil)
	}
	m.current = New(m.logger)
	return m.current
}

// Attach hands the finalized, positioned snapshot to the view components.
// Call it once per session, after layout.
func (m *Manager) Attach(snap *graph.Snapshot) {
	if m.camera != nil {
		m.camera.SetSnapshot(snap)
	}
	if m.search != nil {
		m.search.SetSnapshot(snap)
	}
}

// Current returns the active session, or nil before the first Begin.
func (m *Manager) Current() *Session { return m.current }

// Camera returns the long-lived camera controller.
func (m *Manager) Camera() *camera.Controller { return m.camera }

// Search returns the search index.
func (m *Manager) Search() *search.Index { return m.search }
