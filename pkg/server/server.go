// Package server implements a small export server speaking the chunked graph
// protocol. It exists for development and testing: `fixexplorer serve` loads
// a local dump and exposes it the way the real backend does, so the stream
// client and the ingestion pipeline can be exercised end to end without an
// inventory deployment.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lselvakumaran/fixinventory/pkg/client"
	"github.com/lselvakumaran/fixinventory/pkg/graph"
)

// Server serves registered graph dumps over the streaming export protocol.
type Server struct {
	logger *log.Logger

	mu     sync.RWMutex
	graphs map[string][]graph.Record
}

// New creates a server with no registered graphs.
func New(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		logger: logger,
		graphs: make(map[string][]graph.Record),
	}
}

// Register makes a dump available under the given graph name.
// Registering the same name again replaces the previous dump.
func (s *Server) Register(name string, records []graph.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[name] = records
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/graph/{graphName}/export", s.handleExport)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return r
}

// handleExport streams a registered dump with the backend's framing:
// "[", then "\n{json}" for the first record and ",\n{json}" for later ones,
// then "\n]". Each write is flushed so chunk boundaries survive transport.
//
// ?fail=N injects a "\nError: ..." chunk after N records; the closing frame
// is still sent, matching the backend's cleanup contract.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "graphName")

	s.mu.RLock()
	records, ok := s.graphs[name]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, fmt.Sprintf("graph %s not found", name), http.StatusNotFound)
		return
	}

	failAfter := -1
	if v := r.URL.Query().Get("fail"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			failAfter = n
		}
	}

	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(client.TotalHeader, strconv.Itoa(len(records)))
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, "[")
	flush()

	for i, rec := range records {
		if failAfter >= 0 && i >= failAfter {
			// The error chunk starts on its own line so write boundaries
			// stay recoverable from the byte stream.
			fmt.Fprint(w, "\nError: export aborted by fault injection")
			flush()
			break
		}
		data, err := json.Marshal(rec)
		if err != nil {
			s.logger.Error("marshal record", "graph", name, "err", err)
			continue
		}
		sep := ","
		if i == 0 {
			sep = ""
		}
		fmt.Fprintf(w, "%s\n%s", sep, data)
		flush()
	}

	fmt.Fprint(w, "\n]")
	flush()
	s.logger.Debug("export served", "graph", name, "records", len(records))
}
