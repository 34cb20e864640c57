package graph

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Dump Serialization API
// =============================================================================

// A dump is the line-delimited JSON exchange format for graph snapshots:
// one record per line, nodes and edges interleaved in export order. Blank
// lines are tolerated on read. This matches the backend's ndjson export.

// WriteDump writes a snapshot as a line-delimited record stream.
func WriteDump(s *Snapshot, w io.Writer) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, n := range s.Nodes() {
		if err := enc.Encode(NodeRecord(n)); err != nil {
			return fmt.Errorf("encode node %s: %w", n.ID, err)
		}
	}
	for _, e := range s.Edges() {
		if err := enc.Encode(EdgeRecord(e)); err != nil {
			return fmt.Errorf("encode edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return bw.Flush()
}

// WriteDumpFile writes a snapshot dump to a file with 0644 permissions.
func WriteDumpFile(s *Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDump(s, f)
}

// ReadDump decodes a line-delimited record stream. Blank lines are skipped.
// Unlike ingestion, a malformed line is a hard error here: this reader is for
// trusted local dumps, not for lossy transports.
func ReadDump(r io.Reader) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadDumpFile reads a dump file into records.
func ReadDumpFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDump(f)
}
