package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lselvakumaran/fixinventory/pkg/client"
	"github.com/lselvakumaran/fixinventory/pkg/graph"
)

func testRecords() []graph.Record {
	return []graph.Record{
		graph.NodeRecord(&graph.Node{ID: "x", Reported: graph.Reported{Name: "x", Kind: "instance"}}),
		graph.NodeRecord(&graph.Node{ID: "y", Reported: graph.Reported{Name: "y", Kind: "volume"}}),
		graph.EdgeRecord(graph.Edge{From: "x", To: "y", Kind: "dependency"}),
	}
}

func TestExportFraming(t *testing.T) {
	s := New(nil)
	s.Register("fix", testRecords())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/graph/fix/export")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get(client.TotalHeader); got != "3" {
		t.Errorf("%s = %q, want 3", client.TotalHeader, got)
	}

	body, _ := io.ReadAll(resp.Body)
	text := string(body)
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "\n]") {
		t.Errorf("framing wrong: %q", text)
	}
	// First record carries no comma separator, later ones do.
	if !strings.Contains(text, "[\n{") {
		t.Errorf("first record separator wrong: %q", text)
	}
	if strings.Count(text, ",\n{") != 2 {
		t.Errorf("later record separators wrong: %q", text)
	}
}

func TestExportUnknownGraph(t *testing.T) {
	s := New(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/graph/missing/export")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestExportFaultInjection(t *testing.T) {
	s := New(nil)
	s.Register("fix", testRecords())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/graph/fix/export?fail=1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	text := string(body)
	if !strings.Contains(text, "\nError:") {
		t.Errorf("no error chunk in %q", text)
	}
	// The closing frame is delivered even after the error chunk.
	if !strings.HasSuffix(text, "\n]") {
		t.Errorf("closing frame missing after error: %q", text)
	}
}
