package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lselvakumaran/fixinventory/pkg/errors"
)

// frames writes the given server-side writes as one chunked body.
func frames(writes ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(TotalHeader, "2")
		flusher := w.(http.Flusher)
		for _, chunk := range writes {
			fmt.Fprint(w, chunk)
			flusher.Flush()
		}
	}
}

func collect(t *testing.T, sub *Subscription) (total int, chunks []string, finished bool, err error) {
	t.Helper()
	for ev := range sub.Events() {
		switch ev.Kind {
		case KindTotal:
			total = ev.Total
		case KindChunk:
			chunks = append(chunks, ev.Chunk)
		case KindFinished:
			finished = true
			err = ev.Err
		}
	}
	return total, chunks, finished, err
}

func TestStreamDeliveryOrder(t *testing.T) {
	srv := httptest.NewServer(frames("[", "\n{\"id\":\"X\"}", ",\n{\"id\":\"Y\"}", "\n]"))
	defer srv.Close()

	sub, err := New(srv.URL).Stream(context.Background(), Request{Method: "GET", Path: "/graph/fix/export"})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer sub.Close()

	total, chunks, finished, termErr := collect(t, sub)
	if total != 2 {
		t.Errorf("total = %d, want 2 (and before any chunk)", total)
	}
	if !finished || termErr != nil {
		t.Errorf("finished=%v err=%v", finished, termErr)
	}

	want := []string{"[", "\n{\"id\":\"X\"}", ",\n{\"id\":\"Y\"}", "\n]"}
	if len(chunks) != len(want) {
		t.Fatalf("chunks = %q, want %q", chunks, want)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestStreamErrorChunkPassedVerbatim(t *testing.T) {
	srv := httptest.NewServer(frames("[", "\n{\"id\":\"X\"}", "\nError: backend exploded", "\n]"))
	defer srv.Close()

	sub, err := New(srv.URL).Stream(context.Background(), Request{Method: "GET", Path: "/graph/fix/export"})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer sub.Close()

	_, chunks, finished, _ := collect(t, sub)
	var sawError bool
	for _, c := range chunks {
		if strings.HasPrefix(c, "Error:") {
			sawError = true
		}
	}
	if !sawError {
		t.Errorf("Error chunk not delivered: %q", chunks)
	}
	// Terminal event still arrives after the error chunk.
	if !finished {
		t.Error("finished event missing after error chunk")
	}
}

func TestStreamHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "graph missing not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Stream(context.Background(), Request{Method: "GET", Path: "/graph/missing/export"})
	if err == nil {
		t.Fatal("want error for 404")
	}
	if !errors.Is(err, errors.ErrCodeGraphNotFound) {
		t.Errorf("code = %v, want GRAPH_NOT_FOUND", errors.GetCode(err))
	}
}

func TestSubscriptionCloseIdempotent(t *testing.T) {
	srv := httptest.NewServer(frames("[", "\n{\"id\":\"X\"}", "\n]"))
	defer srv.Close()

	sub, err := New(srv.URL).Stream(context.Background(), Request{Method: "GET", Path: "/graph/fix/export"})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	sub.Close()
	sub.Close() // second teardown must be a no-op
}

func TestRetryOnlyRetryable(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, 0, func() error {
		calls++
		return fmt.Errorf("permanent")
	})
	if err == nil || calls != 1 {
		t.Errorf("permanent error retried: calls=%d err=%v", calls, err)
	}

	calls = 0
	err = Retry(context.Background(), 3, 0, func() error {
		calls++
		if calls < 3 {
			return Retryable(fmt.Errorf("transient"))
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("transient error not retried: calls=%d err=%v", calls, err)
	}
}

func TestStreamRetriesTransientConnectFailures(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			http.Error(w, "starting up", http.StatusServiceUnavailable)
			return
		}
		frames("[", "\n{\"id\":\"X\"}", "\n]")(w, r)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetry(3, 0))
	sub, err := c.Stream(context.Background(), Request{Method: "GET", Path: "/graph/fix/export"})
	if err != nil {
		t.Fatalf("Stream after transient 503s: %v", err)
	}
	defer sub.Close()

	if got := requests.Load(); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}
	_, chunks, finished, termErr := collect(t, sub)
	if !finished || termErr != nil || len(chunks) == 0 {
		t.Errorf("finished=%v err=%v chunks=%q", finished, termErr, chunks)
	}
}

func TestStreamDoesNotRetryClientErrors(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, "no such graph", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetry(3, 0))
	_, err := c.Stream(context.Background(), Request{Method: "GET", Path: "/graph/missing/export"})
	if err == nil {
		t.Fatal("want error for 404")
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("requests = %d, want 1 (4xx is not transient)", got)
	}
	if !errors.Is(err, errors.ErrCodeGraphNotFound) {
		t.Errorf("code = %v, want GRAPH_NOT_FOUND", errors.GetCode(err))
	}
}

func TestStreamRetryExhaustionKeepsCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "still down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetry(2, 0))
	_, err := c.Stream(context.Background(), Request{Method: "GET", Path: "/graph/fix/export"})
	if err == nil {
		t.Fatal("want error after exhausted retries")
	}
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("code = %v, want NETWORK_ERROR after the retry marker is stripped", errors.GetCode(err))
	}
}
