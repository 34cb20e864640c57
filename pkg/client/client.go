// Package client implements the remote streaming transport for graph exports.
//
// The backend streams a graph export as a sequence of opaque string chunks:
// an opening "[" frame, one chunk per record (",\n" + JSON, the first without
// the comma), and a closing "\n]" frame. A failing export is signalled by a
// chunk with the literal prefix "Error:". The server may announce the total
// element count up front via the X-Total-Count header.
//
// # Subscription discipline
//
// A Subscription is established before the triggering request is issued and
// torn down exactly once, on the terminal Finished event or via Close. The
// Finished event is delivered even after an Error: chunk so the consumer can
// perform cleanup. There is never more than one outstanding subscription per
// logical stream.
package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lselvakumaran/fixinventory/pkg/errors"
	"github.com/lselvakumaran/fixinventory/pkg/observability"
)

// EventKind discriminates subscription events.
type EventKind int

const (
	// KindTotal announces the expected element count, before any chunk.
	KindTotal EventKind = iota
	// KindChunk carries one transport chunk.
	KindChunk
	// KindFinished is the terminal event, delivered exactly once.
	KindFinished
)

// Event is one delivery on a stream subscription.
type Event struct {
	Kind  EventKind
	Total int    // set for KindTotal
	Chunk string // set for KindChunk
	Err   error  // set for KindFinished when the transport itself failed
}

// Request describes one streaming request.
type Request struct {
	Method string
	Path   string
	Body   string
}

// TotalHeader is the response header carrying the expected element count.
const TotalHeader = "X-Total-Count"

// =============================================================================
// Subscription
// =============================================================================

// Subscription delivers stream events in order. Events is closed after the
// terminal Finished event. Close may be called at any time and is idempotent;
// it cancels the underlying request and drains the channel.
type Subscription struct {
	events chan Event
	cancel context.CancelFunc
	once   sync.Once
}

// Events returns the ordered event channel.
func (s *Subscription) Events() <-chan Event { return s.events }

// Close tears the subscription down. Safe to call more than once; only the
// first call has an effect.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.cancel()
		for range s.events {
			// drain until the reader goroutine closes the channel
		}
	})
}

// =============================================================================
// Client
// =============================================================================

// Client issues streaming requests against one backend.
type Client struct {
	base    string
	httpc   *http.Client
	logger  *log.Logger
	headers map[string]string

	retryAttempts int
	retryDelay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithLogger sets the logger used for chunk-level diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHeader attaches a header to every request, e.g. the backend's
// pre-shared key.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithRetry overrides the connect retry schedule. The delay doubles after
// each failed attempt.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryDelay = delay
	}
}

// New creates a client for the given base URL (e.g. "http://localhost:8900").
// Connects are retried 3 times with a 1 second initial backoff by default.
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:          strings.TrimRight(base, "/"),
		httpc:         &http.Client{},
		logger:        log.Default(),
		headers:       make(map[string]string),
		retryAttempts: 3,
		retryDelay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stream issues req and returns a subscription over the response chunks.
// The subscription exists before the request goes out; a non-2xx status is
// reported synchronously and no subscription is returned. Transient connect
// failures (dial errors, 5xx responses) are retried with exponential backoff
// before giving up; once chunks are flowing there are no retries, the stream
// either finishes or fails.
//
// Chunk boundaries follow the server's write boundaries: the "[" frame, one
// chunk per record, the "\n]" frame. An "Error:" chunk is delivered verbatim;
// interpretation is the consumer's concern.
func (c *Client) Stream(ctx context.Context, req Request) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		events: make(chan Event),
		cancel: cancel,
	}

	start := time.Now()
	observability.Stream().OnRequest(ctx, req.Method, req.Path)

	// The request is rebuilt per attempt: a failed send consumes the body
	// reader.
	var resp *http.Response
	connect := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.base+req.Path, strings.NewReader(req.Body))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "build request %s", req.Path)
		}
		if req.Body != "" {
			httpReq.Header.Set("Content-Type", "application/json")
		}
		httpReq.Header.Set("Accept", "application/json")
		for k, v := range c.headers {
			httpReq.Header.Set(k, v)
		}

		r, err := c.httpc.Do(httpReq)
		if err != nil {
			return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "request %s", req.Path))
		}
		if r.StatusCode >= 200 && r.StatusCode < 300 {
			resp = r
			return nil
		}
		body, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
		r.Body.Close()
		switch {
		case r.StatusCode == http.StatusNotFound:
			return errors.New(errors.ErrCodeGraphNotFound, "%s: %s", req.Path, strings.TrimSpace(string(body)))
		case r.StatusCode >= 500:
			return Retryable(errors.New(errors.ErrCodeNetwork, "%s: status %d", req.Path, r.StatusCode))
		}
		return errors.New(errors.ErrCodeNetwork, "%s: status %d", req.Path, r.StatusCode)
	}
	if err := Retry(ctx, c.retryAttempts, c.retryDelay, connect); err != nil {
		cancel()
		return nil, err
	}

	go c.read(ctx, req.Path, resp, sub, start)
	return sub, nil
}

// read pumps response chunks into the subscription and closes it.
func (c *Client) read(ctx context.Context, path string, resp *http.Response, sub *Subscription, start time.Time) {
	defer close(sub.events)
	defer resp.Body.Close()

	var termErr error
	defer func() {
		// Deliver the terminal event unless the subscriber already tore the
		// stream down; the channel close below ends a Close drain either way.
		select {
		case sub.events <- Event{Kind: KindFinished, Err: termErr}:
		case <-ctx.Done():
		}
		observability.Stream().OnFinished(ctx, path, time.Since(start), termErr)
	}()

	if total, err := strconv.Atoi(resp.Header.Get(TotalHeader)); err == nil && total > 0 {
		if !c.emit(ctx, sub, Event{Kind: KindTotal, Total: total}) {
			return
		}
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	firstRecord := true
	for sc.Scan() {
		chunk, isRecord := reframe(sc.Text(), firstRecord)
		if isRecord {
			firstRecord = false
		}
		observability.Stream().OnChunk(ctx, path, len(chunk))
		if !c.emit(ctx, sub, Event{Kind: KindChunk, Chunk: chunk}) {
			return
		}
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		termErr = errors.Wrap(errors.ErrCodeNetwork, err, "read stream %s", path)
	}
}

// emit delivers ev unless the subscription was cancelled.
func (c *Client) emit(ctx context.Context, sub *Subscription, ev Event) bool {
	select {
	case sub.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// reframe reconstructs the server's write boundaries from the line-oriented
// body. The server writes "[", then "\n{json}" for the first record and
// ",\n{json}" for every later one, then "\n]"; splitting the concatenation on
// newlines yields one record payload per line with the next record's comma
// separator attached as a trailing character. The second return reports
// whether the line carried a record payload.
func reframe(line string, firstRecord bool) (string, bool) {
	switch line {
	case "[":
		return "[", false
	case "]":
		return "\n]", false
	case "":
		return "", false
	}
	if strings.HasPrefix(line, "Error:") {
		return line, false
	}
	payload := strings.TrimSuffix(line, ",")
	if firstRecord {
		return "\n" + payload, true
	}
	return ",\n" + payload, true
}

// String renders a request for logging.
func (r Request) String() string {
	return fmt.Sprintf("%s %s", r.Method, r.Path)
}
