package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/lselvakumaran/fixinventory/pkg/errors"
	"github.com/lselvakumaran/fixinventory/pkg/graph"
)

// FileSource ingests a local dump: UTF-8 text, one JSON record per line.
// Blank lines are legal and consume an index slot without producing a record.
// Progress is derived from bytes read over total bytes.
type FileSource struct {
	Path string
}

// Name implements Source.
func (s FileSource) Name() string { return "file:" + s.Path }

// Stream implements Source.
func (s FileSource) Stream(ctx context.Context, emit *Emitter) error {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "dump %s", s.Path)
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "open %s", s.Path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "stat %s", s.Path)
	}
	return streamLines(ctx, f, info.Size(), emit)
}

// streamLines is the shared line-delimited ingestion loop, used by both the
// file source and the bundled fallback dataset.
//
// The loop yields the processor every yieldEvery records so a large dump
// never monopolizes the host; this is a fairness policy, not a correctness
// requirement. yieldEvery scales with the dump size: max(size/500000, 100).
func streamLines(ctx context.Context, r io.Reader, totalBytes int64, emit *Emitter) error {
	yieldEvery := totalBytes / 500000
	if yieldEvery < 100 {
		yieldEvery = 100
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var bytesRead int64
	index := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := sc.Bytes()
		bytesRead += int64(len(line)) + 1
		index++ // blank lines consume an index slot too

		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}

		var rec graph.Record
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			emit.Skip(errors.Wrap(errors.ErrCodeInvalidRecord, err, "line %d", index))
			continue
		}
		if err := emit.Record(rec); err != nil {
			return err
		}

		if int64(index)%yieldEvery == 0 {
			runtime.Gosched()
			if totalBytes > 0 {
				emit.Progress(float64(bytesRead)/float64(totalBytes),
					fmt.Sprintf("%d records", index))
			}
		}
	}
	return sc.Err()
}
