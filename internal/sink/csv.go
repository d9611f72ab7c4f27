package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sync"

	"github.com/primal-host/firehose-consumer/internal/firehose"
	"github.com/primal-host/firehose-consumer/internal/record"
)

// csvHeader is the fixed column order §4.8 specifies, including the
// duplicate "text" column preserved for wire compatibility with the
// format this exporter's output replaces (see open question (a)).
var csvHeader = []string{"id", "author", "text", "created_at", "text", "labels", "tags"}

// CSV writes one row per Post record in the fixed column order,
// RFC-4180 quoted via the standard library's encoding/csv writer.
// Non-post records are not representable in this fixed schema and are
// skipped.
type CSV struct {
	mu sync.Mutex
	w  io.WriteCloser
	cw *csv.Writer
}

// NewCSV wraps w, writing the header row immediately if writeHeader is
// true (callers pass false when appending to an existing file).
func NewCSV(w io.WriteCloser, writeHeader bool) (*CSV, error) {
	c := &CSV{w: w, cw: csv.NewWriter(w)}
	if writeHeader {
		if err := c.cw.Write(csvHeader); err != nil {
			return nil, fmt.Errorf("sink: csv header: %w", err)
		}
		c.cw.Flush()
	}
	return c, nil
}

func (c *CSV) Export(_ context.Context, rec record.Record) error {
	if rec.Kind != firehose.OperationPost || rec.Post == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	v := toPostView(rec)
	row := []string{v.ID, v.Author, v.Text, v.CreatedAt, v.Text, joinSemicolon(v.Labels), joinSemicolon(v.Tags)}
	if err := c.cw.Write(row); err != nil {
		return fmt.Errorf("sink: csv write: %w", err)
	}
	c.cw.Flush()
	return c.cw.Error()
}

func (c *CSV) Close() error {
	c.cw.Flush()
	return c.w.Close()
}
