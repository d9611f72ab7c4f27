package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/primal-host/firehose-consumer/internal/firehose"
	"github.com/primal-host/firehose-consumer/internal/record"
)

// JSONL appends one compact JSON object per record, UTF-8, LF
// terminated. Exports are synchronous with the ingest loop, so a
// single mutex is enough to make concurrent Export calls safe without
// interleaving partial lines.
type JSONL struct {
	mu sync.Mutex
	w  io.WriteCloser
	enc *json.Encoder
}

// NewJSONL wraps w (typically an *os.File opened for append).
func NewJSONL(w io.WriteCloser) *JSONL {
	return &JSONL{w: w, enc: json.NewEncoder(w)}
}

func (j *JSONL) Export(_ context.Context, rec record.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var payload any
	if rec.Kind == firehose.OperationPost && rec.Post != nil {
		payload = toPostView(rec)
	} else {
		payload = toGenericView(rec)
	}

	if err := j.enc.Encode(payload); err != nil {
		return fmt.Errorf("sink: jsonl encode: %w", err)
	}
	return nil
}

func (j *JSONL) Close() error {
	return j.w.Close()
}
