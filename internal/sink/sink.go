// Package sink implements the fan-out targets a decoded record can be
// exported to: a dry-run logger, JSONL/CSV file writers, a document
// store with relational edges, and a Prometheus registry.
package sink

import (
	"context"

	"github.com/primal-host/firehose-consumer/internal/record"
)

// Sink exports one record. Implementations must not block the caller
// indefinitely; slow sinks apply backpressure through their own bounded
// task pool, with Export blocking only on admission to that pool (see
// docstore.go).
type Sink interface {
	Export(ctx context.Context, rec record.Record) error
	Close() error
}
