package sink

import (
	"context"
	"log/slog"

	"github.com/primal-host/firehose-consumer/internal/record"
)

// Multi fans a record out to several sinks. A failure in one sink is
// logged and does not prevent the others from receiving the record;
// Export's own error is the first one encountered, if any, purely for
// caller-side accounting.
type Multi struct {
	sinks []Sink
	log   *slog.Logger
}

// NewMulti builds a Multi over sinks, in the order Export visits them.
func NewMulti(log *slog.Logger, sinks ...Sink) *Multi {
	if log == nil {
		log = slog.Default()
	}
	return &Multi{sinks: sinks, log: log.With(slog.String("component", "sink.multi"))}
}

func (m *Multi) Export(ctx context.Context, rec record.Record) error {
	var first error
	for _, s := range m.sinks {
		if err := s.Export(ctx, rec); err != nil {
			m.log.Warn("sink export failed", "err", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (m *Multi) Close() error {
	var first error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
