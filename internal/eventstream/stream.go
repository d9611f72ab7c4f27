// Package eventstream adapts a sequence of decoded commits into a flat
// sequence of projected records, running the classifier and record
// decoder over every operation in arrival order.
package eventstream

import (
	"context"
	"log/slog"

	"github.com/primal-host/firehose-consumer/internal/firehose"
	"github.com/primal-host/firehose-consumer/internal/record"
)

// Stream flattens commits into records. Order within a commit matches
// the commit's own op order; order across commits matches the
// upstream arrival order. Decode errors on individual ops are logged
// and skipped so one bad record never interrupts the sequence.
type Stream struct {
	decoder *record.Decoder
	log     *slog.Logger
}

// New builds a Stream. A nil logger falls back to slog.Default.
func New(log *slog.Logger) *Stream {
	if log == nil {
		log = slog.Default()
	}
	return &Stream{decoder: record.NewDecoder(log), log: log}
}

// Run reads commits from in and sends projected records on the
// returned channel until in closes or ctx is cancelled.
func (s *Stream) Run(ctx context.Context, in <-chan firehose.Commit) <-chan record.Record {
	out := make(chan record.Record, 256)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case commit, ok := <-in:
				if !ok {
					return
				}
				s.emit(ctx, commit, out)
			}
		}
	}()

	return out
}

func (s *Stream) emit(ctx context.Context, commit firehose.Commit, out chan<- record.Record) {
	for _, raw := range commit.Ops {
		op := firehose.Classify(raw)

		rec, err := s.decoder.Decode(commit.DID, op, commit.CAR)
		if err != nil {
			s.log.Warn("dropping record", "did", commit.DID, "path", raw.Path, "err", err)
			continue
		}

		select {
		case out <- rec:
		case <-ctx.Done():
			return
		}
	}
}
