package sink

import (
	"context"
	"log/slog"

	"github.com/primal-host/firehose-consumer/internal/record"
)

// DryRun logs every record at debug level and otherwise discards it.
// It always succeeds.
type DryRun struct {
	log *slog.Logger
}

// NewDryRun builds a DryRun sink. A nil logger falls back to
// slog.Default.
func NewDryRun(log *slog.Logger) *DryRun {
	if log == nil {
		log = slog.Default()
	}
	return &DryRun{log: log.With(slog.String("component", "sink.dryrun"))}
}

func (d *DryRun) Export(_ context.Context, rec record.Record) error {
	d.log.Debug("record", "did", rec.DID, "path", rec.Path, "kind", rec.Kind)
	return nil
}

func (d *DryRun) Close() error { return nil }
