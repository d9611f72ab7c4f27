package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/primal-host/firehose-consumer/internal/docstore"
	"github.com/primal-host/firehose-consumer/internal/profilecache"
)

// Config carries every field the sink factory needs, mirroring the
// exporter selector and its per-kind settings from the core's
// configuration surface.
type Config struct {
	Selector      string // "jsonl" | "csv" | "document-store" | "dry-run"
	OutputPath    string
	DocStoreConn  string
	FetchUserData bool
}

// Build constructs the configured Sink, grounded on the same
// string-selector factory pattern used to pick a persistence adapter:
// one switch, one constructor per case, an explicit error for anything
// unrecognised rather than a silent default.
func Build(ctx context.Context, cfg Config, log *slog.Logger) (Sink, error) {
	switch cfg.Selector {
	case "", "dry-run":
		return NewDryRun(log), nil

	case "jsonl":
		f, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("sink: open jsonl output %q: %w", cfg.OutputPath, err)
		}
		return NewJSONL(f), nil

	case "csv":
		info, statErr := os.Stat(cfg.OutputPath)
		writeHeader := statErr != nil || info.Size() == 0
		f, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("sink: open csv output %q: %w", cfg.OutputPath, err)
		}
		return NewCSV(f, writeHeader)

	case "document-store":
		store, err := docstore.Connect(ctx, cfg.DocStoreConn)
		if err != nil {
			return nil, fmt.Errorf("sink: connect document store: %w", err)
		}
		var cache *profilecache.Cache
		if cfg.FetchUserData {
			cache = profilecache.New(profilecache.NewHTTPClient(10*time.Second), profilecache.DefaultTTL)
		}
		return NewDocStore(store, cache, cfg.FetchUserData, log), nil

	default:
		return nil, fmt.Errorf("sink: unknown exporter selector %q", cfg.Selector)
	}
}
