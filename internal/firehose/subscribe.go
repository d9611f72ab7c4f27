package firehose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

const (
	subscribePath = "/xrpc/com.atproto.sync.subscribeRepos"

	defaultReadTimeout   = 30 * time.Second
	initialBackoff       = 1 * time.Second
	maxBackoff           = 10 * time.Second
	maxConsecutiveErrors = 5 // only enforced before the first successful connect
)

// Driver manages one websocket connection to a relay's subscribeRepos
// endpoint and exposes a lazy sequence of decoded commits. The caller
// exclusively owns the returned channel; cancelling ctx closes the
// websocket and ends the sequence.
type Driver struct {
	Relay       string
	ReadTimeout time.Duration
	Log         *slog.Logger
}

// NewDriver creates a Driver for the given relay host (e.g.
// "bsky.network"). ReadTimeout defaults to 30s when zero.
func NewDriver(relay string, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{
		Relay:       relay,
		ReadTimeout: defaultReadTimeout,
		Log:         log.With(slog.String("component", "firehose.driver")),
	}
}

// Commits starts (and, on transport error, restarts) the subscription
// and streams decoded commits on the returned channel until ctx is
// cancelled. Per §7, transport and frame/commit decode errors are never
// fatal once the first connection has succeeded — only a failure to
// make that first connection for maxConsecutiveErrors in a row is
// treated as a configuration problem and ends the sequence with an
// error logged (the caller sees a closed channel either way).
func (d *Driver) Commits(ctx context.Context) <-chan Commit {
	out := make(chan Commit, 64)

	go func() {
		defer close(out)

		everConnected := false
		errCount := 0
		backoff := initialBackoff

		for {
			if ctx.Err() != nil {
				return
			}

			err := d.subscribeOnce(ctx, out, &everConnected)
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			if err == nil {
				errCount = 0
				backoff = initialBackoff
				d.Log.Info("subscription closed normally, reconnecting")
				continue
			}

			if !everConnected {
				errCount++
				d.Log.Error("relay connection failed", "err", err, "consecutive_errors", errCount)
				if errCount >= maxConsecutiveErrors {
					d.Log.Error("giving up after repeated connection failures", "consecutive_errors", errCount)
					return
				}
			} else {
				errCount = 0
				d.Log.Warn("relay connection dropped, reconnecting", "err", err)
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
		}
	}()

	return out
}

func (d *Driver) subscribeOnce(ctx context.Context, out chan<- Commit, everConnected *bool) error {
	url := fmt.Sprintf("wss://%s%s", d.Relay, subscribePath)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("firehose: dial %q: %w", url, err)
	}
	defer conn.Close()

	*everConnected = true
	d.Log.Info("connected to relay", "url", url)

	readTimeout := d.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return fmt.Errorf("firehose: set read deadline: %w", err)
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				// Per §4.5: a read timeout ends this sequence; the
				// caller's reconnect-from-tip policy applies.
				return fmt.Errorf("firehose: read timeout: %w", err)
			}
			return fmt.Errorf("firehose: read message: %w", err)
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			d.Log.Warn("dropping malformed frame", "err", err)
			continue
		}
		if frame.Kind != FrameMessage || frame.Type != "#commit" {
			continue
		}

		commit, err := DecodeCommit(frame.Body)
		if err != nil {
			d.Log.Warn("dropping commit with envelope decode error", "err", err)
			continue
		}

		select {
		case out <- commit:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
