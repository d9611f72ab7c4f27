// Package firehose decodes the AT Protocol relay's subscribeRepos
// websocket feed: the two-value DAG-CBOR frame envelope, the CAR-encoded
// block set each commit carries, and the per-operation classification
// that downstream record decoding dispatches on.
package firehose

import "errors"

// ErrInvalidFrameType is returned when a frame header's "op" field is
// neither 1 (message) nor -1 (error).
var ErrInvalidFrameType = errors.New("firehose: invalid frame type")

// ErrInvalidFrameData is returned when the frame header cannot be
// decoded: it is malformed, not a map, or has no "op" field. A header
// with nothing after it is valid and yields an empty body.
var ErrInvalidFrameData = errors.New("firehose: invalid frame data")

// ErrItemNotFound is returned by the CAR resolver when an operation's
// CID has no matching block in the commit's block set.
var ErrItemNotFound = errors.New("firehose: item not found in car")
