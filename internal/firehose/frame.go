package firehose

import (
	"bytes"
	"fmt"
	"io"

	cbg "github.com/whyrusleeping/cbor-gen"
)

// FrameKind distinguishes the two wire-level frame variants the relay
// can send.
type FrameKind int

const (
	// FrameMessage carries a body and an optional type discriminator
	// (e.g. "#commit").
	FrameMessage FrameKind = iota
	// FrameError carries no body the consumer currently inspects.
	FrameError
)

// Frame is the decoded form of one binary websocket message: either a
// Message (with an optional type tag and the remaining raw body bytes)
// or an Error.
type Frame struct {
	Kind FrameKind
	Type string // only meaningful when Kind == FrameMessage
	Body []byte // only meaningful when Kind == FrameMessage
}

// DecodeFrame splits raw into a CBOR header value and a trailing body.
// The header is a map carrying an integer "op" field and an optional
// string "t" field; everything after the header is the frame body,
// verbatim, for the caller to CBOR-decode according to "t".
func DecodeFrame(raw []byte) (Frame, error) {
	br := bytes.NewReader(raw)
	cr := cbg.NewCborReader(br)

	maj, extra, err := cr.ReadHeader()
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrInvalidFrameData, err)
	}
	if maj != cbg.MajMap {
		return Frame{}, fmt.Errorf("%w: header is not a map", ErrInvalidFrameData)
	}

	var op int64
	var haveOp bool
	var msgType string

	for i := uint64(0); i < extra; i++ {
		key, err := readMapKey(cr)
		if err != nil {
			return Frame{}, fmt.Errorf("%w: %v", ErrInvalidFrameData, err)
		}

		switch key {
		case "op":
			op, err = readInt(cr)
			if err != nil {
				return Frame{}, fmt.Errorf("%w: op field: %v", ErrInvalidFrameData, err)
			}
			haveOp = true
		case "t":
			msgType, err = readTextString(cr)
			if err != nil {
				return Frame{}, fmt.Errorf("%w: t field: %v", ErrInvalidFrameData, err)
			}
		default:
			// Unknown header field: skip its value without interpreting it.
			var skip cbg.Deferred
			if err := skip.UnmarshalCBOR(cr); err != nil {
				return Frame{}, fmt.Errorf("%w: skipping field %q: %v", ErrInvalidFrameData, key, err)
			}
		}
	}

	if !haveOp {
		return Frame{}, fmt.Errorf("%w: header has no op field", ErrInvalidFrameData)
	}

	// Whatever is left unread in cr, buffered or not, is the body. This
	// is the "split at the decoder's cursor" step: we never re-decode
	// from a fresh reader, so any internal buffering cbg performed is
	// irrelevant — we just keep draining the same stream.
	body, err := io.ReadAll(cr)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: reading body: %v", ErrInvalidFrameData, err)
	}

	switch op {
	case 1:
		return Frame{Kind: FrameMessage, Type: msgType, Body: body}, nil
	case -1:
		return Frame{Kind: FrameError}, nil
	default:
		return Frame{}, fmt.Errorf("%w: op=%d", ErrInvalidFrameType, op)
	}
}

func readMapKey(cr *cbg.CborReader) (string, error) {
	return readTextString(cr)
}

func readTextString(cr *cbg.CborReader) (string, error) {
	maj, extra, err := cr.ReadHeader()
	if err != nil {
		return "", err
	}
	if maj != cbg.MajTextString {
		return "", fmt.Errorf("expected text string, got major type %d", maj)
	}
	buf := make([]byte, extra)
	if _, err := io.ReadFull(cr, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// readInt decodes a CBOR integer (unsigned or negative major type) into
// an int64, which is sufficient for the small op codes (1, -1) the
// frame header carries.
func readInt(cr *cbg.CborReader) (int64, error) {
	maj, extra, err := cr.ReadHeader()
	if err != nil {
		return 0, err
	}
	switch maj {
	case cbg.MajUnsignedInt:
		return int64(extra), nil
	case cbg.MajNegativeInt:
		return -1 - int64(extra), nil
	default:
		return 0, fmt.Errorf("expected integer, got major type %d", maj)
	}
}
