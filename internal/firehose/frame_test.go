package firehose

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDecodeFrame_Message(t *testing.T) {
	raw := mustHex(t, "a2626f700161746723636f6d6d6974")
	frame, err := DecodeFrame(raw)
	require.NoError(t, err)
	require.Equal(t, FrameMessage, frame.Kind)
	require.Equal(t, "#commit", frame.Type)
	require.Empty(t, frame.Body)
}

func TestDecodeFrame_Error(t *testing.T) {
	raw := mustHex(t, "a1626f7020")
	frame, err := DecodeFrame(raw)
	require.NoError(t, err)
	require.Equal(t, FrameError, frame.Kind)
}

func TestDecodeFrame_InvalidOp(t *testing.T) {
	raw := mustHex(t, "a2626f700261746723636f6d6d6974")
	_, err := DecodeFrame(raw)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidFrameType))
}

func TestDecodeFrame_TrailingBodyIsPreserved(t *testing.T) {
	// header {"op":1,"t":"#commit"} followed by an extra CBOR value
	// (the integer 7) as the "body".
	raw := append(mustHex(t, "a2626f700161746723636f6d6d6974"), 0x07)
	frame, err := DecodeFrame(raw)
	require.NoError(t, err)
	require.Equal(t, []byte{0x07}, frame.Body)
}
