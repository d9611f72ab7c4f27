package ratecounter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCounter_Add(t *testing.T) {
	c := New(nil)
	c.Add(3)
	c.Add(4)
	require.Equal(t, int64(7), c.total.Load())
}

func TestCounter_Run_StopsOnCancel(t *testing.T) {
	c := New(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
