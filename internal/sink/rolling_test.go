package sink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRollingWindow_PrunesAfterWindow(t *testing.T) {
	rw := newRollingWindow(30 * time.Minute)
	fake := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rw.now = func() time.Time { return fake }

	rw.Observe("en")
	snap := rw.Snapshot()
	require.Equal(t, int64(1), snap["en"])

	fake = fake.Add(31 * time.Minute)
	snap = rw.Snapshot()
	_, present := snap["en"]
	require.False(t, present, "entry older than the window must be pruned")
}

func TestRollingWindow_RecentObserveSurvives(t *testing.T) {
	rw := newRollingWindow(30 * time.Minute)
	fake := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rw.now = func() time.Time { return fake }

	rw.Observe("ja")
	fake = fake.Add(20 * time.Minute)
	rw.Observe("ja")
	fake = fake.Add(20 * time.Minute) // 20min since the second Observe, still fresh

	snap := rw.Snapshot()
	require.Equal(t, int64(2), snap["ja"])
}
