package utils

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSeenKeepsFirstSeenOrder(t *testing.T) {
	s := NewSeen("19:00", "19:30")
	require.True(t, s.Add("18:45"))
	require.False(t, s.Add("19:00"))
	require.True(t, s.Has("19:30"))
	require.False(t, s.Has("20:00"))
	require.Equal(t, []string{"19:00", "19:30", "18:45"}, s.Items())
	require.Equal(t, 3, s.Len())
}

func TestSeenItemsIsACopy(t *testing.T) {
	s := NewSeen("a")
	items := s.Items()
	items[0] = "b"
	require.Equal(t, []string{"a"}, s.Items())
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, false)
	l.now = func() time.Time { return time.Date(2026, 3, 1, 9, 5, 7, 0, time.UTC) }

	l.Info("checking %d targets", 4)
	l.Warn("state unreadable")
	l.Error("save failed: %v", "disk full")
	l.Debug("hidden")

	out := buf.String()
	require.Contains(t, out, "[INFO]   09:05:07 checking 4 targets")
	require.Contains(t, out, "[WARN]   09:05:07 state unreadable")
	require.Contains(t, out, "[ERROR]  09:05:07 save failed: disk full")
	require.NotContains(t, out, "hidden")
}

func TestLoggerVerboseDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, true)
	l.Debug("selector %s matched", "button")
	require.True(t, l.Verbose())
	require.Contains(t, buf.String(), "[DEBUG]")
	require.Contains(t, buf.String(), "selector button matched")
}

func TestRateLimiterPausesFullDelayEachCall(t *testing.T) {
	r := NewRateLimiter(50)
	require.Equal(t, 50*time.Millisecond, r.Delay())

	for i := 0; i < 2; i++ {
		// time spent elsewhere must not shorten the next pause
		time.Sleep(80 * time.Millisecond)
		start := time.Now()
		require.NoError(t, r.Pause(context.Background()))
		require.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	r := NewRateLimiter(0)
	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Pause(context.Background()))
	}
	require.Less(t, time.Since(start), 20*time.Millisecond)
	require.Zero(t, r.Delay())
}

func TestRateLimiterHonoursContext(t *testing.T) {
	r := NewRateLimiter(10_000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, r.Pause(ctx))
}
