package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testTick = 5 * time.Millisecond

func collectUntilExpired(t *testing.T, events <-chan TimerEvent) []TimerEvent {
	t.Helper()
	var out []TimerEvent
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			out = append(out, ev)
			if ev.Expired {
				return out
			}
		case <-deadline:
			t.Fatal("timer never expired")
		}
	}
}

func TestTimerCountsDownAndExpiresOnce(t *testing.T) {
	events := make(chan TimerEvent, 16)
	tm := NewTimer(testTick, events)

	require.NoError(t, tm.Start(3))
	got := collectUntilExpired(t, events)

	require.Len(t, got, 3)
	require.Equal(t, []int{2, 1, 0}, []int{got[0].Remaining, got[1].Remaining, got[2].Remaining})
	require.False(t, got[0].Expired)
	require.False(t, got[1].Expired)
	require.True(t, got[2].Expired)

	// No further events after expiry.
	select {
	case ev := <-events:
		t.Fatalf("unexpected event after expiry: %+v", ev)
	case <-time.After(10 * testTick):
	}
	require.False(t, tm.Running())
}

func TestTimerRestartableImmediatelyAfterExpiry(t *testing.T) {
	events := make(chan TimerEvent, 16)
	tm := NewTimer(testTick, events)

	require.NoError(t, tm.Start(1))
	first := collectUntilExpired(t, events)
	require.True(t, first[len(first)-1].Expired)

	// The expiry consumer restarts the countdown for the next phase.
	require.NoError(t, tm.Start(1))
	second := collectUntilExpired(t, events)
	require.True(t, second[len(second)-1].Expired)
	require.Greater(t, second[0].Gen, first[0].Gen)
}

func TestTimerRejectsConcurrentStart(t *testing.T) {
	events := make(chan TimerEvent, 16)
	tm := NewTimer(testTick, events)

	require.NoError(t, tm.Start(100))
	require.ErrorIs(t, tm.Start(5), ErrTimerRunning)
	tm.Stop()
}

func TestTimerRejectsNonPositiveSeconds(t *testing.T) {
	tm := NewTimer(testTick, make(chan TimerEvent, 1))
	require.Error(t, tm.Start(0))
	require.Error(t, tm.Start(-3))
}

func TestTimerStopSuppressesExpiry(t *testing.T) {
	events := make(chan TimerEvent, 16)
	tm := NewTimer(testTick, events)

	require.NoError(t, tm.Start(100))
	tm.Stop()
	tm.Stop() // idempotent

	// Drain anything already in flight, then expect silence.
	time.Sleep(5 * testTick)
	for {
		select {
		case ev := <-events:
			require.False(t, ev.Expired, "expiry delivered after Stop")
			continue
		default:
		}
		break
	}
	require.False(t, tm.Running())
	require.NoError(t, tm.Start(1))
	collectUntilExpired(t, events)
}

func TestTimerGenerationDistinguishesRuns(t *testing.T) {
	events := make(chan TimerEvent, 32)
	tm := NewTimer(testTick, events)

	require.NoError(t, tm.Start(50))
	time.Sleep(5 * testTick)
	tm.Stop()
	staleGen := tm.Gen()

	require.NoError(t, tm.Start(2))
	liveGen := tm.Gen()
	require.Greater(t, liveGen, staleGen)

	got := collectUntilExpired(t, events)
	for _, ev := range got {
		if ev.Expired {
			require.Equal(t, liveGen, ev.Gen, "expiry must carry the live generation")
		}
	}
}
