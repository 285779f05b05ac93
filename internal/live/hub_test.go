package live

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hirevox/hirevox/internal/hiring"
	"github.com/hirevox/hirevox/internal/session"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	gw := session.GatewayFunc(func(context.Context, session.Submission) (session.SubmissionResult, error) {
		return session.SubmissionResult{}, nil
	})
	h := NewHub(hiring.NewInMemoryStore(), gw, session.NopMirror{}, 1, 1, log.New(io.Discard, "", 0))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func waitShutdown(t *testing.T, c *Client) {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(3 * time.Second):
		t.Fatal("client was never shut down")
	}
}

// A candidate opening the session in a second tab displaces the first
// socket while its goroutines are still live and may keep emitting
// frames. Those late sends must be dropped, never crash the gateway.
func TestRejoinDisplacesPreviousConnection(t *testing.T) {
	h := testHub(t)
	key := session.SessionKey("quiz", "job1", "round1", "cand1")

	first := newClient(h, nil, "cand1")
	first.bind(key, nil, nil, func() {})
	second := newClient(h, nil, "cand1")
	second.bind(key, nil, nil, func() {})

	h.register <- first
	h.register <- second
	waitShutdown(t, first)

	require.NotPanics(t, func() {
		first.sendError("stale frame")
		first.sendMessage(MessageTypeSnapshot, session.Snapshot{})
	})
	require.Empty(t, first.send, "a displaced client drops outbound frames")

	second.sendMessage(MessageTypePong, nil)
	require.Len(t, second.send, 1, "the replacement connection keeps sending")
}

func TestClientShutdownIdempotent(t *testing.T) {
	h := testHub(t)

	cancelled := 0
	c := newClient(h, nil, "cand1")
	c.bind("k", nil, nil, func() { cancelled++ })

	require.NotPanics(t, func() {
		c.shutdown()
		c.shutdown()
	})
	require.Equal(t, 1, cancelled, "the session loop is cancelled exactly once")

	// Both the hub (displacement) and the read pump (disconnect) may race
	// to unregister the same client.
	h.unregister <- c
	h.unregister <- c
	c2 := newClient(h, nil, "cand2")
	c2.bind("k2", nil, nil, func() {})
	h.register <- c2
	waitShutdown(t, c)
}
