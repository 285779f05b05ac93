package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func drain(s *StreamSource) []Segment {
	var out []Segment
	for {
		select {
		case seg := <-s.Segments():
			out = append(out, seg)
		default:
			return out
		}
	}
}

func TestStreamSourceDropsWhenInactive(t *testing.T) {
	s := NewStreamSource(true)

	s.Push(Segment{Text: "before start", Final: true})
	require.Empty(t, drain(s))

	require.NoError(t, s.Start())
	s.Push(Segment{Text: "live", Final: true})
	got := drain(s)
	require.Len(t, got, 1)
	require.Equal(t, "live", got[0].Text)

	s.Stop()
	s.Push(Segment{Text: "after stop", Final: true})
	require.Empty(t, drain(s))
}

func TestStreamSourceStartDiscardsBacklog(t *testing.T) {
	s := NewStreamSource(true)

	require.NoError(t, s.Start())
	s.Push(Segment{Text: "first question speech", Final: true})
	s.Stop()

	// Not consumed before the stop; the next Start must not replay it.
	require.NoError(t, s.Start())
	s.Push(Segment{Text: "second question speech", Final: true})
	got := drain(s)
	require.Len(t, got, 1)
	require.Equal(t, "second question speech", got[0].Text)
}

func TestStreamSourceUnsupported(t *testing.T) {
	s := NewStreamSource(false)
	require.False(t, s.Supported())
	require.ErrorIs(t, s.Start(), ErrUnsupportedPlatform)
}

func TestBufferInterimReplacedByFinal(t *testing.T) {
	var b Buffer
	b.Add(Segment{Text: "hel"})
	b.Add(Segment{Text: "hello wor"})
	require.Equal(t, "hello wor", b.Preview())

	b.Add(Segment{Text: "hello world", Final: true})
	require.Equal(t, "hello world", b.Preview())

	b.Add(Segment{Text: "how are"})
	require.Equal(t, "hello world how are", b.Preview())
}

func TestBufferCommitIncludesTrailingInterim(t *testing.T) {
	var b Buffer
	b.Add(Segment{Text: "the answer is", Final: true})
	b.Add(Segment{Text: "forty two"})
	// A hard stop mid-utterance keeps the provisional tail.
	require.Equal(t, "the answer is forty two", b.Commit())
}

func TestBufferReset(t *testing.T) {
	var b Buffer
	b.Add(Segment{Text: "stale", Final: true})
	b.Add(Segment{Text: "tail"})
	require.False(t, b.Empty())

	b.Reset()
	require.True(t, b.Empty())
	require.Equal(t, "", b.Commit())
}

func TestBufferIgnoresBlankFinals(t *testing.T) {
	var b Buffer
	b.Add(Segment{Text: "   ", Final: true})
	require.True(t, b.Empty())
}
