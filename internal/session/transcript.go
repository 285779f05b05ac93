package session

import (
	"errors"
	"strings"
	"sync"
)

// ErrUnsupportedPlatform means the candidate's client offers no speech
// recognition capability. Terminal for a spoken session; never retried.
var ErrUnsupportedPlatform = errors.New("speech recognition not supported on this platform")

// Segment is one chunk of recognizer output. Final segments are stable;
// an interim segment is provisional and replaced by the next one.
type Segment struct {
	Text  string
	Final bool
}

// Source is a restartable capture of spoken audio into text segments.
// Every Start begins with an empty segment backlog: nothing emitted before
// the Start may reach the consumer afterwards.
type Source interface {
	Supported() bool
	Start() error
	Stop()
	Segments() <-chan Segment
}

// StreamSource adapts a push-based segment feed (the browser's recognizer
// relayed over the live socket) to the Source contract. Pushes are dropped
// while the source is stopped, and the pending backlog is discarded on
// every Start so a previous question's speech can never bleed into the
// next question's transcript.
type StreamSource struct {
	supported bool
	out       chan Segment

	mu     sync.Mutex
	active bool
}

func NewStreamSource(supported bool) *StreamSource {
	return &StreamSource{supported: supported, out: make(chan Segment, 64)}
}

func (s *StreamSource) Supported() bool { return s.supported }

func (s *StreamSource) Start() error {
	if !s.supported {
		return ErrUnsupportedPlatform
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Discard anything pushed before this Start. The consumer is the same
	// goroutine that called Start, so nobody races this drain.
	for {
		select {
		case <-s.out:
		default:
			s.active = true
			return nil
		}
	}
}

// Stop ends listening. Safe to call when not started.
func (s *StreamSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

func (s *StreamSource) Segments() <-chan Segment { return s.out }

// Push feeds one recognizer segment in. Dropped unless the source is
// actively listening.
func (s *StreamSource) Push(seg Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	select {
	case s.out <- seg:
	default:
		// Backlog full means the consumer is gone; dropping is the only
		// option that cannot corrupt a later question.
	}
}

// Buffer accumulates the active answer attempt's transcript: finalized
// segments plus one trailing interim segment. Owned exclusively by the
// current answering phase and reset on every entry.
type Buffer struct {
	finals  []string
	interim string
}

func (b *Buffer) Reset() {
	b.finals = nil
	b.interim = ""
}

func (b *Buffer) Add(seg Segment) {
	if seg.Final {
		if s := strings.TrimSpace(seg.Text); s != "" {
			b.finals = append(b.finals, s)
		}
		b.interim = ""
		return
	}
	b.interim = seg.Text
}

// Preview joins finalized segments and appends the interim segment. For
// live display only.
func (b *Buffer) Preview() string {
	joined := strings.Join(b.finals, " ")
	if interim := strings.TrimSpace(b.interim); interim != "" {
		if joined == "" {
			return interim
		}
		return joined + " " + interim
	}
	return joined
}

// Commit produces the text recorded into a response: finalized segments
// plus whatever interim text exists at the moment of the forced stop
// (recognizers may not flush a final segment before a hard stop).
func (b *Buffer) Commit() string {
	return b.Preview()
}

// Empty reports whether nothing usable was captured.
func (b *Buffer) Empty() bool {
	return len(b.finals) == 0 && strings.TrimSpace(b.interim) == ""
}
