// Package live carries a candidate's assessment session over a
// websocket: the browser relays permission outcomes and recognizer
// segments up, and receives phase snapshots and sanitized questions
// down.
package live

import (
	"encoding/json"

	"github.com/hirevox/hirevox/internal/hiring"
	"github.com/hirevox/hirevox/internal/session"
)

type MessageType string

const (
	// Client -> Server
	MessageTypeJoin    MessageType = "join"
	MessageTypeStart   MessageType = "start"
	MessageTypeSelect  MessageType = "select_option"
	MessageTypeAdvance MessageType = "advance"
	MessageTypeSegment MessageType = "segment"
	MessageTypeSubmit  MessageType = "submit"
	MessageTypePing    MessageType = "ping"

	// Server -> Client
	MessageTypeJoined   MessageType = "joined"
	MessageTypeSnapshot MessageType = "snapshot"
	MessageTypeQuestion MessageType = "question"
	MessageTypeError    MessageType = "error"
	MessageTypePong     MessageType = "pong"
)

// Message is the outgoing frame.
type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

// envelope is the incoming frame; the payload stays raw until the type
// is known.
type envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	JobID   string `json:"job_id"`
	RoundID string `json:"round_id"`
	// Permissions is the browser's getUserMedia outcome; the server-side
	// gate fails the session closed on a missing grant.
	Permissions     session.Permissions `json:"permissions"`
	SpeechSupported bool                `json:"speech_supported"`
	Resume          bool                `json:"resume,omitempty"`
}

type SelectPayload struct {
	OptionIndex int `json:"option_index"`
}

type SegmentPayload struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

type JoinedPayload struct {
	SessionKey    string           `json:"session_key"`
	RoundType     hiring.RoundType `json:"round_type"`
	RoundTitle    string           `json:"round_title"`
	QuestionCount int              `json:"question_count"`
}

// QuestionView is a question with its answer key and scoring hints
// stripped. Candidates never see CorrectIndex or ExpectedKeywords.
type QuestionView struct {
	ID           string              `json:"id"`
	Text         string              `json:"question_text"`
	Kind         hiring.QuestionKind `json:"question_type"`
	Options      []string            `json:"options,omitempty"`
	Marks        int                 `json:"marks"`
	TimeLimitSec int                 `json:"time_limit_seconds"`
}

type QuestionPayload struct {
	Index    int          `json:"question_index"`
	Total    int          `json:"total_questions"`
	Question QuestionView `json:"question"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func viewOf(q hiring.Question) QuestionView {
	return QuestionView{
		ID:           q.ID,
		Text:         q.Text,
		Kind:         q.Kind,
		Options:      q.Options,
		Marks:        q.Marks,
		TimeLimitSec: q.TimeLimitSec,
	}
}
