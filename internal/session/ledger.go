package session

import (
	"log"
	"sync"
)

// Record is one answered question's outcome. The quiz-only fields are
// pointers so the spoken variant's submission payload omits them.
type Record struct {
	QuestionID   string `json:"questionId"`
	QuestionText string `json:"questionText"`
	Answer       string `json:"answerText"`
	ElapsedSec   int    `json:"elapsedSeconds"`

	SelectedOption *int  `json:"selectedOptionIndex,omitempty"`
	Correct        *bool `json:"isCorrect,omitempty"`
	PointsEarned   *int  `json:"pointsEarned,omitempty"`
}

// Ledger holds at most one Record per question, ordered by the session's
// question sequence. Records are only ever superseded, never removed.
// Every upsert mirrors the full contents durably so a reload cannot lose
// an earlier answer.
type Ledger struct {
	mu      sync.Mutex
	order   []string
	pos     map[string]int
	records map[string]Record
	mirror  Mirror
	key     string
	logger  *log.Logger
}

// NewLedger builds a ledger ordered by questionIDs. mirror may be nil.
func NewLedger(questionIDs []string, mirror Mirror, key string, logger *log.Logger) *Ledger {
	if mirror == nil {
		mirror = NopMirror{}
	}
	if logger == nil {
		logger = log.Default()
	}
	l := &Ledger{
		order:   append([]string(nil), questionIDs...),
		pos:     make(map[string]int, len(questionIDs)),
		records: make(map[string]Record, len(questionIDs)),
		mirror:  mirror,
		key:     key,
		logger:  logger,
	}
	for i, id := range l.order {
		l.pos[id] = i
	}
	return l
}

// Upsert inserts or replaces the record for its question. A question ID
// outside the known sequence is tolerated and ordered after the sequence.
func (l *Ledger) Upsert(rec Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, known := l.pos[rec.QuestionID]; !known {
		l.pos[rec.QuestionID] = len(l.order)
		l.order = append(l.order, rec.QuestionID)
	}
	l.records[rec.QuestionID] = rec
	if err := l.mirror.Save(l.key, l.allLocked()); err != nil {
		// Durability is best-effort; the in-memory ledger stays authoritative.
		l.logger.Printf("session: mirror write failed for %s: %v", l.key, err)
	}
}

// All returns the ledger contents ordered by question sequence.
func (l *Ledger) All() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allLocked()
}

func (l *Ledger) allLocked() []Record {
	out := make([]Record, 0, len(l.records))
	for _, id := range l.order {
		if rec, ok := l.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// Has reports whether a record exists for the question.
func (l *Ledger) Has(questionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.records[questionID]
	return ok
}

// Len is the number of recorded answers.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Seed installs previously mirrored records without triggering mirror
// writes. Used at construction for resume.
func (l *Ledger) Seed(recs []Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rec := range recs {
		if _, known := l.pos[rec.QuestionID]; !known {
			l.pos[rec.QuestionID] = len(l.order)
			l.order = append(l.order, rec.QuestionID)
		}
		l.records[rec.QuestionID] = rec
	}
}
