package hiring

import "fmt"

// QuestionKind is the closed set of question variants a round can contain.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple-choice"
	KindOpenResponse   QuestionKind = "open-response"
)

// Question is immutable once a session starts. Multiple-choice questions
// carry Options and CorrectIndex; open-response questions carry
// ExpectedKeywords as a scoring hint for the analyzer.
type Question struct {
	ID               string       `json:"id"`
	Text             string       `json:"question_text"`
	Kind             QuestionKind `json:"question_type"`
	Options          []string     `json:"options,omitempty"`
	CorrectIndex     int          `json:"correct_option_index,omitempty"`
	ExpectedKeywords []string     `json:"expected_keywords,omitempty"`
	Marks            int          `json:"marks"`
	TimeLimitSec     int          `json:"time_limit_seconds"`
	Difficulty       string       `json:"difficulty_level,omitempty"`
}

// Validate rejects malformed variants before they can reach a session.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question missing id")
	}
	if q.TimeLimitSec <= 0 {
		return fmt.Errorf("question %s: time limit must be positive", q.ID)
	}
	switch q.Kind {
	case KindMultipleChoice:
		if len(q.Options) == 0 {
			return fmt.Errorf("question %s: multiple-choice requires options", q.ID)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("question %s: correct index %d out of range", q.ID, q.CorrectIndex)
		}
	case KindOpenResponse:
		// keywords optional
	default:
		return fmt.Errorf("question %s: unknown kind %q", q.ID, q.Kind)
	}
	return nil
}

// RoundType distinguishes the two candidate-facing session variants.
type RoundType string

const (
	RoundQuiz      RoundType = "quiz"
	RoundInterview RoundType = "interview"
)

type Job struct {
	ID            string `json:"id"`
	Title         string `json:"job_title"`
	Description   string `json:"description"`
	Location      string `json:"location,omitempty"`
	ExperienceMin int    `json:"experience_min"`
	ExperienceMax int    `json:"experience_max"`
	Status        string `json:"status"` // open|closed
	CreatedAt     int64  `json:"created_at,omitempty"`
}

type Round struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	Number      int       `json:"round_number"`
	Type        RoundType `json:"round_type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Mandatory   bool      `json:"is_mandatory"`
}

type Application struct {
	ID          string `json:"id"`
	JobID       string `json:"job_id"`
	CandidateID string `json:"candidate_id"`
	Status      string `json:"status"` // applied|in_progress|completed
	CreatedAt   int64  `json:"created_at,omitempty"`
}

// Report is one candidate's scored result for one round, written by the
// submission gateway after analysis.
type Report struct {
	ID           string  `json:"id"`
	JobID        string  `json:"job_id"`
	RoundID      string  `json:"round_id"`
	CandidateID  string  `json:"candidate_id"`
	Score        float64 `json:"score"`
	MaxScore     float64 `json:"max_score"`
	Cleared      bool    `json:"cleared"`
	TimeSec      int     `json:"time_in_seconds"`
	ResponseJSON string  `json:"response_data"`
	Feedback     string  `json:"feedback"`
	CreatedAt    int64   `json:"created_at,omitempty"`
}
