package session

import "context"

// Submission is the final payload handed to the scoring service: the full
// ledger plus session identity. Built exactly once per submit attempt from
// an unchanged ledger, so a retry sends byte-identical content.
type Submission struct {
	JobID       string   `json:"job_id"`
	RoundID     string   `json:"round_id"`
	CandidateID string   `json:"candidate_id"`
	RoundType   string   `json:"round_type"`
	RoundTitle  string   `json:"round_title"`
	Responses   []Record `json:"responses"`
	TotalSec    int      `json:"time_in_seconds"`
}

// SubmissionResult is what the scoring service hands back.
type SubmissionResult struct {
	TotalScore float64 `json:"totalScore"`
	MaxScore   float64 `json:"maxPossibleScore"`
	Cleared    bool    `json:"cleared"`
	Feedback   string  `json:"overallFeedback"`
}

// Gateway scores and persists one submission. Calls may take non-trivial
// wall-clock time (LLM-backed analysis); the controller invokes it off its
// event loop.
type Gateway interface {
	Submit(ctx context.Context, sub Submission) (SubmissionResult, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, sub Submission) (SubmissionResult, error)

func (f GatewayFunc) Submit(ctx context.Context, sub Submission) (SubmissionResult, error) {
	return f(ctx, sub)
}
