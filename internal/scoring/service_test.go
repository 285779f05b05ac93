package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hirevox/hirevox/internal/ai"
	"github.com/hirevox/hirevox/internal/hiring"
	"github.com/hirevox/hirevox/internal/session"
)

type fakeAnalyzer struct {
	analysis ai.Analysis
	err      error
	calls    int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ []session.Record, _, _, _ string) (ai.Analysis, error) {
	f.calls++
	return f.analysis, f.err
}

func intPtr(v int) *int { return &v }

func seedQuizRound(t *testing.T) (hiring.Store, hiring.Job, hiring.Round, []hiring.Question) {
	t.Helper()
	store := hiring.NewInMemoryStore()
	job, err := store.PutJob(hiring.Job{Title: "Platform Engineer"})
	require.NoError(t, err)
	round, err := store.PutRound(hiring.Round{JobID: job.ID, Number: 1, Type: hiring.RoundQuiz, Title: "Screening"})
	require.NoError(t, err)
	qs, err := store.PutQuestions(round.ID, []hiring.Question{
		{Text: "a", Kind: hiring.KindMultipleChoice, Options: []string{"x", "y"}, CorrectIndex: 0, Marks: 10, TimeLimitSec: 30},
		{Text: "b", Kind: hiring.KindMultipleChoice, Options: []string{"x", "y"}, CorrectIndex: 1, Marks: 10, TimeLimitSec: 30},
	})
	require.NoError(t, err)
	return store, job, round, qs
}

func TestSubmitQuizScoresFromLedger(t *testing.T) {
	store, job, round, qs := seedQuizRound(t)
	svc := NewService(store, nil, nil, 50, nil)

	sub := session.Submission{
		JobID: job.ID, RoundID: round.ID, CandidateID: "cand1",
		RoundType: string(hiring.RoundQuiz), RoundTitle: round.Title,
		Responses: []session.Record{
			{QuestionID: qs[0].ID, Answer: "x", PointsEarned: intPtr(10), ElapsedSec: 12},
			{QuestionID: qs[1].ID, Answer: "x", PointsEarned: intPtr(0), ElapsedSec: 30},
		},
		TotalSec: 42,
	}

	res, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.Equal(t, 10.0, res.TotalScore)
	require.Equal(t, 20.0, res.MaxScore)
	require.True(t, res.Cleared, "10/20 meets a 50% threshold")
	require.Equal(t, "You can improve your performance", res.Feedback)

	rep, err := store.GetReport(job.ID, round.ID, "cand1")
	require.NoError(t, err)
	require.Equal(t, 10.0, rep.Score)
	require.Equal(t, 42, rep.TimeSec)
	require.Contains(t, rep.ResponseJSON, qs[0].ID)
}

func TestSubmitQuizPerfectScoreFeedback(t *testing.T) {
	store, job, round, qs := seedQuizRound(t)
	svc := NewService(store, nil, nil, 50, nil)

	res, err := svc.Submit(context.Background(), session.Submission{
		JobID: job.ID, RoundID: round.ID, CandidateID: "cand1",
		RoundType: string(hiring.RoundQuiz),
		Responses: []session.Record{
			{QuestionID: qs[0].ID, PointsEarned: intPtr(10)},
			{QuestionID: qs[1].ID, PointsEarned: intPtr(10)},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "You have performed well", res.Feedback)
	require.True(t, res.Cleared)
}

func TestSubmitQuizBelowThresholdNotCleared(t *testing.T) {
	store, job, round, qs := seedQuizRound(t)
	svc := NewService(store, nil, nil, 75, nil)

	res, err := svc.Submit(context.Background(), session.Submission{
		JobID: job.ID, RoundID: round.ID, CandidateID: "cand1",
		RoundType: string(hiring.RoundQuiz),
		Responses: []session.Record{
			{QuestionID: qs[0].ID, PointsEarned: intPtr(10)},
			{QuestionID: qs[1].ID, PointsEarned: intPtr(0)},
		},
	})
	require.NoError(t, err)
	require.False(t, res.Cleared, "10/20 misses a 75% threshold")
}

func TestSubmitInterviewUsesAnalyzer(t *testing.T) {
	store := hiring.NewInMemoryStore()
	job, _ := store.PutJob(hiring.Job{Title: "Data Engineer"})
	round, _ := store.PutRound(hiring.Round{JobID: job.ID, Number: 1, Type: hiring.RoundInterview, Title: "Tech Interview"})

	analyzer := &fakeAnalyzer{analysis: ai.Analysis{TotalScore: 72, OverallFeedback: "Strong fundamentals"}}
	svc := NewService(store, analyzer, nil, 50, nil)

	res, err := svc.Submit(context.Background(), session.Submission{
		JobID: job.ID, RoundID: round.ID, CandidateID: "cand1",
		RoundType: string(hiring.RoundInterview), RoundTitle: round.Title,
		Responses: []session.Record{{QuestionID: "q1", Answer: "spoke at length"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, analyzer.calls)
	require.Equal(t, 72.0, res.TotalScore)
	require.Equal(t, 100.0, res.MaxScore)
	require.True(t, res.Cleared)
	require.Equal(t, "Strong fundamentals", res.Feedback)

	rep, err := store.GetReport(job.ID, round.ID, "cand1")
	require.NoError(t, err)
	require.Equal(t, "Strong fundamentals", rep.Feedback)
}

func TestSubmitInterviewAnalyzerFailureLeavesNoReport(t *testing.T) {
	store := hiring.NewInMemoryStore()
	job, _ := store.PutJob(hiring.Job{Title: "Data Engineer"})
	round, _ := store.PutRound(hiring.Round{JobID: job.ID, Number: 1, Type: hiring.RoundInterview, Title: "Tech Interview"})

	analyzer := &fakeAnalyzer{err: errors.New("model unavailable")}
	svc := NewService(store, analyzer, nil, 50, nil)

	_, err := svc.Submit(context.Background(), session.Submission{
		JobID: job.ID, RoundID: round.ID, CandidateID: "cand1",
		RoundType: string(hiring.RoundInterview),
	})
	require.Error(t, err)

	_, err = store.GetReport(job.ID, round.ID, "cand1")
	require.ErrorIs(t, err, hiring.ErrNotFound, "failed scoring must not persist a report")
}

func TestSubmitInterviewWithoutAnalyzer(t *testing.T) {
	store := hiring.NewInMemoryStore()
	svc := NewService(store, nil, nil, 50, nil)

	_, err := svc.Submit(context.Background(), session.Submission{RoundType: string(hiring.RoundInterview)})
	require.Error(t, err)
}

func TestSubmitUnknownRoundType(t *testing.T) {
	svc := NewService(hiring.NewInMemoryStore(), nil, nil, 50, nil)
	_, err := svc.Submit(context.Background(), session.Submission{RoundType: "puzzle"})
	require.Error(t, err)
}
