// Package scoring implements the submission gateway: it scores one
// finished session, persists the report, and records an audit event.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hirevox/hirevox/internal/ai"
	"github.com/hirevox/hirevox/internal/audit"
	"github.com/hirevox/hirevox/internal/hiring"
	"github.com/hirevox/hirevox/internal/session"
)

// DefaultPassThresholdPct mirrors the dashboard's historical fixed cutoff.
// It is a per-deployment policy knob, not a per-round setting.
const DefaultPassThresholdPct = 50.0

// ResponseAnalyzer scores spoken transcripts. Satisfied by *ai.Analyzer.
type ResponseAnalyzer interface {
	Analyze(ctx context.Context, responses []session.Record, jobTitle, roundType, roundTitle string) (ai.Analysis, error)
}

type Service struct {
	store    hiring.Store
	analyzer ResponseAnalyzer
	events   *audit.EventRepo // nil disables audit logging
	passPct  float64
	logger   *log.Logger
}

func NewService(store hiring.Store, analyzer ResponseAnalyzer, events *audit.EventRepo, passPct float64, logger *log.Logger) *Service {
	if passPct <= 0 {
		passPct = DefaultPassThresholdPct
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, analyzer: analyzer, events: events, passPct: passPct, logger: logger}
}

// Submit scores the submission and writes the report. Quiz rounds are
// scored from the ledger's correctness flags; spoken rounds go through the
// LLM analyzer. Any failure leaves no partial report behind, so the
// session may retry with the same payload.
func (s *Service) Submit(ctx context.Context, sub session.Submission) (session.SubmissionResult, error) {
	var result session.SubmissionResult

	switch hiring.RoundType(sub.RoundType) {
	case hiring.RoundQuiz:
		questions, err := s.store.ListQuestions(sub.RoundID)
		if err != nil {
			return result, fmt.Errorf("load round questions: %w", err)
		}
		total := 0.0
		for _, r := range sub.Responses {
			if r.PointsEarned != nil {
				total += float64(*r.PointsEarned)
			}
		}
		max := 0.0
		for _, q := range questions {
			max += float64(q.Marks)
		}
		result.TotalScore = total
		result.MaxScore = max
		if total < max {
			result.Feedback = "You can improve your performance"
		} else {
			result.Feedback = "You have performed well"
		}

	case hiring.RoundInterview:
		if s.analyzer == nil {
			return result, fmt.Errorf("no analyzer configured for interview rounds")
		}
		jobTitle := sub.RoundTitle
		if job, err := s.store.GetJob(sub.JobID); err == nil {
			jobTitle = job.Title
		}
		analysis, err := s.analyzer.Analyze(ctx, sub.Responses, jobTitle, sub.RoundType, sub.RoundTitle)
		if err != nil {
			return result, fmt.Errorf("analyze responses: %w", err)
		}
		result.TotalScore = analysis.TotalScore
		result.MaxScore = 100
		result.Feedback = analysis.OverallFeedback

	default:
		return result, fmt.Errorf("unknown round type %q", sub.RoundType)
	}

	if result.MaxScore > 0 {
		result.Cleared = result.TotalScore/result.MaxScore*100 >= s.passPct
	}

	respJSON, err := json.Marshal(sub.Responses)
	if err != nil {
		return session.SubmissionResult{}, fmt.Errorf("marshal responses: %w", err)
	}
	report, err := s.store.PutReport(hiring.Report{
		JobID:        sub.JobID,
		RoundID:      sub.RoundID,
		CandidateID:  sub.CandidateID,
		Score:        result.TotalScore,
		MaxScore:     result.MaxScore,
		Cleared:      result.Cleared,
		TimeSec:      sub.TotalSec,
		ResponseJSON: string(respJSON),
		Feedback:     result.Feedback,
	})
	if err != nil {
		return session.SubmissionResult{}, fmt.Errorf("persist report: %w", err)
	}

	if s.events != nil {
		data, _ := json.Marshal(map[string]interface{}{
			"job_id": sub.JobID, "round_id": sub.RoundID,
			"candidate_id": sub.CandidateID, "score": result.TotalScore,
		})
		if err := s.events.Append(ctx, audit.Event{
			Type: audit.EventSessionSubmitted, Key: report.ID, DataJSON: string(data),
		}); err != nil {
			s.logger.Printf("scoring: audit append failed for %s: %v", report.ID, err)
		}
	}

	return result, nil
}
