package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hirevox/hirevox/internal/session"
)

// FeedbackCategory is one scored dimension of a spoken interview.
type FeedbackCategory struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Analysis is the analyzer's full verdict on a spoken round.
type Analysis struct {
	TechnicalKnowledge    FeedbackCategory `json:"technicalKnowledge"`
	CommunicationSkills   FeedbackCategory `json:"communicationSkills"`
	ProblemSolving        FeedbackCategory `json:"problemSolving"`
	RelevantExperience    FeedbackCategory `json:"relevantExperience"`
	CulturalFit           FeedbackCategory `json:"culturalFit"`
	CriticalThinking      FeedbackCategory `json:"criticalThinking"`
	ClarityOfThought      FeedbackCategory `json:"clarityOfThought"`
	CompletenessOfAnswers FeedbackCategory `json:"completenessOfAnswers"`
	Confidence            FeedbackCategory `json:"confidence"`
	OverallImpression     FeedbackCategory `json:"overallImpression"`
	TotalScore            float64          `json:"totalScore"`
	OverallFeedback       string           `json:"overallFeedback"`
}

// Analyzer scores spoken interview transcripts.
type Analyzer struct {
	client  *Client
	prompts *Prompts
}

func NewAnalyzer(client *Client, prompts *Prompts) *Analyzer {
	return &Analyzer{client: client, prompts: prompts}
}

type analysisPromptData struct {
	JobTitle   string
	RoundType  string
	RoundTitle string
	Responses  []session.Record
}

// Analyze submits the recorded answers and parses the structured verdict.
func (a *Analyzer) Analyze(ctx context.Context, responses []session.Record, jobTitle, roundType, roundTitle string) (Analysis, error) {
	prompt, err := a.prompts.renderAnalysis(analysisPromptData{
		JobTitle:   jobTitle,
		RoundType:  roundType,
		RoundTitle: roundTitle,
		Responses:  responses,
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("render analysis prompt: %w", err)
	}

	reply, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return Analysis{}, err
	}

	var out Analysis
	if err := json.Unmarshal([]byte(reply), &out); err != nil {
		return Analysis{}, fmt.Errorf("parse analysis: %w", err)
	}
	return out, nil
}
