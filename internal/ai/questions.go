package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hirevox/hirevox/internal/hiring"
)

// Generator produces question sets for a round from job context.
type Generator struct {
	client  *Client
	prompts *Prompts
}

func NewGenerator(client *Client, prompts *Prompts) *Generator {
	return &Generator{client: client, prompts: prompts}
}

type questionPromptData struct {
	JobTitle    string
	Experience  string
	RoundType   string
	Difficulty  string
	Description string
	Count       int
}

// Generate asks the LLM for count questions tailored to the job and round.
// The reply is parsed and validated; a malformed record fails the whole
// batch rather than silently dropping questions.
func (g *Generator) Generate(ctx context.Context, job hiring.Job, round hiring.Round, count int, difficulty string) ([]hiring.Question, error) {
	if count <= 0 {
		count = 5
	}
	if difficulty == "" {
		difficulty = "Medium"
	}
	prompt, err := g.prompts.renderQuestion(questionPromptData{
		JobTitle:    job.Title,
		Experience:  fmt.Sprintf("%d-%d years", job.ExperienceMin, job.ExperienceMax),
		RoundType:   string(round.Type),
		Difficulty:  difficulty,
		Description: job.Description,
		Count:       count,
	})
	if err != nil {
		return nil, fmt.Errorf("render question prompt: %w", err)
	}

	reply, err := g.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var qs []hiring.Question
	if err := json.Unmarshal([]byte(reply), &qs); err != nil {
		return nil, fmt.Errorf("parse generated questions: %w", err)
	}
	for i := range qs {
		if qs[i].Kind == "" {
			if round.Type == hiring.RoundQuiz {
				qs[i].Kind = hiring.KindMultipleChoice
			} else {
				qs[i].Kind = hiring.KindOpenResponse
			}
		}
		if qs[i].TimeLimitSec <= 0 {
			qs[i].TimeLimitSec = 60
		}
		if qs[i].Marks <= 0 {
			qs[i].Marks = 10
		}
	}
	return qs, nil
}
