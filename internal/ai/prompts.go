package ai

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Prompts holds the templates used to build LLM requests. They ship with
// embedded defaults and can be overridden from a YAML file so recruiters
// can tune phrasing without a rebuild.
type Prompts struct {
	QuestionPrompt string `yaml:"question_prompt"`
	AnalysisPrompt string `yaml:"analysis_prompt"`

	question *template.Template
	analysis *template.Template
}

const defaultQuestionPrompt = `You are generating interview questions for a hiring platform.

Job title: {{.JobTitle}}
Experience required: {{.Experience}}
Round type: {{.RoundType}}
Difficulty: {{.Difficulty}}
Job description: {{.Description}}

Generate exactly {{.Count}} questions as a JSON array. Each element must have:
- "question_text": the question
- "question_type": "multiple-choice" for quiz rounds, "open-response" for interview rounds
- "options": array of 4 strings (multiple-choice only)
- "correct_option_index": 0-based index of the right option (multiple-choice only)
- "expected_keywords": array of strings a strong answer would mention (open-response only)
- "marks": integer point value
- "time_limit_seconds": integer answer window
- "difficulty_level": "{{.Difficulty}}"

Respond with the JSON array only, no commentary.`

const defaultAnalysisPrompt = `You are evaluating a candidate's spoken interview answers for the role of {{.JobTitle}} ({{.RoundType}} round: {{.RoundTitle}}).

Candidate responses:
{{range .Responses}}
Question: {{.QuestionText}}
Answer: {{.Answer}}
Time spent: {{.ElapsedSec}} seconds
{{end}}

Score each category 0-10 and respond with a JSON object containing:
technicalKnowledge, communicationSkills, problemSolving, relevantExperience,
culturalFit, criticalThinking, clarityOfThought, completenessOfAnswers,
confidence, overallImpression - each as {"score": n, "feedback": "..."} -
plus "totalScore" (0-100) and "overallFeedback" (string).

Respond with the JSON object only, no commentary.`

// DefaultPrompts returns the embedded templates.
func DefaultPrompts() (*Prompts, error) {
	p := &Prompts{QuestionPrompt: defaultQuestionPrompt, AnalysisPrompt: defaultAnalysisPrompt}
	return p, p.compile()
}

// LoadPrompts reads overrides from a YAML file; empty fields keep their
// defaults.
func LoadPrompts(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts %s: %w", path, err)
	}
	p := &Prompts{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse prompts %s: %w", path, err)
	}
	if p.QuestionPrompt == "" {
		p.QuestionPrompt = defaultQuestionPrompt
	}
	if p.AnalysisPrompt == "" {
		p.AnalysisPrompt = defaultAnalysisPrompt
	}
	return p, p.compile()
}

func (p *Prompts) compile() error {
	var err error
	if p.question, err = template.New("question").Parse(p.QuestionPrompt); err != nil {
		return fmt.Errorf("question prompt: %w", err)
	}
	if p.analysis, err = template.New("analysis").Parse(p.AnalysisPrompt); err != nil {
		return fmt.Errorf("analysis prompt: %w", err)
	}
	return nil
}

func (p *Prompts) renderQuestion(data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := p.question.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *Prompts) renderAnalysis(data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := p.analysis.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
