package ai

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadPromptsOverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"question_prompt: \"Ask about {{.JobTitle}}\"\n"), 0o644))

	p, err := LoadPrompts(path)
	require.NoError(t, err)

	out, err := p.renderQuestion(questionPromptData{JobTitle: "Go Developer"})
	require.NoError(t, err)
	require.Equal(t, "Ask about Go Developer", out)

	// Unset fields keep the embedded default.
	require.Equal(t, defaultAnalysisPrompt, p.AnalysisPrompt)
}

func TestLoadPromptsMissingFile(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadPromptsBadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"question_prompt: \"{{.Unclosed\"\n"), 0o644))
	_, err := LoadPrompts(path)
	require.Error(t, err)
}
