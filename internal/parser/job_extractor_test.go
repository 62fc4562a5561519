package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDraft(t *testing.T) {
	llm := &mockChatModel{response: `{
  "job_title": "Data Analyst",
  "salary_range": "8-12 LPA",
  "experience_level": "",
  "job_type": "Full-time",
  "skills": ["SQL", "Python"],
  "description": ""
}`}

	extractor := NewJobFieldExtractor(llm)
	history := []*schema.Message{
		schema.UserMessage("I want to hire a data analyst, full time, 8-12 LPA"),
	}

	draft, err := extractor.ExtractDraft(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", draft.JobTitle)
	assert.Equal(t, "8-12 LPA", draft.SalaryRange)
	assert.Empty(t, draft.ExperienceLevel)
	assert.Equal(t, "Full-time", draft.JobType)
	assert.Equal(t, []string{"SQL", "Python"}, draft.Skills)
}

func TestExtractDraftBadJSON(t *testing.T) {
	llm := &mockChatModel{response: "let me think about that..."}

	extractor := NewJobFieldExtractor(llm)
	_, err := extractor.ExtractDraft(context.Background(), []*schema.Message{schema.UserMessage("hire someone")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadModelJSON)
}

func TestSuggestSkills(t *testing.T) {
	llm := &mockChatModel{response: `["Go", "Docker", "Kubernetes"] are what I'd suggest [for now].`}

	extractor := NewJobFieldExtractor(llm)
	skills := extractor.SuggestSkills(context.Background(), "DevOps Engineer")
	assert.Equal(t, []string{"Go", "Docker", "Kubernetes"}, skills)
}

func TestSuggestSkillsFailureYieldsEmpty(t *testing.T) {
	llm := &mockChatModel{err: errors.New("timeout")}

	extractor := NewJobFieldExtractor(llm)
	assert.Empty(t, extractor.SuggestSkills(context.Background(), "DevOps Engineer"))
}

func TestGenerateDescriptionJoinsLines(t *testing.T) {
	llm := &mockChatModel{response: "We are hiring a backend engineer.\n\nYou will build APIs in Go.\n"}

	extractor := NewJobFieldExtractor(llm)
	desc := extractor.GenerateDescription(context.Background(), "Backend Engineer")
	assert.Equal(t, "We are hiring a backend engineer. You will build APIs in Go.", desc)
}

func TestGenerateDescriptionFailureYieldsEmpty(t *testing.T) {
	llm := &mockChatModel{err: errors.New("timeout")}

	extractor := NewJobFieldExtractor(llm)
	assert.Empty(t, extractor.GenerateDescription(context.Background(), "Backend Engineer"))
}
