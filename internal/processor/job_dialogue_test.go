package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-copilot-go/internal/parser"
	"hr-copilot-go/internal/storage"
	"hr-copilot-go/internal/storage/models"
	"hr-copilot-go/internal/types"
)

func TestDialogueAsksUntilComplete(t *testing.T) {
	jobs := &fakeJobStore{}
	memory := &fakeMemory{}
	events := &fakeEvents{}
	drafts := &fakeDraftExtractor{
		drafts: []*types.JobDraft{
			{JobTitle: "Backend Engineer"},
			{JobTitle: "Backend Engineer", SalaryRange: "10-15 LPA", ExperienceLevel: "3-5 years", JobType: "Full-time", Skills: []string{"Go"}},
		},
		skills:      []string{"Go", "MySQL", "Redis", "Docker", "Kafka"},
		description: "Build and run backend services.",
	}
	p := New(
		WithJobStore(jobs),
		WithDraftExtractor(drafts),
		WithConversationMemory(memory),
		WithEventPublisher(events),
	)

	// 第一轮：只说了岗位名，应追问其余必填字段
	reply, err := p.AdvanceJobDialogue(context.Background(), testHRUser, "I want to hire a backend engineer")
	require.NoError(t, err)
	assert.Equal(t, []string{"salary_range", "experience_level", "job_type"}, reply.Need)
	assert.Contains(t, reply.Reply, "salary range")
	assert.Empty(t, jobs.jobs)
	// 用户消息与追问都进了历史
	assert.Len(t, memory.history[testHRUser], 2)

	// 第二轮：凑齐必填字段，创建岗位并清空对话
	reply, err = p.AdvanceJobDialogue(context.Background(), testHRUser, "10-15 LPA, full time, 3-5 years")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "✅ Job 'Backend Engineer' created!")
	require.NotNil(t, reply.Job)
	require.Len(t, jobs.jobs, 1)
	assert.Equal(t, testHRUser, jobs.jobs[0].HRUserID)
	assert.NotEmpty(t, jobs.jobs[0].JobID)

	// 技能不足4个时合并推荐技能，用户给的在前
	skills := models.JSONToStrings(jobs.jobs[0].SkillsJSON)
	assert.Equal(t, "Go", skills[0])
	assert.GreaterOrEqual(t, len(skills), 4)
	assert.Equal(t, "Build and run backend services.", jobs.jobs[0].Description)

	assert.Empty(t, memory.history[testHRUser])
	assert.Equal(t, 1, memory.cleared)
	assert.Equal(t, []string{storage.RoutingKeyJobCreated}, events.published)
}

func TestDialogueBadModelJSONKeepsState(t *testing.T) {
	memory := &fakeMemory{}
	drafts := &fakeDraftExtractor{extractErrs: []error{parser.ErrBadModelJSON}}
	p := New(
		WithJobStore(&fakeJobStore{}),
		WithDraftExtractor(drafts),
		WithConversationMemory(memory),
	)

	reply, err := p.AdvanceJobDialogue(context.Background(), testHRUser, "blah blah")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "⚠️")
	// 对话状态保留，用户换种说法继续
	assert.NotEmpty(t, memory.history[testHRUser])
	assert.Zero(t, memory.cleared)
}

func TestDialogueModelDownKeepsState(t *testing.T) {
	memory := &fakeMemory{}
	drafts := &fakeDraftExtractor{extractErrs: []error{parser.ErrModelCall}}
	p := New(
		WithJobStore(&fakeJobStore{}),
		WithDraftExtractor(drafts),
		WithConversationMemory(memory),
	)

	// 模型服务挂了回一句道歉，不把错误往上抛成500
	reply, err := p.AdvanceJobDialogue(context.Background(), testHRUser, "hire a data engineer")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "couldn't reach the AI service")
	assert.NotEmpty(t, memory.history[testHRUser])
	assert.Zero(t, memory.cleared)
}

func TestDialoguePersistFailureKeepsState(t *testing.T) {
	memory := &fakeMemory{}
	drafts := &fakeDraftExtractor{
		drafts: []*types.JobDraft{
			{JobTitle: "QA Engineer", SalaryRange: "5-8 LPA", ExperienceLevel: "1-3 years", JobType: "Full-time", Skills: []string{"Selenium", "Python", "SQL", "CI"}},
		},
	}
	p := New(
		WithJobStore(&fakeJobStore{createErr: assert.AnError}),
		WithDraftExtractor(drafts),
		WithConversationMemory(memory),
	)

	_, err := p.AdvanceJobDialogue(context.Background(), testHRUser, "hire a QA engineer, 5-8 LPA, full time, 1-3 years")
	require.Error(t, err)
	// 落库失败不清对话，重试不用从头说
	assert.NotEmpty(t, memory.history[testHRUser])
	assert.Zero(t, memory.cleared)
}

func TestMergeSkillsDeduplicates(t *testing.T) {
	merged := mergeSkills([]string{"Go", "MySQL"}, []string{"go", "Redis", "", "MySQL", "Docker"})
	assert.Equal(t, []string{"Go", "MySQL", "Redis", "Docker"}, merged)
}

func TestMissingRequiredFieldsOrder(t *testing.T) {
	draft := &types.JobDraft{JobType: "Full-time"}
	assert.Equal(t, []string{"job_title", "salary_range", "experience_level"}, missingRequiredFields(draft))

	complete := &types.JobDraft{JobTitle: "a", SalaryRange: "b", ExperienceLevel: "c", JobType: "d"}
	assert.Empty(t, missingRequiredFields(complete))
}
