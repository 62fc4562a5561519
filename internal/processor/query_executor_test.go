package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-copilot-go/internal/chat"
	"hr-copilot-go/internal/storage"
	"hr-copilot-go/internal/storage/models"
)

func queryFixture() (*ChatProcessor, *fakeCandidateStore, *fakeEvents) {
	analyst := newTestJob("job-analyst")
	analyst.JobTitle = "Data Analyst"
	backend := newTestJob("job-backend")
	backend.JobTitle = "Backend Engineer"

	candidates := &fakeCandidateStore{candidates: []models.CandidateProfile{
		{CandidateID: "c1", JobID: "job-backend", Name: "Alice", Score: 91},
		{CandidateID: "c2", JobID: "job-backend", Name: "Bob", Score: 72},
		{CandidateID: "c3", JobID: "job-backend", Name: "Carol", Score: 55},
		{CandidateID: "c4", JobID: "job-analyst", Name: "Dan", Score: 80},
	}}
	events := &fakeEvents{}

	p := New(
		// 列表从新到旧：backend是最近创建的岗位
		WithJobStore(&fakeJobStore{jobs: []models.JobPosting{backend, analyst}}),
		WithCandidateStore(candidates),
		WithEventPublisher(events),
	)
	return p, candidates, events
}

func TestCountCandidatesDefaultsToLatestJob(t *testing.T) {
	p, _, _ := queryFixture()

	msg := "how many candidates do we have?"
	cmd := chat.Classify(msg)
	require.Equal(t, chat.IntentCount, cmd.Intent)

	reply, err := p.CountCandidates(context.Background(), testHRUser, msg, cmd)
	require.NoError(t, err)
	require.NotNil(t, reply.Count)
	assert.Equal(t, int64(3), *reply.Count)
	assert.Equal(t, "job-backend", reply.JobID)
	assert.Contains(t, reply.Reply, "Backend Engineer")
}

func TestCountCandidatesAboveThreshold(t *testing.T) {
	p, _, _ := queryFixture()

	msg := "how many resumes above 70?"
	cmd := chat.Classify(msg)

	reply, err := p.CountCandidates(context.Background(), testHRUser, msg, cmd)
	require.NoError(t, err)
	assert.Equal(t, int64(2), *reply.Count)
	assert.Contains(t, reply.Reply, "resumes")
	assert.Contains(t, reply.Reply, "above 70")
}

func TestCountForReferencedJob(t *testing.T) {
	p, _, _ := queryFixture()

	// 词元"analyst"命中历史岗位，而不是最近的backend岗位
	msg := "how many candidates above 60 for the analyst job I created before?"
	cmd, ok := chat.ParseCountCommand(msg)
	require.True(t, ok)

	reply, err := p.CountCandidates(context.Background(), testHRUser, msg, cmd)
	require.NoError(t, err)
	assert.Equal(t, "job-analyst", reply.JobID)
	assert.Equal(t, int64(1), *reply.Count)
}

func TestShortlistPreviewDoesNotWrite(t *testing.T) {
	p, candidates, events := queryFixture()

	msg := "shortlist above 70"
	cmd := chat.Classify(msg)
	require.Equal(t, chat.IntentShortlist, cmd.Intent)
	require.False(t, cmd.Apply)

	reply, err := p.Shortlist(context.Background(), testHRUser, msg, cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, reply.ShortlistIDs)
	assert.Contains(t, reply.Reply, "Found 2 candidate(s)")

	for _, c := range candidates.candidates {
		assert.False(t, c.Shortlisted)
	}
	assert.Empty(t, events.published)
}

func TestShortlistApplyWrites(t *testing.T) {
	p, candidates, events := queryFixture()

	msg := "please shortlist above 70"
	cmd := chat.Classify(msg)
	require.True(t, cmd.Apply)

	reply, err := p.Shortlist(context.Background(), testHRUser, msg, cmd)
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "✅ Shortlisted 2 candidate(s)")
	assert.Equal(t, []string{"c1", "c2"}, reply.ShortlistIDs)

	shortlisted := 0
	for _, c := range candidates.candidates {
		if c.Shortlisted {
			shortlisted++
		}
	}
	assert.Equal(t, 2, shortlisted)
	assert.Equal(t, []string{storage.RoutingKeyShortlistApplied}, events.published)
}

func TestLookupJobByTitleTokens(t *testing.T) {
	p, _, _ := queryFixture()

	reply, matched, err := p.LookupJob(context.Background(), testHRUser, "show me the analyst job from before")
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, "job-analyst", reply.JobID)
	require.NotNil(t, reply.Job)
	assert.Equal(t, "Data Analyst", reply.Job.Title)
}

func TestLookupJobNoTitleMatch(t *testing.T) {
	backend := newTestJob("job-backend")
	backend.JobTitle = "Backend Engineer"
	p := New(
		WithJobStore(&fakeJobStore{jobs: []models.JobPosting{backend}}),
		WithCandidateStore(&fakeCandidateStore{}),
	)

	// 引用了历史岗位但标题对不上任何已有岗位，不能硬塞最近的那个，
	// 调用方应把这条消息转入岗位创建对话
	reply, matched, err := p.LookupJob(context.Background(), testHRUser, "I created a marketing internship before")
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Nil(t, reply)
}

func TestQueriesWithoutAnyJob(t *testing.T) {
	p := New(
		WithJobStore(&fakeJobStore{}),
		WithCandidateStore(&fakeCandidateStore{}),
	)

	msg := "how many candidates?"
	cmd, ok := chat.ParseCountCommand(msg)
	require.True(t, ok)

	_, err := p.CountCandidates(context.Background(), testHRUser, msg, cmd)
	assert.ErrorIs(t, err, ErrNoJob)

	// 一个岗位都没有时查找同样转入岗位创建对话，而不是报错
	reply, matched, err := p.LookupJob(context.Background(), testHRUser, "the job I created before")
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Nil(t, reply)
}
