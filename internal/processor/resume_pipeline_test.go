package processor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-copilot-go/internal/constants"
	"hr-copilot-go/internal/parser"
	"hr-copilot-go/internal/storage"
	"hr-copilot-go/internal/storage/models"
	"hr-copilot-go/internal/types"
)

const testHRUser = "hr-001"

func newTestJob(jobID string) models.JobPosting {
	return models.JobPosting{
		JobID:           jobID,
		HRUserID:        testHRUser,
		JobTitle:        "Backend Engineer",
		ExperienceLevel: "3-5 years",
		SkillsJSON:      models.StringsToJSON([]string{"Go", "MySQL"}),
	}
}

func TestEvaluateResumesBatchIsolation(t *testing.T) {
	jobs := &fakeJobStore{jobs: []models.JobPosting{newTestJob("job-1")}}
	candidates := &fakeCandidateStore{}
	events := &fakeEvents{}
	p := New(
		WithJobStore(jobs),
		WithCandidateStore(candidates),
		WithResumeFileStore(&fakeFileStore{}),
		WithTextExtractor(&fakeExtractor{texts: map[string]string{
			"good.pdf":    "alice resume text",
			"scanned.pdf": "",
			"weird.txt":   "unparseable resume",
		}}),
		WithEvaluator(&fakeEvaluator{
			results: map[string]*types.CandidateEvaluation{
				"alice resume text": {Name: "Alice", Email: "alice@example.com", Score: 88},
			},
			errs: map[string]error{
				"unparseable resume": parser.ErrBadModelJSON,
			},
		}),
		WithEventPublisher(events),
	)

	result, err := p.EvaluateResumes(context.Background(), testHRUser, "", []ResumeFile{
		{Filename: "good.pdf", Data: []byte("pdf")},
		{Filename: "resume.docx", Data: []byte("doc")},
		{Filename: "scanned.pdf", Data: []byte("pdf")},
		{Filename: "weird.txt", Data: []byte("txt")},
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 4)
	assert.Contains(t, result.Reply, "4 file(s)")
	assert.Contains(t, result.Reply, "Backend Engineer")

	// 成功的文件
	assert.Empty(t, result.Results[0].Error)
	assert.Equal(t, "Alice", result.Results[0].Name)
	assert.Equal(t, 88, result.Results[0].Score)

	// 失败的文件各自带错误文案，互不影响
	assert.Equal(t, "Unsupported file type", result.Results[1].Error)
	assert.Equal(t, "No readable text (scanned PDF maybe).", result.Results[2].Error)
	assert.Equal(t, "Invalid AI JSON", result.Results[3].Error)

	// 只有成功的文件落库并发事件
	require.Len(t, candidates.candidates, 1)
	assert.Equal(t, "job-1", candidates.candidates[0].JobID)
	assert.Equal(t, 88, candidates.candidates[0].Score)
	assert.NotEmpty(t, candidates.candidates[0].CandidateID)
	assert.Equal(t, []string{storage.RoutingKeyCandidateEvaluated}, events.published)
}

func TestEvaluateResumesModelDown(t *testing.T) {
	p := New(
		WithJobStore(&fakeJobStore{jobs: []models.JobPosting{newTestJob("job-1")}}),
		WithCandidateStore(&fakeCandidateStore{}),
		WithResumeFileStore(&fakeFileStore{}),
		WithTextExtractor(&fakeExtractor{texts: map[string]string{"a.pdf": "text"}}),
		WithEvaluator(&fakeEvaluator{errs: map[string]error{"text": parser.ErrModelCall}}),
	)

	result, err := p.EvaluateResumes(context.Background(), testHRUser, "", []ResumeFile{
		{Filename: "a.pdf", Data: []byte("pdf")},
	})
	require.NoError(t, err)
	assert.Equal(t, "AI service error", result.Results[0].Error)
}

func TestEvaluateResumesNoJob(t *testing.T) {
	p := New(
		WithJobStore(&fakeJobStore{}),
		WithCandidateStore(&fakeCandidateStore{}),
	)

	_, err := p.EvaluateResumes(context.Background(), testHRUser, "", nil)
	assert.ErrorIs(t, err, ErrNoJob)
}

func TestEvaluateResumesUnknownJobID(t *testing.T) {
	p := New(
		WithJobStore(&fakeJobStore{jobs: []models.JobPosting{newTestJob("job-1")}}),
		WithCandidateStore(&fakeCandidateStore{}),
	)

	_, err := p.EvaluateResumes(context.Background(), testHRUser, "job-unknown", nil)
	assert.ErrorIs(t, err, ErrJobNotFound)

	// 别人的岗位同样视为不存在
	other := newTestJob("job-2")
	other.HRUserID = "hr-other"
	p2 := New(
		WithJobStore(&fakeJobStore{jobs: []models.JobPosting{other}}),
		WithCandidateStore(&fakeCandidateStore{}),
	)
	_, err = p2.EvaluateResumes(context.Background(), testHRUser, "job-2", nil)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestEvaluateResumesPersistFailure(t *testing.T) {
	p := New(
		WithJobStore(&fakeJobStore{jobs: []models.JobPosting{newTestJob("job-1")}}),
		WithCandidateStore(&fakeCandidateStore{createErr: assert.AnError}),
		WithResumeFileStore(&fakeFileStore{}),
		WithTextExtractor(&fakeExtractor{texts: map[string]string{"a.pdf": "text"}}),
		WithEvaluator(&fakeEvaluator{results: map[string]*types.CandidateEvaluation{
			"text": {Name: "Bob", Score: 50},
		}}),
	)

	result, err := p.EvaluateResumes(context.Background(), testHRUser, "", []ResumeFile{
		{Filename: "a.pdf", Data: []byte("pdf")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Server error processing file.", result.Results[0].Error)
}

func TestTruncateResumeText(t *testing.T) {
	short := strings.Repeat("a", constants.MaxResumeChars)
	assert.Equal(t, short, truncateResumeText(short))

	long := strings.Repeat("h", 10000) + strings.Repeat("t", 10000)
	truncated := truncateResumeText(long)
	assert.Len(t, truncated, constants.ResumeHeadChars+len(constants.ResumeTruncationMarker)+constants.ResumeTailChars)
	assert.True(t, strings.HasPrefix(truncated, "hhh"))
	assert.True(t, strings.HasSuffix(truncated, "ttt"))
	assert.Contains(t, truncated, constants.ResumeTruncationMarker)
}
