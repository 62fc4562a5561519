package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"hr-copilot-go/internal/storage"
	"hr-copilot-go/internal/storage/models"
	"hr-copilot-go/internal/types"
)

// 内存假实现，按接口逐个替换真实存储与模型组件

type fakeJobStore struct {
	jobs      []models.JobPosting // 从新到旧
	createErr error
}

func (s *fakeJobStore) CreateJob(ctx context.Context, job *models.JobPosting) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.jobs = append([]models.JobPosting{*job}, s.jobs...)
	return nil
}

func (s *fakeJobStore) GetOwnedJob(ctx context.Context, hrUserID, jobID string) (*models.JobPosting, error) {
	for i := range s.jobs {
		if s.jobs[i].JobID == jobID && s.jobs[i].HRUserID == hrUserID {
			return &s.jobs[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeJobStore) LatestJob(ctx context.Context, hrUserID string) (*models.JobPosting, error) {
	for i := range s.jobs {
		if s.jobs[i].HRUserID == hrUserID {
			return &s.jobs[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeJobStore) ListJobs(ctx context.Context, hrUserID string) ([]models.JobPosting, error) {
	var out []models.JobPosting
	for _, j := range s.jobs {
		if j.HRUserID == hrUserID {
			out = append(out, j)
		}
	}
	return out, nil
}

type fakeCandidateStore struct {
	candidates []models.CandidateProfile
	createErr  error
}

func (s *fakeCandidateStore) CreateCandidate(ctx context.Context, candidate *models.CandidateProfile) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.candidates = append(s.candidates, *candidate)
	return nil
}

func (s *fakeCandidateStore) CountCandidates(ctx context.Context, jobID string) (int64, error) {
	var n int64
	for _, c := range s.candidates {
		if c.JobID == jobID {
			n++
		}
	}
	return n, nil
}

func (s *fakeCandidateStore) CountCandidatesAbove(ctx context.Context, jobID string, threshold int) (int64, error) {
	var n int64
	for _, c := range s.candidates {
		if c.JobID == jobID && c.Score >= threshold {
			n++
		}
	}
	return n, nil
}

func (s *fakeCandidateStore) CandidatesAbove(ctx context.Context, jobID string, threshold int) ([]models.CandidateProfile, error) {
	var out []models.CandidateProfile
	for _, c := range s.candidates {
		if c.JobID == jobID && c.Score >= threshold {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeCandidateStore) MarkShortlisted(ctx context.Context, jobID string, candidateIDs []string) (int64, error) {
	wanted := make(map[string]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		wanted[id] = true
	}
	var updated int64
	for i := range s.candidates {
		if s.candidates[i].JobID == jobID && wanted[s.candidates[i].CandidateID] {
			s.candidates[i].Shortlisted = true
			updated++
		}
	}
	return updated, nil
}

type fakeFileStore struct {
	uploads   map[string]string // filename -> objectKey
	uploadErr error
}

func (s *fakeFileStore) UploadResume(ctx context.Context, jobID, originalFilename string, data []byte) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	if s.uploads == nil {
		s.uploads = make(map[string]string)
	}
	key := fmt.Sprintf("%s/%s", jobID, originalFilename)
	s.uploads[originalFilename] = key
	return key, nil
}

type fakeExtractor struct {
	texts map[string]string // filename -> text
}

func (e *fakeExtractor) ExtractText(ctx context.Context, data []byte, filename string) string {
	return e.texts[filename]
}

type fakeEvaluator struct {
	results map[string]*types.CandidateEvaluation // resume text -> result
	errs    map[string]error
}

func (e *fakeEvaluator) Evaluate(ctx context.Context, job types.JobContext, resumeText string) (*types.CandidateEvaluation, error) {
	if err, ok := e.errs[resumeText]; ok {
		return nil, err
	}
	if result, ok := e.results[resumeText]; ok {
		return result, nil
	}
	return nil, errors.New("unexpected resume text")
}

type fakeDraftExtractor struct {
	drafts      []*types.JobDraft // 每次ExtractDraft按顺序弹出
	extractErrs []error
	calls       int
	skills      []string
	description string
}

func (e *fakeDraftExtractor) ExtractDraft(ctx context.Context, history []*schema.Message) (*types.JobDraft, error) {
	idx := e.calls
	e.calls++
	if idx < len(e.extractErrs) && e.extractErrs[idx] != nil {
		return nil, e.extractErrs[idx]
	}
	if idx < len(e.drafts) {
		return e.drafts[idx], nil
	}
	return &types.JobDraft{}, nil
}

func (e *fakeDraftExtractor) SuggestSkills(ctx context.Context, jobTitle string) []string {
	return e.skills
}

func (e *fakeDraftExtractor) GenerateDescription(ctx context.Context, jobTitle string) string {
	return e.description
}

type fakeMemory struct {
	history map[string][]*schema.Message
	cleared int
}

func (m *fakeMemory) GetHistory(ctx context.Context, userID string) ([]*schema.Message, error) {
	return m.history[userID], nil
}

func (m *fakeMemory) AddMessage(ctx context.Context, userID string, message *schema.Message) error {
	if m.history == nil {
		m.history = make(map[string][]*schema.Message)
	}
	m.history[userID] = append(m.history[userID], message)
	return nil
}

func (m *fakeMemory) Clear(ctx context.Context, userID string) error {
	delete(m.history, userID)
	m.cleared++
	return nil
}

type fakeEvents struct {
	published []string // routing keys
}

func (e *fakeEvents) PublishEvent(ctx context.Context, routingKey string, payload interface{}) {
	e.published = append(e.published, routingKey)
}
