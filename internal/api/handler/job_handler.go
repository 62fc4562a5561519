package handler

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"hr-copilot-go/internal/logger"
	"hr-copilot-go/internal/storage"
	"hr-copilot-go/internal/storage/models"
	"hr-copilot-go/internal/types"
)

// JobHandler 岗位与候选人的只读查询接口
type JobHandler struct {
	storage *storage.Storage
}

// NewJobHandler 创建岗位查询处理器
func NewJobHandler(s *storage.Storage) *JobHandler {
	return &JobHandler{storage: s}
}

// HandleListJobs 处理 GET /api/v1/jobs
func (h *JobHandler) HandleListJobs(c context.Context, ctx *app.RequestContext) {
	hrUser := currentHRUser(ctx)
	if hrUser == nil {
		ctx.JSON(consts.StatusUnauthorized, utils.H{"error": "Unauthorized"})
		return
	}

	jobs, err := h.storage.MySQL.ListJobs(c, hrUser.UserID)
	if err != nil {
		logger.Ctx(c).Error().Err(err).Msg("查询岗位列表失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "Internal server error"})
		return
	}

	views := make([]types.JobView, 0, len(jobs))
	for i := range jobs {
		views = append(views, *jobPostingToView(&jobs[i]))
	}
	ctx.JSON(consts.StatusOK, utils.H{"jobs": views})
}

// HandleJobCandidates 处理 GET /api/v1/jobs/:job_id/candidates
// 每个候选人带一个限时的简历原件下载链接。
func (h *JobHandler) HandleJobCandidates(c context.Context, ctx *app.RequestContext) {
	hrUser := currentHRUser(ctx)
	if hrUser == nil {
		ctx.JSON(consts.StatusUnauthorized, utils.H{"error": "Unauthorized"})
		return
	}

	jobID := ctx.Param("job_id")
	job, err := h.storage.MySQL.GetOwnedJob(c, hrUser.UserID, jobID)
	if errors.Is(err, storage.ErrNotFound) {
		ctx.JSON(consts.StatusNotFound, utils.H{"error": "Job not found"})
		return
	}
	if err != nil {
		logger.Ctx(c).Error().Err(err).Str("job_id", jobID).Msg("查询岗位失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "Internal server error"})
		return
	}

	candidates, err := h.storage.MySQL.ListCandidates(c, job.JobID)
	if err != nil {
		logger.Ctx(c).Error().Err(err).Str("job_id", jobID).Msg("查询候选人列表失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "Internal server error"})
		return
	}

	views := make([]types.CandidateView, 0, len(candidates))
	for i := range candidates {
		views = append(views, h.candidateToView(c, &candidates[i], job))
	}
	ctx.JSON(consts.StatusOK, utils.H{
		"job":        jobPostingToView(job),
		"candidates": views,
	})
}

// HandleStats 处理 GET /api/v1/stats
func (h *JobHandler) HandleStats(c context.Context, ctx *app.RequestContext) {
	hrUser := currentHRUser(ctx)
	if hrUser == nil {
		ctx.JSON(consts.StatusUnauthorized, utils.H{"error": "Unauthorized"})
		return
	}

	stats, err := h.storage.MySQL.StatsForUser(c, hrUser.UserID)
	if err != nil {
		logger.Ctx(c).Error().Err(err).Msg("统计查询失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "Internal server error"})
		return
	}
	ctx.JSON(consts.StatusOK, stats)
}

func (h *JobHandler) candidateToView(c context.Context, candidate *models.CandidateProfile, job *models.JobPosting) types.CandidateView {
	view := types.CandidateView{
		ID:              candidate.CandidateID,
		Name:            candidate.Name,
		Email:           candidate.Email,
		SkillsFound:     models.JSONToStrings(candidate.SkillsJSON),
		ProjectsFound:   models.JSONToStrings(candidate.ProjectsJSON),
		Education:       candidate.Education,
		Score:           candidate.Score,
		Strengths:       models.JSONToStrings(candidate.StrengthsJSON),
		Weaknesses:      models.JSONToStrings(candidate.WeaknessesJSON),
		ExperienceLevel: job.ExperienceLevel,
		Shortlisted:     candidate.Shortlisted,
		CreatedAt:       candidate.CreatedAt.Format(time.RFC3339),
	}

	// 预签名失败只影响下载链接，列表照常返回
	if candidate.ResumeObjectKey != "" {
		url, err := h.storage.MinIO.PresignedResumeURL(c, candidate.ResumeObjectKey)
		if err != nil {
			logger.Warn().Err(err).Str("candidate_id", candidate.CandidateID).Msg("生成简历下载链接失败")
		} else {
			view.ResumeURL = url
		}
	}
	return view
}

func jobPostingToView(job *models.JobPosting) *types.JobView {
	return &types.JobView{
		ID:              job.JobID,
		Title:           job.JobTitle,
		SalaryRange:     job.SalaryRange,
		ExperienceLevel: job.ExperienceLevel,
		JobType:         job.JobType,
		Skills:          models.JSONToStrings(job.SkillsJSON),
		Description:     job.Description,
	}
}
