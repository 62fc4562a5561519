package processor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"hr-copilot-go/internal/constants"
	"hr-copilot-go/internal/logger"
	"hr-copilot-go/internal/parser"
	"hr-copilot-go/internal/storage"
	"hr-copilot-go/internal/storage/models"
	"hr-copilot-go/internal/tracing"
	"hr-copilot-go/internal/types"
)

var tracer = otel.Tracer("processor")

// ResumeFile 待处理的一份上传文件
type ResumeFile struct {
	Filename string
	Data     []byte
}

// 单文件错误的对外文案，保持稳定供前端匹配
const (
	errUnsupportedFileType = "Unsupported file type"
	errNoReadableText      = "No readable text (scanned PDF maybe)."
	errAIService           = "AI service error"
	errInvalidAIJSON       = "Invalid AI JSON"
	errServerProcessing    = "Server error processing file."
)

// EvaluateResumes 批量评估上传的简历
// 先定位目标岗位（jobID为空时取该HR最近创建的岗位），然后逐个文件
// 独立处理：任何单文件失败都只体现在该文件的结果里，不中断批次。
func (p *ChatProcessor) EvaluateResumes(ctx context.Context, hrUserID, jobID string, files []ResumeFile) (*types.ResumeBatchResult, error) {
	ctx, span := tracer.Start(ctx, "EvaluateResumeBatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("hr_user_id", hrUserID),
		attribute.Int("file_count", len(files)),
	)

	job, err := p.resolveUploadTarget(ctx, hrUserID, jobID)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}
	span.SetAttributes(attribute.String("job_id", job.JobID))

	jobCtx := types.JobContext{
		Title:           job.JobTitle,
		Skills:          models.JSONToStrings(job.SkillsJSON),
		ExperienceLevel: job.ExperienceLevel,
	}

	results := make([]types.FileResult, 0, len(files))
	for _, file := range files {
		results = append(results, p.processOneResume(ctx, hrUserID, job, jobCtx, file))
	}

	return &types.ResumeBatchResult{
		Reply:   fmt.Sprintf("✅ Processed %d file(s) for '%s'.", len(results), job.JobTitle),
		Results: results,
	}, nil
}

// resolveUploadTarget 确定简历归属的岗位
func (p *ChatProcessor) resolveUploadTarget(ctx context.Context, hrUserID, jobID string) (*models.JobPosting, error) {
	if jobID != "" {
		job, err := p.jobs.GetOwnedJob(ctx, hrUserID, jobID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		if err != nil {
			return nil, err
		}
		return job, nil
	}

	job, err := p.jobs.LatestJob(ctx, hrUserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoJob
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// processOneResume 处理单个文件，所有失败都收敛为FileResult.Error
func (p *ChatProcessor) processOneResume(ctx context.Context, hrUserID string, job *models.JobPosting, jobCtx types.JobContext, file ResumeFile) types.FileResult {
	ctx, span := tracer.Start(ctx, "ProcessResumeFile")
	defer span.End()
	span.SetAttributes(attribute.String("filename", tracing.TruncateAttr(file.Filename, 128)))

	result := types.FileResult{Filename: file.Filename}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !constants.SupportedResumeExtensions[ext] {
		result.Error = errUnsupportedFileType
		return result
	}

	text := p.extractor.ExtractText(ctx, file.Data, file.Filename)
	if strings.TrimSpace(text) == "" {
		result.Error = errNoReadableText
		return result
	}
	text = truncateResumeText(text)
	span.SetAttributes(attribute.Int("text_length", len(text)))

	evaluation, err := p.evaluator.Evaluate(ctx, jobCtx, text)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		switch {
		case errors.Is(err, parser.ErrBadModelJSON):
			result.Error = errInvalidAIJSON
		case errors.Is(err, parser.ErrModelCall):
			result.Error = errAIService
		default:
			result.Error = errAIService
		}
		logger.Warn().
			Err(err).
			Str("filename", file.Filename).
			Str("job_id", job.JobID).
			Msg("简历评估失败")
		return result
	}

	candidateID, err := uuid.NewV7()
	if err != nil {
		result.Error = errServerProcessing
		return result
	}

	// 文件上传失败不拦截评估结果入库，只会丢失原件下载
	objectKey, err := p.files.UploadResume(ctx, job.JobID, file.Filename, file.Data)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeStorage)
		logger.Warn().
			Err(err).
			Str("filename", file.Filename).
			Msg("简历文件上传失败，继续保存评估结果")
		objectKey = ""
	}

	candidate := &models.CandidateProfile{
		CandidateID:     candidateID.String(),
		JobID:           job.JobID,
		Name:            evaluation.Name,
		Email:           evaluation.Email,
		SkillsJSON:      models.StringsToJSON(evaluation.SkillsFound),
		ProjectsJSON:    models.StringsToJSON(evaluation.ProjectsFound),
		Education:       evaluation.Education,
		Score:           evaluation.Score,
		StrengthsJSON:   models.StringsToJSON(evaluation.Strengths),
		WeaknessesJSON:  models.StringsToJSON(evaluation.Weaknesses),
		ResumeObjectKey: objectKey,
		OriginalName:    file.Filename,
	}
	if err := p.candidates.CreateCandidate(ctx, candidate); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		logger.Error().
			Err(err).
			Str("filename", file.Filename).
			Str("job_id", job.JobID).
			Msg("候选人记录写入失败")
		result.Error = errServerProcessing
		return result
	}

	p.publishEvent(func(events EventPublisher) {
		events.PublishEvent(ctx, storage.RoutingKeyCandidateEvaluated, storage.CandidateEvaluatedEvent{
			CandidateID: candidate.CandidateID,
			JobID:       job.JobID,
			HRUserID:    hrUserID,
			Score:       evaluation.Score,
			EvaluatedAt: time.Now(),
		})
	})

	result.Name = evaluation.Name
	result.Email = evaluation.Email
	result.Score = evaluation.Score
	return result
}

// truncateResumeText 超长简历取头尾拼接
// 联系方式通常在开头，教育与总结在结尾，中间的项目细节牺牲掉。
func truncateResumeText(text string) string {
	if len(text) <= constants.MaxResumeChars {
		return text
	}
	head := text[:constants.ResumeHeadChars]
	tail := text[len(text)-constants.ResumeTailChars:]
	return head + constants.ResumeTruncationMarker + tail
}
