package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel/attribute"

	"hr-copilot-go/internal/constants"
	"hr-copilot-go/internal/logger"
	"hr-copilot-go/internal/parser"
	"hr-copilot-go/internal/storage"
	"hr-copilot-go/internal/storage/models"
	"hr-copilot-go/internal/tracing"
	"hr-copilot-go/internal/types"
)

// 必填字段的提示示例，拼在追问话术里
var fieldExamples = map[string]string{
	"job_title":        "e.g. 'Backend Engineer'",
	"salary_range":     "e.g. '10-15 LPA'",
	"experience_level": "e.g. '3-5 years'",
	"job_type":         "e.g. 'Full-time'",
}

// AdvanceJobDialogue 推进岗位创建对话一步
// 把新消息并入该HR的对话历史，让模型汇总出岗位草稿；必填字段凑齐前
// 持续追问，凑齐后补全技能与描述并落库。只有落库成功才清空对话。
func (p *ChatProcessor) AdvanceJobDialogue(ctx context.Context, hrUserID, message string) (*types.ChatReply, error) {
	ctx, span := tracer.Start(ctx, "AdvanceJobDialogue")
	defer span.End()
	span.SetAttributes(attribute.String("hr_user_id", hrUserID))

	if err := p.memory.AddMessage(ctx, hrUserID, schema.UserMessage(message)); err != nil {
		return nil, fmt.Errorf("保存对话消息失败: %w", err)
	}

	history, err := p.memory.GetHistory(ctx, hrUserID)
	if err != nil {
		return nil, fmt.Errorf("读取对话历史失败: %w", err)
	}

	draft, err := p.drafts.ExtractDraft(ctx, history)
	if err != nil {
		switch {
		case errors.Is(err, parser.ErrBadModelJSON):
			// 模型输出不可解析，保留对话状态让用户换种说法
			return p.respond(ctx, hrUserID, &types.ChatReply{
				Reply: "⚠️ Sorry, I couldn't quite parse that. Could you rephrase?",
			}), nil
		case errors.Is(err, parser.ErrModelCall):
			// 模型服务不可用也只是对话里失败的一轮，状态保留等用户重试
			tracing.RecordError(span, err, tracing.ErrorTypeLLM)
			return p.respond(ctx, hrUserID, &types.ChatReply{
				Reply: "Sorry — I couldn't reach the AI service right now. Try again.",
			}), nil
		}
		return nil, err
	}

	if missing := missingRequiredFields(draft); len(missing) > 0 {
		return p.respond(ctx, hrUserID, &types.ChatReply{
			Reply: missingFieldsReply(missing),
			Need:  missing,
			Data:  draft,
		}), nil
	}

	p.enrichDraft(ctx, draft)

	job, err := p.commitJob(ctx, hrUserID, draft)
	if err != nil {
		// 落库失败时保留对话状态，用户重试即可，不必从头再说一遍
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, err
	}
	span.SetAttributes(attribute.String("job_id", job.JobID))

	if err := p.memory.Clear(ctx, hrUserID); err != nil {
		logger.Warn().Err(err).Str("user_id", hrUserID).Msg("清空对话历史失败")
	}

	return &types.ChatReply{
		Reply: fmt.Sprintf("✅ Job '%s' created!", job.JobTitle),
		JobID: job.JobID,
		Job:   jobToView(job),
	}, nil
}

// respond 追问类回复也写进对话历史，模型下一轮能看到自己问过什么
func (p *ChatProcessor) respond(ctx context.Context, hrUserID string, reply *types.ChatReply) *types.ChatReply {
	if err := p.memory.AddMessage(ctx, hrUserID, schema.AssistantMessage(reply.Reply, nil)); err != nil {
		logger.Warn().Err(err).Str("user_id", hrUserID).Msg("保存助手回复失败")
	}
	return reply
}

// missingRequiredFields 按固定顺序返回尚未填充的必填字段
func missingRequiredFields(draft *types.JobDraft) []string {
	values := map[string]string{
		"job_title":        draft.JobTitle,
		"salary_range":     draft.SalaryRange,
		"experience_level": draft.ExperienceLevel,
		"job_type":         draft.JobType,
	}
	var missing []string
	for _, field := range constants.RequiredJobFields {
		if strings.TrimSpace(values[field]) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

func missingFieldsReply(missing []string) string {
	parts := make([]string, 0, len(missing))
	for _, field := range missing {
		label := strings.ReplaceAll(field, "_", " ")
		if example, ok := fieldExamples[field]; ok {
			parts = append(parts, fmt.Sprintf("%s (%s)", label, example))
		} else {
			parts = append(parts, label)
		}
	}
	return fmt.Sprintf("I still need: %s.", strings.Join(parts, ", "))
}

// enrichDraft 技能不足时请模型推荐，描述为空时生成一段
// 补全失败不阻塞岗位创建，缺的部分留空。
func (p *ChatProcessor) enrichDraft(ctx context.Context, draft *types.JobDraft) {
	if len(draft.Skills) < constants.MinSkillCount {
		if suggested := p.drafts.SuggestSkills(ctx, draft.JobTitle); len(suggested) > 0 {
			draft.Skills = mergeSkills(draft.Skills, suggested)
		}
	}
	if strings.TrimSpace(draft.Description) == "" {
		draft.Description = p.drafts.GenerateDescription(ctx, draft.JobTitle)
	}
}

// mergeSkills 用户给的技能优先，推荐技能去重后追加
func mergeSkills(existing, suggested []string) []string {
	seen := make(map[string]bool, len(existing))
	merged := make([]string, 0, len(existing)+len(suggested))
	for _, s := range existing {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, s)
	}
	for _, s := range suggested {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, s)
	}
	return merged
}

// commitJob 落库并发布岗位创建事件
func (p *ChatProcessor) commitJob(ctx context.Context, hrUserID string, draft *types.JobDraft) (*models.JobPosting, error) {
	jobID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成岗位ID失败: %w", err)
	}

	job := &models.JobPosting{
		JobID:           jobID.String(),
		HRUserID:        hrUserID,
		JobTitle:        draft.JobTitle,
		SalaryRange:     draft.SalaryRange,
		ExperienceLevel: draft.ExperienceLevel,
		JobType:         draft.JobType,
		SkillsJSON:      models.StringsToJSON(draft.Skills),
		Description:     draft.Description,
	}
	if err := p.jobs.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	p.publishEvent(func(events EventPublisher) {
		events.PublishEvent(ctx, storage.RoutingKeyJobCreated, storage.JobCreatedEvent{
			JobID:     job.JobID,
			HRUserID:  hrUserID,
			JobTitle:  job.JobTitle,
			CreatedAt: time.Now(),
		})
	})
	return job, nil
}

// jobToView 转为对外的岗位视图
func jobToView(job *models.JobPosting) *types.JobView {
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
