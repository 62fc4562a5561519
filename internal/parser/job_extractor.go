package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"hr-copilot-go/internal/constants"
	"hr-copilot-go/internal/logger"
	"hr-copilot-go/internal/types"
)

// JobFieldExtractor 从多轮对话中抽取岗位字段的槽位填充器
// 同时承担技能推荐与岗位描述生成两个补全任务。
type JobFieldExtractor struct {
	llm     model.BaseChatModel
	timeout time.Duration
}

// JobFieldExtractorOption 抽取器配置选项
type JobFieldExtractorOption func(*JobFieldExtractor)

// WithExtractTimeout 自定义单次模型调用超时
func WithExtractTimeout(timeout time.Duration) JobFieldExtractorOption {
	return func(e *JobFieldExtractor) {
		e.timeout = timeout
	}
}

// NewJobFieldExtractor 创建岗位字段抽取器
func NewJobFieldExtractor(llm model.BaseChatModel, options ...JobFieldExtractorOption) *JobFieldExtractor {
	e := &JobFieldExtractor{
		llm:     llm,
		timeout: constants.DefaultLLMTimeout,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

const extractDraftSystemPrompt = `You are an assistant helping a recruiter create a job posting.
Extract the job fields mentioned anywhere in the conversation so far.
Return ONLY a JSON object with exactly these keys:
{
  "job_title": "",
  "salary_range": "",
  "experience_level": "",
  "job_type": "",
  "skills": [],
  "description": ""
}
Use an empty string or empty list for anything the recruiter has not said yet. Do not invent values.`

// ExtractDraft 汇总完整对话历史，抽取当前已知的岗位字段
// 模型输出不可解析时返回ErrBadModelJSON，调用方据此提示用户换种说法。
func (e *JobFieldExtractor) ExtractDraft(ctx context.Context, history []*schema.Message) (*types.JobDraft, error) {
	if e.llm == nil {
		return nil, fmt.Errorf("JobFieldExtractor: 模型客户端未初始化")
	}

	messages := make([]*schema.Message, 0, len(history)+1)
	messages = append(messages, schema.SystemMessage(extractDraftSystemPrompt))
	messages = append(messages, history...)

	resp, err := generateWithRetry(ctx, e.llm, messages, e.timeout)
	if err != nil {
		return nil, err
	}

	data := ExtractJSONObject(resp.Content)
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrBadModelJSON, tracePreview(resp.Content))
	}

	return &types.JobDraft{
		JobTitle:        stringField(data, "job_title"),
		SalaryRange:     stringField(data, "salary_range"),
		ExperienceLevel: stringField(data, "experience_level"),
		JobType:         stringField(data, "job_type"),
		Skills:          stringListField(data, "skills"),
		Description:     strings.TrimSpace(stringField(data, "description")),
	}, nil
}

// SuggestSkills 为岗位标题推荐技能清单
// 失败时返回空切片，调用方保留用户已提供的技能即可。
func (e *JobFieldExtractor) SuggestSkills(ctx context.Context, jobTitle string) []string {
	prompt := fmt.Sprintf(
		"Suggest %d skills commonly required for the job title %q. Return only a JSON array of skill names.",
		constants.SuggestedSkillCount, jobTitle,
	)

	resp, err := generateWithRetry(ctx, e.llm, []*schema.Message{schema.UserMessage(prompt)}, e.timeout)
	if err != nil {
		logger.Warn().Err(err).Str("job_title", jobTitle).Msg("技能推荐失败")
		return []string{}
	}

	// 模型常在数组后面追加解释文字，用非贪婪匹配取第一个完整数组
	raw := ExtractJSONArrayLazy(resp.Content)
	skills := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				skills = append(skills, trimmed)
			}
		}
	}
	return skills
}

// GenerateDescription 为岗位标题生成一段简短描述
// 多行输出合并为单段；失败时返回空串，岗位描述留空不阻塞创建。
func (e *JobFieldExtractor) GenerateDescription(ctx context.Context, jobTitle string) string {
	prompt := fmt.Sprintf(
		"Write a concise 2-3 line job description for the role %q. Return plain text only, no headings or bullet points.",
		jobTitle,
	)

	resp, err := generateWithRetry(ctx, e.llm, []*schema.Message{schema.UserMessage(prompt)}, e.timeout)
	if err != nil {
		logger.Warn().Err(err).Str("job_title", jobTitle).Msg("岗位描述生成失败")
		return ""
	}

	return joinLines(resp.Content)
}

// joinLines 把多行文本合并为单个段落
func joinLines(s string) string {
	lines := strings.Split(s, "\n")
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
