package parser

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"hr-copilot-go/internal/constants"
	"hr-copilot-go/internal/types"
)

// ResumeEvaluator 简历-岗位匹配评估器
// 封装评估Prompt与模型调用，输出归一化后的候选人评估结果。
type ResumeEvaluator struct {
	llm            model.BaseChatModel
	promptTemplate string
	timeout        time.Duration
}

// ResumeEvaluatorOption 评估器配置选项
type ResumeEvaluatorOption func(*ResumeEvaluator)

// WithEvalPromptTemplate 自定义评估Prompt模板
// 模板需包含四个%s占位：岗位标题、技能、经验要求、简历文本。
func WithEvalPromptTemplate(template string) ResumeEvaluatorOption {
	return func(e *ResumeEvaluator) {
		e.promptTemplate = template
	}
}

// WithEvalTimeout 自定义单次模型调用超时
func WithEvalTimeout(timeout time.Duration) ResumeEvaluatorOption {
	return func(e *ResumeEvaluator) {
		e.timeout = timeout
	}
}

// NewResumeEvaluator 创建评估器
func NewResumeEvaluator(llm model.BaseChatModel, options ...ResumeEvaluatorOption) *ResumeEvaluator {
	e := &ResumeEvaluator{
		llm:     llm,
		timeout: constants.DefaultLLMTimeout,
	}
	e.promptTemplate = defaultEvalPromptTemplate

	for _, opt := range options {
		opt(e)
	}
	return e
}

const defaultEvalPromptTemplate = `You are an expert HR evaluator. Compare the resume with this job and return ONLY JSON.

Job:
Title: %s
Skills: %s
Experience: %s

Resume:
%s

Return strictly this JSON:
{
  "name": "",
  "email": "",
  "skills_found": [],
  "projects_found": [],
  "education": "",
  "score": 0,
  "strengths": [],
  "weaknesses": []
}`

// Evaluate 评估一份简历与岗位的匹配度
// 失败时返回包装了ErrModelCall或ErrBadModelJSON的错误，调用方据此区分
// "模型服务不可用"与"模型输出不可解析"两类单文件错误。
func (e *ResumeEvaluator) Evaluate(ctx context.Context, job types.JobContext, resumeText string) (*types.CandidateEvaluation, error) {
	if e.llm == nil {
		return nil, fmt.Errorf("ResumeEvaluator: 模型客户端未初始化")
	}

	prompt := fmt.Sprintf(e.promptTemplate,
		job.Title,
		strings.Join(job.Skills, ", "),
		job.ExperienceLevel,
		resumeText,
	)

	resp, err := generateWithRetry(ctx, e.llm, []*schema.Message{schema.UserMessage(prompt)}, e.timeout)
	if err != nil {
		return nil, err
	}

	data := ExtractJSONObject(resp.Content)
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrBadModelJSON, tracePreview(resp.Content))
	}

	return normalizeEvaluation(data), nil
}

// normalizeEvaluation 把不可信的JSON对象归一化为评估结果
// 每个字段都有明确的兜底值，评分始终被钳制在有效区间内。
func normalizeEvaluation(data map[string]interface{}) *types.CandidateEvaluation {
	return &types.CandidateEvaluation{
		Name:          stringField(data, "name"),
		Email:         stringField(data, "email"),
		SkillsFound:   stringListField(data, "skills_found"),
		ProjectsFound: stringListField(data, "projects_found"),
		Education:     stringField(data, "education"),
		Score:         normalizeScore(data["score"]),
		Strengths:     stringListField(data, "strengths"),
		Weaknesses:    stringListField(data, "weaknesses"),
	}
}

// normalizeScore 评分归一化：经浮点中转取整（兼容"82.5"这类字符串），
// 转换失败取0，最终钳制到 [0,100]。
func normalizeScore(v interface{}) int {
	var f float64
	switch s := v.(type) {
	case float64:
		f = s
	case int:
		f = float64(s)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return constants.MinScore
		}
		f = parsed
	default:
		return constants.MinScore
	}
	return ClampScore(int(f))
}

// ClampScore 把评分钳制到 [0,100]
func ClampScore(score int) int {
	if score < constants.MinScore {
		return constants.MinScore
	}
	if score > constants.MaxScore {
		return constants.MaxScore
	}
	return score
}

// splitPattern 把单字符串形式的优劣势拆成条目
var splitPattern = regexp.MustCompile(`[\n;.]`)

// stringField 读取字符串字段，缺失或类型不符时返回空串
func stringField(data map[string]interface{}, key string) string {
	if s, ok := data[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// stringListField 读取字符串列表字段
// 模型偶尔会把列表写成一个长字符串，按换行/分号/句号拆分。
func stringListField(data map[string]interface{}, key string) []string {
	switch v := data[key].(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					out = append(out, trimmed)
				}
			}
		}
		return out
	case string:
		return splitToList(v)
	default:
		return []string{}
	}
}

// splitToList 按换行/分号/句号拆分，丢弃空白片段
func splitToList(s string) []string {
	parts := splitPattern.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// tracePreview 错误信息里只带响应前200字节，避免日志爆炸
func tracePreview(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
