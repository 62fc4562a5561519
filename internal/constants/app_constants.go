package constants

import "time"

const (
	// MaxResumeChars 简历文本送入模型前的长度上限
	MaxResumeChars = 15000
	// ResumeHeadChars 截断时保留的头部长度（联系方式通常在开头）
	ResumeHeadChars = 7000
	// ResumeTailChars 截断时保留的尾部长度（教育/总结通常在结尾）
	ResumeTailChars = 6000
	// ResumeTruncationMarker 头尾拼接处的分隔标记
	ResumeTruncationMarker = "\n...\n"

	// MinScore / MaxScore 候选人评分的有效区间
	MinScore = 0
	MaxScore = 100

	// MinSkillCount 岗位技能少于该数量时触发补全
	MinSkillCount = 4
	// SuggestedSkillCount 技能补全时请求的技能数量
	SuggestedSkillCount = 8

	// DefaultConversationTTL 对话状态在Redis中的默认过期时间
	DefaultConversationTTL = 24 * time.Hour

	// DefaultLLMTimeout 单次模型调用的默认超时
	DefaultLLMTimeout = 60 * time.Second
	// LLMMaxAttempts 模型调用失败时的总尝试次数（1次重试）
	LLMMaxAttempts = 2
)

// RequiredJobFields 岗位创建必填字段，缺一不可
var RequiredJobFields = []string{"job_title", "salary_range", "experience_level", "job_type"}

// SupportedResumeExtensions 简历上传支持的扩展名
var SupportedResumeExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
}
