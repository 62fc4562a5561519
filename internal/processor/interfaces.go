package processor

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"hr-copilot-go/internal/storage/models"
	"hr-copilot-go/internal/types"
)

// 处理器只依赖这里声明的窄接口，存储与模型组件按需注入。
// storage.MySQL / storage.MinIO / storage.RabbitMQ 与 parser 下的
// 各组件分别满足对应接口，测试时用内存假实现替换。

// JobStore 岗位读写
type JobStore interface {
	CreateJob(ctx context.Context, job *models.JobPosting) error
	GetOwnedJob(ctx context.Context, hrUserID, jobID string) (*models.JobPosting, error)
	LatestJob(ctx context.Context, hrUserID string) (*models.JobPosting, error)
	ListJobs(ctx context.Context, hrUserID string) ([]models.JobPosting, error)
}

// CandidateStore 候选人读写
type CandidateStore interface {
	CreateCandidate(ctx context.Context, candidate *models.CandidateProfile) error
	CountCandidates(ctx context.Context, jobID string) (int64, error)
	CountCandidatesAbove(ctx context.Context, jobID string, threshold int) (int64, error)
	CandidatesAbove(ctx context.Context, jobID string, threshold int) ([]models.CandidateProfile, error)
	MarkShortlisted(ctx context.Context, jobID string, candidateIDs []string) (int64, error)
}

// ResumeFileStore 简历原始文件存储
type ResumeFileStore interface {
	UploadResume(ctx context.Context, jobID, originalFilename string, data []byte) (string, error)
}

// TextExtractor 简历文本提取
// 契约：不返回错误，提取失败返回空串。
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, filename string) string
}

// Evaluator 简历-岗位匹配评估
type Evaluator interface {
	Evaluate(ctx context.Context, job types.JobContext, resumeText string) (*types.CandidateEvaluation, error)
}

// DraftExtractor 岗位创建对话的槽位填充与补全
type DraftExtractor interface {
	ExtractDraft(ctx context.Context, history []*schema.Message) (*types.JobDraft, error)
	SuggestSkills(ctx context.Context, jobTitle string) []string
	GenerateDescription(ctx context.Context, jobTitle string) string
}

// ConversationMemory 按HR用户维度的对话历史
type ConversationMemory interface {
	GetHistory(ctx context.Context, userID string) ([]*schema.Message, error)
	AddMessage(ctx context.Context, userID string, message *schema.Message) error
	Clear(ctx context.Context, userID string) error
}

// EventPublisher 领域事件发布，实现必须是尽力而为的
type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey string, payload interface{})
}
