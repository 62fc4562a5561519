package storage

import "time"

// 领域事件路由键
// 下游（报表、通知等）按topic订阅，本服务只管发布。
const (
	RoutingKeyJobCreated         = "job.created"
	RoutingKeyCandidateEvaluated = "candidate.evaluated"
	RoutingKeyShortlistApplied   = "shortlist.applied"
)

// JobCreatedEvent 岗位创建完成
type JobCreatedEvent struct {
	JobID     string    `json:"job_id"`
	HRUserID  string    `json:"hr_user_id"`
	JobTitle  string    `json:"job_title"`
	CreatedAt time.Time `json:"created_at"`
}

// CandidateEvaluatedEvent 一份简历完成评估并落库
type CandidateEvaluatedEvent struct {
	CandidateID string    `json:"candidate_id"`
	JobID       string    `json:"job_id"`
	HRUserID    string    `json:"hr_user_id"`
	Score       int       `json:"score"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// ShortlistAppliedEvent 入围操作已写库
type ShortlistAppliedEvent struct {
	JobID        string    `json:"job_id"`
	HRUserID     string    `json:"hr_user_id"`
	Threshold    int       `json:"threshold"`
	CandidateIDs []string  `json:"candidate_ids"`
	AppliedAt    time.Time `json:"applied_at"`
}
