package types

// CandidateEvaluation 模型对单份简历的评估结果（已归一化）
// 所有字段都可能因模型输出缺失而为零值。
type CandidateEvaluation struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	SkillsFound   []string `json:"skills_found"`
	ProjectsFound []string `json:"projects_found"`
	Education     string   `json:"education"`
	Score         int      `json:"score"` // 始终在 [0,100]
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
}

// JobContext 评估简历时的岗位上下文
type JobContext struct {
	Title           string
	Skills          []string
	ExperienceLevel string
}

// JobDraft 从对话中抽取的岗位草稿
// 必填字段为空字符串表示模型尚未从对话中获得该信息。
type JobDraft struct {
	JobTitle        string   `json:"job_title"`
	SalaryRange     string   `json:"salary_range"`
	ExperienceLevel string   `json:"experience_level"`
	JobType         string   `json:"job_type"`
	Skills          []string `json:"skills"`
	Description     string   `json:"description"`
}

// JobView 返回给前端的岗位信息
type JobView struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	SalaryRange     string   `json:"salary_range"`
	ExperienceLevel string   `json:"experience_level"`
	JobType         string   `json:"job_type"`
	Skills          []string `json:"skills"`
	Description     string   `json:"description"`
}

// FileResult 批量简历处理中单个文件的结果
// Error非空表示该文件处理失败，其余字段无意义。
type FileResult struct {
	Filename string `json:"filename"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Score    int    `json:"score,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ResumeBatchResult 一次批量简历上传的汇总结果
type ResumeBatchResult struct {
	Reply   string       `json:"reply"`
	Results []FileResult `json:"results"`
}

// ChatReply 对话接口的统一响应体
// Reply始终存在，其余为各意图附带的结构化字段。
type ChatReply struct {
	Reply        string    `json:"reply"`
	Job          *JobView  `json:"job,omitempty"`
	JobID        string    `json:"job_id,omitempty"`
	Need         []string  `json:"need,omitempty"`
	Data         *JobDraft `json:"data,omitempty"`
	Count        *int64    `json:"count,omitempty"`
	Threshold    *int      `json:"threshold,omitempty"`
	ShortlistIDs []string  `json:"shortlist_ids,omitempty"`
}

// CandidateView 候选人列表接口的单条记录
type CandidateView struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	SkillsFound     []string `json:"skills_found"`
	ProjectsFound   []string `json:"projects_found"`
	Education       string   `json:"education"`
	Score           int      `json:"score"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	ExperienceLevel string   `json:"experience_level"`
	Shortlisted     bool     `json:"shortlisted"`
	ResumeURL       string   `json:"resume_url"`
	CreatedAt       string   `json:"created_at"`
}
