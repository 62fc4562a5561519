package processor

// ChatProcessor 对话式招聘流程的核心处理器
// 聚合简历评估流水线、岗位创建对话与统计/入围查询三条路径。
type ChatProcessor struct {
	jobs       JobStore
	candidates CandidateStore
	files      ResumeFileStore
	extractor  TextExtractor
	evaluator  Evaluator
	drafts     DraftExtractor
	memory     ConversationMemory
	events     EventPublisher
}

// Option 处理器选项函数
type Option func(*ChatProcessor)

// WithJobStore 设置岗位存储
func WithJobStore(s JobStore) Option {
	return func(p *ChatProcessor) {
		p.jobs = s
	}
}

// WithCandidateStore 设置候选人存储
func WithCandidateStore(s CandidateStore) Option {
	return func(p *ChatProcessor) {
		p.candidates = s
	}
}

// WithResumeFileStore 设置简历文件存储
func WithResumeFileStore(s ResumeFileStore) Option {
	return func(p *ChatProcessor) {
		p.files = s
	}
}

// WithTextExtractor 设置简历文本提取器
func WithTextExtractor(e TextExtractor) Option {
	return func(p *ChatProcessor) {
		p.extractor = e
	}
}

// WithEvaluator 设置简历评估器
func WithEvaluator(e Evaluator) Option {
	return func(p *ChatProcessor) {
		p.evaluator = e
	}
}

// WithDraftExtractor 设置岗位字段抽取器
func WithDraftExtractor(e DraftExtractor) Option {
	return func(p *ChatProcessor) {
		p.drafts = e
	}
}

// WithConversationMemory 设置对话历史存储
func WithConversationMemory(m ConversationMemory) Option {
	return func(p *ChatProcessor) {
		p.memory = m
	}
}

// WithEventPublisher 设置领域事件发布器
func WithEventPublisher(e EventPublisher) Option {
	return func(p *ChatProcessor) {
		p.events = e
	}
}

// New 创建处理器
func New(options ...Option) *ChatProcessor {
	p := &ChatProcessor{}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// publishEvent 事件发布器未注入时静默跳过
func (p *ChatProcessor) publishEvent(publish func(EventPublisher)) {
	if p.events != nil {
		publish(p.events)
	}
}
