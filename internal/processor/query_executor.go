package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hr-copilot-go/internal/chat"
	"hr-copilot-go/internal/storage"
	"hr-copilot-go/internal/storage/models"
	"hr-copilot-go/internal/types"
)

// Greet 问候回复
func (p *ChatProcessor) Greet() *types.ChatReply {
	return &types.ChatReply{
		Reply: "👋 Hi! Upload resumes to evaluate them, ask about your candidates, or tell me about a job you want to create.",
	}
}

// LookupJob 处理历史岗位查找
// 按消息与岗位标题的词元重合度定位（岗位从新到旧，命中最新的）。
// 没有任何岗位或词元对不上任何标题时返回matched=false，调用方应把
// 消息转入岗位创建对话：用户可能是在描述一个新岗位而不是找旧的。
func (p *ChatProcessor) LookupJob(ctx context.Context, hrUserID, message string) (*types.ChatReply, bool, error) {
	jobs, err := p.jobs.ListJobs(ctx, hrUserID)
	if err != nil {
		return nil, false, err
	}
	if len(jobs) == 0 {
		return nil, false, nil
	}

	titles := make([]string, len(jobs))
	for i, j := range jobs {
		titles[i] = j.JobTitle
	}
	idx := chat.FindJobByTitleTokens(message, titles)
	if idx < 0 {
		return nil, false, nil
	}

	job := &jobs[idx]
	return &types.ChatReply{
		Reply: fmt.Sprintf("Found job '%s'. You can upload resumes for it now.", job.JobTitle),
		JobID: job.JobID,
		Job:   jobToView(job),
	}, true, nil
}

// CountCandidates 处理计数查询
func (p *ChatProcessor) CountCandidates(ctx context.Context, hrUserID, message string, cmd chat.Command) (*types.ChatReply, error) {
	job, err := p.resolveTargetJob(ctx, hrUserID, message)
	if err != nil {
		return nil, err
	}

	noun := cmd.CountType
	if noun == "" {
		noun = "candidates"
	}

	var count int64
	if cmd.Threshold != nil {
		count, err = p.candidates.CountCandidatesAbove(ctx, job.JobID, *cmd.Threshold)
	} else {
		count, err = p.candidates.CountCandidates(ctx, job.JobID)
	}
	if err != nil {
		return nil, err
	}

	reply := &types.ChatReply{
		JobID:     job.JobID,
		Count:     &count,
		Threshold: cmd.Threshold,
	}
	if cmd.Threshold != nil {
		reply.Reply = fmt.Sprintf("There are %d %s scoring above %d for '%s'.", count, noun, *cmd.Threshold, job.JobTitle)
	} else {
		reply.Reply = fmt.Sprintf("There are %d %s for '%s'.", count, noun, job.JobTitle)
	}
	return reply, nil
}

// Shortlist 处理入围命令
// Apply为false时仅预览满足阈值的名单；为true时批量置入围标记并发事件。
func (p *ChatProcessor) Shortlist(ctx context.Context, hrUserID, message string, cmd chat.Command) (*types.ChatReply, error) {
	if cmd.Threshold == nil {
		return nil, fmt.Errorf("入围命令缺少阈值")
	}
	threshold := *cmd.Threshold

	job, err := p.resolveTargetJob(ctx, hrUserID, message)
	if err != nil {
		return nil, err
	}

	matched, err := p.candidates.CandidatesAbove(ctx, job.JobID, threshold)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(matched))
	for _, c := range matched {
		ids = append(ids, c.CandidateID)
	}

	reply := &types.ChatReply{
		JobID:        job.JobID,
		Threshold:    cmd.Threshold,
		ShortlistIDs: ids,
	}

	if !cmd.Apply {
		reply.Reply = fmt.Sprintf(
			"Found %d candidate(s) scoring above %d for '%s'. Say 'shortlist all above %d' to apply.",
			len(ids), threshold, job.JobTitle, threshold,
		)
		return reply, nil
	}

	updated, err := p.candidates.MarkShortlisted(ctx, job.JobID, ids)
	if err != nil {
		return nil, err
	}

	p.publishEvent(func(events EventPublisher) {
		events.PublishEvent(ctx, storage.RoutingKeyShortlistApplied, storage.ShortlistAppliedEvent{
			JobID:        job.JobID,
			HRUserID:     hrUserID,
			Threshold:    threshold,
			CandidateIDs: ids,
			AppliedAt:    time.Now(),
		})
	})

	reply.Reply = fmt.Sprintf("✅ Shortlisted %d candidate(s) scoring above %d for '%s'.", updated, threshold, job.JobTitle)
	return reply, nil
}

// resolveTargetJob 从消息定位目标岗位
// 消息里引用了历史岗位时按标题词元匹配（岗位列表从新到旧，命中最新的），
// 否则取最近创建的岗位；一个岗位都没有时返回ErrNoJob。
func (p *ChatProcessor) resolveTargetJob(ctx context.Context, hrUserID, message string) (*models.JobPosting, error) {
	if chat.MatchesJobReference(message) {
		jobs, err := p.jobs.ListJobs(ctx, hrUserID)
		if err != nil {
			return nil, err
		}
		if len(jobs) == 0 {
			return nil, ErrNoJob
		}
		titles := make([]string, len(jobs))
		for i, j := range jobs {
			titles[i] = j.JobTitle
		}
		if idx := chat.FindJobByTitleTokens(message, titles); idx >= 0 {
			return &jobs[idx], nil
		}
		return &jobs[0], nil
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
