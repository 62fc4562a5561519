package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"hr-copilot-go/internal/chat"
	"hr-copilot-go/internal/logger"
	"hr-copilot-go/internal/processor"
	"hr-copilot-go/internal/storage/models"
	"hr-copilot-go/internal/types"
)

// ContextKeyHRUser 鉴权中间件写入请求上下文的HR用户键
const ContextKeyHRUser = "hr_user"

// ChatHandler 对话接口处理器
// 一个入口承接三类流量：带文件的批量简历评估、规则命令、岗位创建对话。
type ChatHandler struct {
	proc *processor.ChatProcessor
}

// NewChatHandler 创建对话处理器
func NewChatHandler(proc *processor.ChatProcessor) *ChatHandler {
	return &ChatHandler{proc: proc}
}

type chatRequest struct {
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// HandleChat 处理 POST /api/v1/chat
// multipart且带resume文件时走简历评估流水线；否则按消息意图分发。
func (h *ChatHandler) HandleChat(c context.Context, ctx *app.RequestContext) {
	hrUser := currentHRUser(ctx)
	if hrUser == nil {
		ctx.JSON(consts.StatusUnauthorized, utils.H{"error": "Unauthorized"})
		return
	}

	if form, err := ctx.MultipartForm(); err == nil {
		files := form.File["resume"]
		if len(files) > 0 {
			h.handleResumeUpload(c, ctx, hrUser, files)
			return
		}
	}

	message := readChatMessage(ctx)
	if message == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "No message provided."})
		return
	}

	cmd := chat.Classify(message)

	var reply *types.ChatReply
	var err error
	switch cmd.Intent {
	case chat.IntentGreeting:
		reply = h.proc.Greet()
	case chat.IntentJobLookup:
		var matched bool
		reply, matched, err = h.proc.LookupJob(c, hrUser.UserID, message)
		if err == nil && !matched {
			// 引用的岗位对不上任何已有标题，按新岗位创建对话处理
			reply, err = h.proc.AdvanceJobDialogue(c, hrUser.UserID, message)
		}
	case chat.IntentCount:
		reply, err = h.proc.CountCandidates(c, hrUser.UserID, message, cmd)
	case chat.IntentShortlist:
		reply, err = h.proc.Shortlist(c, hrUser.UserID, message, cmd)
	default:
		reply, err = h.proc.AdvanceJobDialogue(c, hrUser.UserID, message)
	}

	if err != nil {
		h.writeChatError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, reply)
}

// handleResumeUpload 批量简历评估分支
func (h *ChatHandler) handleResumeUpload(c context.Context, ctx *app.RequestContext, hrUser *models.HRUser, fileHeaders []*multipart.FileHeader) {
	jobID := ctx.PostForm("job_id")

	files := make([]processor.ResumeFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		data, err := readMultipartFile(fh)
		if err != nil {
			logger.Warn().Err(err).Str("filename", fh.Filename).Msg("读取上传文件失败")
			// 读不出来的文件进批次时带空内容，流水线会给出单文件错误
			data = nil
		}
		files = append(files, processor.ResumeFile{Filename: fh.Filename, Data: data})
	}

	result, err := h.proc.EvaluateResumes(c, hrUser.UserID, jobID, files)
	if err != nil {
		h.writeChatError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, result)
}

// writeChatError 统一的错误到状态码映射
func (h *ChatHandler) writeChatError(c context.Context, ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, processor.ErrNoJob):
		ctx.JSON(consts.StatusNotFound, utils.H{
			"reply": "⚠️ No job found. Create a job first by telling me about it.",
		})
	case errors.Is(err, processor.ErrJobNotFound):
		ctx.JSON(consts.StatusNotFound, utils.H{
			"reply": "⚠️ That job doesn't exist or isn't yours.",
		})
	default:
		logger.Ctx(c).Error().Err(err).Msg("对话请求处理失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "Internal server error"})
	}
}

// readChatMessage 同时支持JSON体与表单字段
func readChatMessage(ctx *app.RequestContext) string {
	var req chatRequest
	if err := ctx.BindJSON(&req); err == nil && req.Message != "" {
		return req.Message
	}
	return ctx.PostForm("message")
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// currentHRUser 从请求上下文取鉴权中间件写入的HR用户
func currentHRUser(ctx *app.RequestContext) *models.HRUser {
	v, exists := ctx.Get(ContextKeyHRUser)
	if !exists {
		return nil
	}
	user, ok := v.(*models.HRUser)
	if !ok {
		return nil
	}
	return user
}
