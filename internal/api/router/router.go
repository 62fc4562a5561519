package router

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"hr-copilot-go/internal/api/handler"
	"hr-copilot-go/internal/logger"
	"hr-copilot-go/internal/storage"
)

// RegisterRoutes 注册API路由
// /api/v1 下的所有业务接口都要求 X-API-Key 头，校验通过后把HR用户
// 挂到请求上下文，后续处理器按用户隔离数据。
func RegisterRoutes(h *server.Hertz, store *storage.Storage, chatHandler *handler.ChatHandler, jobHandler *handler.JobHandler) {
	h.GET("/healthz", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	api := h.Group("/api/v1")
	api.Use(apiKeyAuth(store))

	api.POST("/chat", chatHandler.HandleChat)
	api.GET("/jobs", jobHandler.HandleListJobs)
	api.GET("/jobs/:job_id/candidates", jobHandler.HandleJobCandidates)
	api.GET("/stats", jobHandler.HandleStats)
}

// apiKeyAuth 基于X-API-Key头的鉴权中间件
func apiKeyAuth(store *storage.Storage) app.HandlerFunc {
	return keyauth.New(
		keyauth.WithKeyLookUp("header:X-API-Key", ""),
		keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
			user, err := store.MySQL.GetUserByAPIKey(c, key)
			if errors.Is(err, storage.ErrNotFound) {
				return false, nil
			}
			if err != nil {
				logger.Ctx(c).Error().Err(err).Msg("API密钥校验失败")
				return false, err
			}
			ctx.Set(handler.ContextKeyHRUser, user)
			return true, nil
		}),
		keyauth.WithErrorHandler(func(c context.Context, ctx *app.RequestContext, err error) {
			ctx.JSON(consts.StatusUnauthorized, utils.H{"error": "Invalid or missing API key"})
			ctx.Abort()
		}),
	)
}
