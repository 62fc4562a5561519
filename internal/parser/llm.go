package parser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"hr-copilot-go/internal/constants"
	"hr-copilot-go/internal/logger"
)

var (
	// ErrModelCall 模型调用失败（网络、超时、服务端错误）
	ErrModelCall = errors.New("模型调用失败")
	// ErrBadModelJSON 模型返回的文本中无法提取出有效JSON
	ErrBadModelJSON = errors.New("模型返回内容不是有效JSON")
)

// generateWithRetry 带超时的模型调用，失败后重试一次
// 每次尝试使用独立的超时上下文；两次都失败时返回包装了ErrModelCall的错误。
func generateWithRetry(ctx context.Context, llm model.BaseChatModel, messages []*schema.Message, timeout time.Duration) (*schema.Message, error) {
	if timeout <= 0 {
		timeout = constants.DefaultLLMTimeout
	}

	var lastErr error
	for attempt := 1; attempt <= constants.LLMMaxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := llm.Generate(callCtx, messages)
		cancel()

		if err == nil && resp != nil && resp.Content != "" {
			return resp, nil
		}
		if err == nil {
			err = errors.New("模型返回空响应")
		}
		lastErr = err

		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Msg("模型调用失败")

		// 请求级上下文已取消时不再重试
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrModelCall, lastErr)
}
