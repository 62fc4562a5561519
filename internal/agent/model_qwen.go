package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"hr-copilot-go/internal/logger"
)

const (
	// DashScope 的 OpenAI 兼容接口
	openAICompatibleQwenAPIURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	defaultQwenModelName       = "qwen-plus"
)

// QwenChatModel 通义千问聊天模型客户端（OpenAI兼容协议）
// 实现 model.ChatModel 接口；本服务不使用工具调用，BindTools为空操作。
type QwenChatModel struct {
	apiKey     string
	modelName  string
	apiURL     string
	httpClient *http.Client
}

// NewQwenChatModel 创建通义千问客户端
// modelName/apiURL 为空时使用默认值。
func NewQwenChatModel(apiKey string, modelName string, apiURL string) (*QwenChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API密钥不能为空")
	}

	mn := modelName
	if strings.TrimSpace(mn) == "" {
		mn = defaultQwenModelName
	}

	url := apiURL
	if strings.TrimSpace(url) == "" {
		url = openAICompatibleQwenAPIURL
	}

	logger.Info().
		Str("api_url", url).
		Str("model", mn).
		Msg("初始化通义千问LLM客户端")

	return &QwenChatModel{
		apiKey:    apiKey,
		modelName: mn,
		apiURL:    url,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}, nil
}

type openAIChatCompletionRequest struct {
	Model    string            `json:"model"`
	Messages []*schema.Message `json:"messages"`
}

type openAIMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type openAIChatChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAICompletionResponse struct {
	Id      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []openAIChatChoice `json:"choices"`
}

// Generate 实现 model.ChatModel 接口
func (q *QwenChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	for _, opt := range options {
		_ = opt
	}

	reqPayload := openAIChatCompletionRequest{
		Model:    q.modelName,
		Messages: messages,
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, q.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+q.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := q.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		logger.Warn().
			Str("status", httpResp.Status).
			Str("model", q.modelName).
			Msg("模型API请求失败")
		return nil, fmt.Errorf("API请求失败，状态 %s: %s", httpResp.Status, string(bodyBytes))
	}

	var openAIResp openAICompletionResponse
	if err := json.Unmarshal(bodyBytes, &openAIResp); err != nil {
		return nil, fmt.Errorf("反序列化API响应失败: %w", err)
	}

	if len(openAIResp.Choices) == 0 {
		return nil, fmt.Errorf("API未返回任何choices")
	}

	apiMessage := openAIResp.Choices[0].Message
	responseContent := ""
	if apiMessage.Content != nil {
		responseContent = *apiMessage.Content
	}

	result := &schema.Message{
		Role:    schema.RoleType(apiMessage.Role),
		Content: responseContent,
	}
	if result.Role == "" {
		result.Role = schema.Assistant
	}
	return result, nil
}

// Stream 实现 model.ChatModel 接口
// 当前接口均为一次性短回复，未实现流式。
func (q *QwenChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("QwenChatModel 的 Stream 方法未实现")
}

// BindTools 实现 model.ChatModel 接口，本服务不绑定工具
func (q *QwenChatModel) BindTools(tools []*schema.ToolInfo) error {
	if len(tools) > 0 {
		logger.Warn().Int("count", len(tools)).Msg("QwenChatModel 不支持工具调用，忽略绑定请求")
	}
	return nil
}

var _ model.ChatModel = (*QwenChatModel)(nil)
