package agent

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ConversationMemory 按HR用户维度存取岗位创建对话的历史
// userID 即HR用户ID：同一HR的所有消息共享一段进行中的对话。
type ConversationMemory interface {
	// GetHistory 返回该用户当前进行中的对话，无对话时返回空切片
	GetHistory(ctx context.Context, userID string) ([]*schema.Message, error)
	// AddMessage 追加一条消息并刷新过期时间
	AddMessage(ctx context.Context, userID string, message *schema.Message) error
	// Clear 结束对话并清空历史
	Clear(ctx context.Context, userID string) error
}
