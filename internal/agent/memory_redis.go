package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"hr-copilot-go/internal/constants"
	"hr-copilot-go/internal/logger"
)

// RedisConversationMemory 基于Redis LIST的对话历史存储
// 每个HR用户一个键，消息序列化为JSON后RPush，靠TTL自动淘汰被遗忘的半成品对话。
type RedisConversationMemory struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisConversationMemory 创建基于Redis的对话存储
// ttl不合法时回退到默认过期时间，半途而废的对话不应永久占着状态。
func NewRedisConversationMemory(client *redis.Client, ttl time.Duration) (*RedisConversationMemory, error) {
	if client == nil {
		return nil, fmt.Errorf("redis客户端不能为nil")
	}
	if ttl <= 0 {
		ttl = constants.DefaultConversationTTL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis连接检查失败: %w", err)
	}

	return &RedisConversationMemory{
		client: client,
		ttl:    ttl,
	}, nil
}

func conversationKey(userID string) string {
	return fmt.Sprintf(constants.KeyChatConversation, userID)
}

// GetHistory 实现 ConversationMemory 接口
func (m *RedisConversationMemory) GetHistory(ctx context.Context, userID string) ([]*schema.Message, error) {
	key := conversationKey(userID)

	serialized, err := m.client.LRange(ctx, key, 0, -1).Result()
	if errors.Is(err, redis.Nil) {
		return []*schema.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取对话历史失败 (user=%s): %w", userID, err)
	}

	messages := make([]*schema.Message, 0, len(serialized))
	for _, s := range serialized {
		var msg schema.Message
		if err := json.Unmarshal([]byte(s), &msg); err != nil {
			// 单条损坏不应让整段对话不可用，跳过并记录
			logger.Warn().
				Err(err).
				Str("user_id", userID).
				Msg("对话历史中存在无法反序列化的消息，已跳过")
			continue
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}

// AddMessage 实现 ConversationMemory 接口
// RPush与Expire放在同一个事务管道里，保证追加消息的同时刷新TTL。
func (m *RedisConversationMemory) AddMessage(ctx context.Context, userID string, message *schema.Message) error {
	if message == nil {
		return fmt.Errorf("不能向对话历史追加nil消息 (user=%s)", userID)
	}
	key := conversationKey(userID)

	serialized, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("序列化消息失败 (user=%s): %w", userID, err)
	}

	pipe := m.client.TxPipeline()
	pipe.RPush(ctx, key, serialized)
	if m.ttl > 0 {
		pipe.Expire(ctx, key, m.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("追加对话消息失败 (user=%s): %w", userID, err)
	}
	return nil
}

// Clear 实现 ConversationMemory 接口
func (m *RedisConversationMemory) Clear(ctx context.Context, userID string) error {
	if err := m.client.Del(ctx, conversationKey(userID)).Err(); err != nil {
		return fmt.Errorf("清空对话历史失败 (user=%s): %w", userID, err)
	}
	return nil
}

var _ ConversationMemory = (*RedisConversationMemory)(nil)
