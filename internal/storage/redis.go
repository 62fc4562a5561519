package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"hr-copilot-go/internal/config"
	"hr-copilot-go/internal/logger"
)

// Redis 对话状态存储的客户端封装
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端并验证连通性
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis配置不能为空")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis地址不能为空")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	})

	// 挂OpenTelemetry钩子，Redis命令纳入链路追踪
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("注册Redis追踪钩子失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis连接检查失败: %w", err)
	}

	logger.Info().Str("address", cfg.Address).Int("db", cfg.DB).Msg("Redis连接就绪")
	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close 关闭客户端
func (r *Redis) Close() error {
	return r.Client.Close()
}
