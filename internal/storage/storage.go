package storage

import (
	"context"
	"fmt"

	"hr-copilot-go/internal/config"
	"hr-copilot-go/internal/logger"
)

// Storage 存储管理器，聚合所有存储相关依赖
// MySQL/Redis/MinIO是核心依赖，任一初始化失败直接报错；
// RabbitMQ仅用于事件通知，未配置或失败时降级为不发布。
type Storage struct {
	// 关系型数据库
	MySQL *MySQL

	// 对话状态存储
	Redis *Redis

	// 简历文件存储
	MinIO *MinIO

	// 领域事件发布，可能为nil
	RabbitMQ *RabbitMQ
}

// NewStorage 创建存储管理器
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	storage := &Storage{}
	var err error

	storage.MySQL, err = NewMySQL(&cfg.MySQL)
	if err != nil {
		return nil, fmt.Errorf("初始化MySQL失败: %w", err)
	}

	storage.Redis, err = NewRedisAdapter(&cfg.Redis)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("初始化Redis失败: %w", err)
	}

	storage.MinIO, err = NewMinIO(&cfg.MinIO)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("初始化MinIO失败: %w", err)
	}

	if cfg.RabbitMQ.URL != "" {
		storage.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			// 事件系统故障不阻止服务启动
			logger.Warn().Err(err).Msg("初始化RabbitMQ失败，领域事件发布已禁用")
			storage.RabbitMQ = nil
		}
	} else {
		logger.Info().Msg("RabbitMQ未配置，领域事件发布已禁用")
	}

	return storage, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			logger.Warn().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Warn().Err(err).Msg("关闭Redis连接失败")
		}
	}
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			logger.Warn().Err(err).Msg("关闭MySQL连接失败")
		}
	}
}
