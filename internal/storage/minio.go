package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"hr-copilot-go/internal/config"
	"hr-copilot-go/internal/logger"
)

// MinIO 简历原始文件的对象存储
type MinIO struct {
	client *minio.Client
	cfg    *config.MinIOConfig
	bucket string
}

// NewMinIO 创建MinIO客户端并确保简历存储桶存在
func NewMinIO(cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client: client,
		cfg:    cfg,
		bucket: cfg.ResumeBucket,
	}

	if err := m.ensureBucketExists(cfg.ResumeBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保简历存储桶 %s 存在失败: %w", cfg.ResumeBucket, err)
	}

	logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("bucket", cfg.ResumeBucket).
		Msg("MinIO客户端就绪")
	return m, nil
}

func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	ctx := context.Background()
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
		logger.Info().Str("bucket", bucketName).Msg("存储桶已创建")
	}
	return nil
}

// UploadResume 上传简历原始文件，返回对象键
// 对象键格式: {jobID}/{uuid}_{原始文件名}，随机前缀避免同名覆盖。
func (m *MinIO) UploadResume(ctx context.Context, jobID, originalFilename string, data []byte) (string, error) {
	objectKey := fmt.Sprintf("%s/%s_%s", jobID, uuid.NewString(), sanitizeFilename(originalFilename))

	_, err := m.client.PutObject(ctx, m.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentTypeForFile(originalFilename),
	})
	if err != nil {
		return "", fmt.Errorf("上传简历文件 %s 失败: %w", originalFilename, err)
	}
	return objectKey, nil
}

// PresignedResumeURL 生成简历文件的预签名下载URL
func (m *MinIO) PresignedResumeURL(ctx context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", nil
	}
	expiry := time.Duration(m.cfg.PresignExpiry) * time.Minute
	if expiry <= 0 {
		expiry = time.Hour
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectKey, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("生成预签名URL失败 (key=%s): %w", objectKey, err)
	}
	return u.String(), nil
}

// sanitizeFilename 去掉路径分隔符，防止对象键被目录穿越
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\\", "_")
	return name
}

func contentTypeForFile(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
