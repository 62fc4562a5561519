package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hr-copilot-go/internal/config"
	"hr-copilot-go/internal/logger"
	"hr-copilot-go/internal/storage/models"
)

// ErrNotFound 查询目标记录不存在
var ErrNotFound = errors.New("记录不存在")

var mysqlTracer = otel.Tracer("hr-copilot-go/storage/mysql")

type gormSpanKey struct{}

// GormTracingPlugin GORM插件，为数据库操作创建OpenTelemetry span
type GormTracingPlugin struct {
	tracer trace.Tracer
	dbName string
}

// NewGormTracingPlugin 创建GORM追踪插件
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{
		tracer: mysqlTracer,
		dbName: dbName,
	}
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 为各类CRUD操作注册前后回调
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("CREATE")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after()); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after()); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after()); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after()); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("otel:before_row", p.before("ROW")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("otel:after_row", p.after()); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("RAW")); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after()); err != nil {
		return err
	}
	return nil
}

// before 在操作前开启span并挂到语句上下文
func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		spanName := fmt.Sprintf("%s %s", operation, tableName)
		newCtx, span := p.tracer.Start(ctx, spanName,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", tableName),
			),
		)
		db.Statement.Context = context.WithValue(newCtx, gormSpanKey{}, span)
	}
}

// after 在操作后补充结果属性并结束span
// ErrRecordNotFound属于正常业务分支，不计为span错误。
func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value(gormSpanKey{}).(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

		if db.Error != nil {
			if errors.Is(db.Error, gorm.ErrRecordNotFound) {
				span.SetAttributes(attribute.String("error.type", "record_not_found"))
				span.SetStatus(codes.Ok, "record not found")
			} else {
				span.RecordError(db.Error)
				span.SetStatus(codes.Error, db.Error.Error())
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}

// MySQL 岗位与候选人的关系存储
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL客户端并完成表结构迁移
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(parseGormLogLevel(cfg.LogLevel)),
		PrepareStmt:                              true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	if err := db.Use(NewGormTracingPlugin(cfg.Database)); err != nil {
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	m := &MySQL{db: db, cfg: cfg}

	if cfg.AutoMigrate {
		if err := m.autoMigrateSchema(); err != nil {
			if sqlDB, derr := db.DB(); derr == nil {
				sqlDB.Close()
			}
			return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
		}
	}

	logger.Info().Str("database", cfg.Database).Msg("MySQL连接就绪")
	return m, nil
}

func parseGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// autoMigrateSchema 迁移期间静默SQL日志
func (m *MySQL) autoMigrateSchema() error {
	currentLogger := m.db.Logger
	m.db.Logger = gormlogger.New(
		log.New(log.Writer(), "", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Silent,
			IgnoreRecordNotFoundError: true,
		},
	)
	defer func() { m.db.Logger = currentLogger }()

	return m.db.AutoMigrate(
		&models.HRUser{},
		&models.JobPosting{},
		&models.CandidateProfile{},
	)
}

// DB 返回GORM实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭底层连接池
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetUserByAPIKey 按API密钥查找HR用户
func (m *MySQL) GetUserByAPIKey(ctx context.Context, apiKey string) (*models.HRUser, error) {
	var user models.HRUser
	err := m.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询HR用户失败: %w", err)
	}
	return &user, nil
}

// CreateJob 写入新岗位
func (m *MySQL) CreateJob(ctx context.Context, job *models.JobPosting) error {
	if err := m.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("创建岗位失败: %w", err)
	}
	return nil
}

// GetOwnedJob 按ID查岗位，归属校验失败同样视为不存在
func (m *MySQL) GetOwnedJob(ctx context.Context, hrUserID, jobID string) (*models.JobPosting, error) {
	var job models.JobPosting
	err := m.db.WithContext(ctx).
		Where("job_id = ? AND hr_user_id = ?", jobID, hrUserID).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询岗位失败: %w", err)
	}
	return &job, nil
}

// LatestJob 该HR最近创建的岗位
func (m *MySQL) LatestJob(ctx context.Context, hrUserID string) (*models.JobPosting, error) {
	var job models.JobPosting
	err := m.db.WithContext(ctx).
		Where("hr_user_id = ?", hrUserID).
		Order("created_at DESC").
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询最新岗位失败: %w", err)
	}
	return &job, nil
}

// ListJobs 该HR的全部岗位，从新到旧
func (m *MySQL) ListJobs(ctx context.Context, hrUserID string) ([]models.JobPosting, error) {
	var jobs []models.JobPosting
	err := m.db.WithContext(ctx).
		Where("hr_user_id = ?", hrUserID).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("查询岗位列表失败: %w", err)
	}
	return jobs, nil
}

// CreateCandidate 写入候选人评估记录
func (m *MySQL) CreateCandidate(ctx context.Context, candidate *models.CandidateProfile) error {
	if err := m.db.WithContext(ctx).Create(candidate).Error; err != nil {
		return fmt.Errorf("创建候选人记录失败: %w", err)
	}
	return nil
}

// CountCandidates 岗位下候选人总数
func (m *MySQL) CountCandidates(ctx context.Context, jobID string) (int64, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&models.CandidateProfile{}).
		Where("job_id = ?", jobID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计候选人失败: %w", err)
	}
	return count, nil
}

// CountCandidatesAbove 岗位下评分不低于阈值的候选人数
func (m *MySQL) CountCandidatesAbove(ctx context.Context, jobID string, threshold int) (int64, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&models.CandidateProfile{}).
		Where("job_id = ? AND score >= ?", jobID, threshold).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计候选人失败: %w", err)
	}
	return count, nil
}

// CandidatesAbove 岗位下评分不低于阈值的候选人，按分数从高到低
func (m *MySQL) CandidatesAbove(ctx context.Context, jobID string, threshold int) ([]models.CandidateProfile, error) {
	var candidates []models.CandidateProfile
	err := m.db.WithContext(ctx).
		Where("job_id = ? AND score >= ?", jobID, threshold).
		Order("score DESC").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("查询候选人失败: %w", err)
	}
	return candidates, nil
}

// MarkShortlisted 批量置入围标记，返回实际更新的行数
func (m *MySQL) MarkShortlisted(ctx context.Context, jobID string, candidateIDs []string) (int64, error) {
	if len(candidateIDs) == 0 {
		return 0, nil
	}
	result := m.db.WithContext(ctx).
		Model(&models.CandidateProfile{}).
		Where("job_id = ? AND candidate_id IN ?", jobID, candidateIDs).
		Update("shortlisted", true)
	if result.Error != nil {
		return 0, fmt.Errorf("更新入围标记失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ListCandidates 岗位下的全部候选人，分数相同按创建时间从新到旧
func (m *MySQL) ListCandidates(ctx context.Context, jobID string) ([]models.CandidateProfile, error) {
	var candidates []models.CandidateProfile
	err := m.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("score DESC, created_at DESC").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("查询候选人列表失败: %w", err)
	}
	return candidates, nil
}

// UserStats HR维度的汇总统计
type UserStats struct {
	Jobs        int64 `json:"jobs"`
	Candidates  int64 `json:"candidates"`
	Shortlisted int64 `json:"shortlisted"`
}

// StatsForUser 统计该HR名下的岗位数、候选人数与入围数
func (m *MySQL) StatsForUser(ctx context.Context, hrUserID string) (*UserStats, error) {
	stats := &UserStats{}

	err := m.db.WithContext(ctx).
		Model(&models.JobPosting{}).
		Where("hr_user_id = ?", hrUserID).
		Count(&stats.Jobs).Error
	if err != nil {
		return nil, fmt.Errorf("统计岗位数失败: %w", err)
	}

	candidateScope := m.db.WithContext(ctx).
		Model(&models.CandidateProfile{}).
		Joins("JOIN job_postings ON job_postings.job_id = candidate_profiles.job_id").
		Where("job_postings.hr_user_id = ?", hrUserID)

	if err := candidateScope.Session(&gorm.Session{}).Count(&stats.Candidates).Error; err != nil {
		return nil, fmt.Errorf("统计候选人数失败: %w", err)
	}
	if err := candidateScope.Session(&gorm.Session{}).
		Where("candidate_profiles.shortlisted = ?", true).
		Count(&stats.Shortlisted).Error; err != nil {
		return nil, fmt.Errorf("统计入围数失败: %w", err)
	}

	return stats, nil
}
