package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"

	"hr-copilot-go/internal/agent"
	"hr-copilot-go/internal/api/handler"
	"hr-copilot-go/internal/api/router"
	"hr-copilot-go/internal/config"
	"hr-copilot-go/internal/logger"
	"hr-copilot-go/internal/parser"
	"hr-copilot-go/internal/processor"
	"hr-copilot-go/internal/storage"
	"hr-copilot-go/internal/tracing"
)

var (
	version     = "1.0.0"         //nolint:gochecknoglobals
	serviceName = "hr-copilot-go" //nolint:gochecknoglobals
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}

	initLogger(cfg)
	logger.Info().Str("version", version).Msg("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = serviceName
	}
	shutdownTracing, err := tracing.Init(ctx, &cfg.Tracing)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化链路追踪失败")
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("关闭链路追踪失败")
		}
	}()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储失败")
	}
	defer storageManager.Close()
	logger.Info().Msg("存储服务初始化成功")

	llm, err := agent.NewQwenChatModel(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.APIURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化LLM客户端失败")
	}

	textExtractor, err := parser.NewResumeTextExtractor(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化简历文本提取器失败")
	}

	evaluator := parser.NewResumeEvaluator(llm, parser.WithEvalTimeout(cfg.LLM.LLMTimeout()))
	draftExtractor := parser.NewJobFieldExtractor(llm, parser.WithExtractTimeout(cfg.LLM.LLMTimeout()))

	memory, err := agent.NewRedisConversationMemory(storageManager.Redis.Client, cfg.Chat.ConversationTTL())
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化对话存储失败")
	}

	procOptions := []processor.Option{
		processor.WithJobStore(storageManager.MySQL),
		processor.WithCandidateStore(storageManager.MySQL),
		processor.WithResumeFileStore(storageManager.MinIO),
		processor.WithTextExtractor(textExtractor),
		processor.WithEvaluator(evaluator),
		processor.WithDraftExtractor(draftExtractor),
		processor.WithConversationMemory(memory),
	}
	if storageManager.RabbitMQ != nil {
		procOptions = append(procOptions, processor.WithEventPublisher(storageManager.RabbitMQ))
	}
	chatProcessor := processor.New(procOptions...)
	logger.Info().Msg("ChatProcessor初始化成功")

	chatHandler := handler.NewChatHandler(chatProcessor)
	jobHandler := handler.NewJobHandler(storageManager)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, storageManager, chatHandler, jobHandler)
	logger.Info().Str("address", cfg.Server.Address).Msg("HTTP服务器启动中")

	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}
	logger.Info().Msg("优雅退出完成")
}

// initLogger 初始化zerolog并把Hertz的日志桥接过去
func initLogger(cfg *config.Config) {
	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	glog.SetLogger(hertzadapter.From(logger.Logger))
}
