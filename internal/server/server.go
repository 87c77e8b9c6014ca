package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "bistro/docs"
	"bistro/internal/ai"
	"bistro/internal/config"
	"bistro/internal/handler"
	"bistro/internal/pkg/cache"
	"bistro/internal/pkg/mongodb"
	"bistro/internal/pkg/storagefactory"
	"bistro/internal/repository"
	"bistro/internal/server/middleware"
	"bistro/internal/service"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
}

// New 创建服务器实例
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.SetHTMLTemplate(pageTemplates)

	// 初始化 MongoDB (必需，模拟结果持久化依赖)
	mongoClient, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	// 创建索引
	if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// 初始化 Redis (可选，仪表盘缓存)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	// 初始化归档存储 (可选)
	archiveStorage, err := storagefactory.New(&cfg.Storage)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize archive storage, continuing without it")
		archiveStorage = nil
	}

	// 初始化文本生成客户端
	aiClient, err := ai.NewClient(ctx, &cfg.AI)
	if err != nil {
		return nil, err
	}
	log.Info().Str("provider", cfg.AI.Provider).Str("model", cfg.AI.Model).Msg("initialized AI client")

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
	}

	// 组装服务与路由
	repo := repository.NewConversationRepo(mongoClient)
	simService := service.NewSimulationService(aiClient, repo)
	reportService := service.NewReportService(repo, redisCache)
	exportService := service.NewExportService(archiveStorage)
	chatService := service.NewChatService(aiClient)

	srv.setupRoutes(simService, reportService, exportService, chatService)

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(
	simService *service.SimulationService,
	reportService *service.ReportService,
	exportService *service.ExportService,
	chatService *service.ChatService,
) {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 未注册方法统一返回 405
	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"code":    40501,
			"message": "Method Not Allowed",
		})
	})

	// 健康检查
	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 聊天机器人（公开）
	chatHandler := handler.NewChatHandler(chatService)
	s.engine.GET("/chatbot/", chatHandler.Page)
	s.engine.POST("/chatbot/", chatHandler.Chat)

	// 模拟与报表接口（Basic 认证）
	simHandler := handler.NewSimulationHandler(simService, reportService, exportService)
	dashHandler := handler.NewDashboardHandler(reportService)

	authorized := s.engine.Group("", middleware.BasicAuth(&s.cfg.Auth))
	{
		authorized.GET("/simulations/latest/", simHandler.Latest)
		authorized.POST("/simulations/run/", simHandler.Run)
		authorized.DELETE("/simulations/:id/", simHandler.Delete)
		authorized.GET("/vegetarians/", simHandler.Vegetarians)
		authorized.GET("/dashboard/", dashHandler.Dashboard)
		authorized.GET("/dashboard/data/", dashHandler.DashboardData)
	}
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		// 关闭连接
		if err := s.mongo.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close MongoDB connection")
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
