package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dryp3004/DRYP-Preview/config"
	"github.com/dryp3004/DRYP-Preview/handler"
	"github.com/dryp3004/DRYP-Preview/metrics"
	"github.com/dryp3004/DRYP-Preview/middleware"
	"github.com/dryp3004/DRYP-Preview/model"
	"github.com/dryp3004/DRYP-Preview/raster"
	"github.com/dryp3004/DRYP-Preview/service"
	"github.com/dryp3004/DRYP-Preview/store"
	"github.com/dryp3004/DRYP-Preview/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	BuildID   = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	// 加载配置
	cfg, err := config.New()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := utils.InitLogger(cfg.Server.Mode, utils.FileOptions{
		Path:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()

	utils.Logger.Info("starting DRYP Preview server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("git_branch", GitBranch))

	ctx := context.Background()

	// 初始化缓存，Redis 不可用时使用进程内缓存
	var cache service.Cache
	redisService := service.NewRedisService(&cfg.Redis)
	if err := redisService.Ping(ctx); err != nil {
		utils.Logger.Warn("redis connection failed, using in-process cache", zap.Error(err))
		cache = service.NewLocalCache(cfg.Redis.LocalSize, cfg.Redis.TTL)
	} else {
		utils.Logger.Info("redis connected successfully")
		cache = redisService
	}
	defer redisService.Close()

	// 外部服务，缺少密钥时直接退出
	searchService, err := service.NewSearchService(ctx, &cfg.Google)
	if err != nil {
		utils.Logger.Fatal("failed to init image search", zap.Error(err))
	}
	generateService, err := service.NewGenerateService(&cfg.OpenAI)
	if err != nil {
		utils.Logger.Fatal("failed to init image generation", zap.Error(err))
	}
	driveService, err := service.NewDriveService(ctx, &cfg.Google)
	if err != nil {
		utils.Logger.Fatal("failed to init drive storage", zap.Error(err))
	}

	// 渲染与业务服务
	loader := raster.NewSourceLoader(
		&http.Client{Timeout: cfg.Capture.FetchTimeout},
		cfg.Capture.AssetDir,
		cfg.Capture.MaxFetchBytes,
		cfg.Upload.MaxPixels,
	)
	renderer := raster.NewRenderer(loader, cfg.Capture.MaxParallel)
	catalog := service.NewCatalog(cfg.Garments)
	captureService := service.NewCaptureService(catalog, renderer)
	preferenceService := service.NewPreferenceService(cache, catalog)
	sessions := store.NewRegistry(store.WithBounds(model.Size{Width: raster.CanvasWidth, Height: raster.CanvasHeight}))

	// 初始化Handler
	handlers := handler.Handlers{
		Upload: handler.NewUploadHandler(
			service.NewUploadService(&cfg.Upload),
			service.NewCutoutService(&cfg.Cutout),
		),
		Image: handler.NewImageHandler(
			service.NewImageFinder(searchService, generateService),
			service.NewProxyService(loader, cache, cfg.Redis.TTL),
		),
		Session: handler.NewSessionHandler(
			sessions,
			catalog,
			preferenceService,
			service.NewDesignService(loader),
			captureService,
		),
		Order:      handler.NewOrderHandler(service.NewOrderService(driveService, captureService), sessions),
		Preference: handler.NewPreferenceHandler(preferenceService),
	}

	stop := make(chan struct{})
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	limiter.StartCleanup(time.Minute, stop)
	sessions.StartCleanup(cfg.Session.CleanupInterval, cfg.Session.IdleTimeout, stop)

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 创建路由
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Server.AllowOrigins...))

	// 静态文件服务
	r.Static("/static", cfg.Capture.AssetDir)
	r.StaticFile("/", cfg.Capture.AssetDir+"/index.html")

	// 健康检查和版本信息
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "ok",
			"version":  Version,
			"sessions": sessions.Len(),
		})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"build_id":   BuildID,
			"git_commit": GitCommit,
			"git_branch": GitBranch,
		})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API路由
	handler.Register(r.Group("/api/v1"), handlers, limiter.Handler())

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		utils.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stop)

	utils.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.Error("server forced to shutdown", zap.Error(err))
	}
}
