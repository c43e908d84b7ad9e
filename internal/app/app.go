package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"study_assistant_backend/internal/config"
	"study_assistant_backend/internal/controller"
	"study_assistant_backend/internal/middleware"
	"study_assistant_backend/internal/repository"
	"study_assistant_backend/internal/service"
	"study_assistant_backend/internal/util"
	"study_assistant_backend/pkg/configwatcher"
	"study_assistant_backend/pkg/database"
	"study_assistant_backend/pkg/logger"
	"study_assistant_backend/pkg/monitoring"
	"study_assistant_backend/pkg/security"
	"study_assistant_backend/pkg/tracing"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *atomic.Pointer[config.Config]
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	ctx             context.Context
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	quiz        *repository.QuizRepository
	session     *repository.QuizSessionRepository
	preference  *repository.QuizPreferenceRepository
	performance repository.PerformanceCache
}

type services struct {
	storage         *service.StorageService
	preference      *service.PreferenceService
	analyzer        *service.PerformanceAnalyzer
	personalization *service.PersonalizationService
	states          *service.QuizStateRegistry
	quizSession     *service.QuizSessionService
	userData        *service.UserDataService
}

type controllers struct {
	preference      *controller.QuizPreferenceController
	personalization *controller.QuizPersonalizationController
	quizSession     *controller.QuizSessionController
	userData        *controller.UserDataController
	health          *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	a.Config.Store(cfg)
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	repos := &repositories{
		quiz:       repository.NewQuizRepository(db),
		session:    repository.NewQuizSessionRepository(db),
		preference: repository.NewQuizPreferenceRepository(db),
	}
	if rdb != nil {
		repos.performance = repository.NewRedisPerformanceCache(rdb, cfg.Quiz.MetricsCacheTTL())
	} else {
		repos.performance = repository.NewMemoryPerformanceCache()
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(a.ctx, cfg)
	s.preference = service.NewPreferenceService(repos.preference, repos.performance)
	s.analyzer = service.NewPerformanceAnalyzer(repos.performance)
	s.personalization = service.NewPersonalizationService(s.preference, s.analyzer)
	s.states = service.NewQuizStateRegistry(cfg.Quiz.StrictTransitions)

	var generator service.QuizGenerator
	if gen, err := service.NewOpenAIQuizGenerator(cfg.AI); err != nil {
		logger.Log.Warn("Quiz generation disabled", zap.Error(err))
	} else {
		generator = gen
	}

	s.quizSession = service.NewQuizSessionService(
		repos.quiz,
		repos.session,
		s.personalization,
		s.analyzer,
		s.states,
		generator,
		cfg.Quiz.GenerationTimeout(),
		cfg.Quiz.HistoryLimit,
	)
	s.userData = service.NewUserDataService(s.preference, s.quizSession, repos.quiz, repos.session, s.states, s.storage)

	a.RegisterConfigCallback(func(c *config.Config) {
		s.states.SetStrict(c.Quiz.StrictTransitions)
		s.quizSession.SetLimits(c.Quiz.GenerationTimeout(), c.Quiz.HistoryLimit)
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		preference:      controller.NewQuizPreferenceController(s.preference),
		personalization: controller.NewQuizPersonalizationController(s.quizSession),
		quizSession:     controller.NewQuizSessionController(s.quizSession),
		userData:        controller.NewUserDataController(s.userData),
		health:          controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	// 白名单与限流参数随配置热更新
	router.Use(security.CORS(func() []string { return a.Config.Load().CORS.AllowedOrigins }))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, func() (int, time.Duration) {
		rl := a.Config.Load().RateLimit
		return rl.MaxRequests, time.Duration(rl.WindowMinutes) * time.Minute
	}))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) authMiddleware() gin.HandlerFunc {
	return middleware.AuthMiddleware(middleware.ConfigSecret(a.Config))
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			// 指标缓存退回进程内存
			logger.Log.Warn("Redis unavailable, using in-memory performance cache", zap.Error(err))
			rdb = nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:    &atomic.Pointer[config.Config]{},
		ConfigDir: configDir,
		DB:        db,
		Redis:     rdb,
		ctx:       ctx,
		cancel:    cancel,
	}
	app.Config.Store(cfg)

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("study-assistant", cfg.Tracing.CollectorEndpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == gin.DebugMode {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) watchConfig() {
	file := filepath.Join(a.ConfigDir, "config.yaml")
	go func() {
		if err := configwatcher.WatchConfig(a.ctx, file, a.applyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()
}

// Close 释放数据库、缓存与追踪资源
func (a *App) Close() {
	a.cancel()

	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = logger.Log.Sync()
}

func (a *App) Run() {
	defer a.Close()

	cfg := a.Config.Load()
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.watchConfig()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exiting")
}
