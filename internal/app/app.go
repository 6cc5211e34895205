package app

import (
	"context"
	"narraprep_backend/internal/config"
	"narraprep_backend/internal/controller"
	"narraprep_backend/internal/repository"
	"narraprep_backend/internal/service"
	"narraprep_backend/pkg/database"
	"narraprep_backend/pkg/logger"
	"narraprep_backend/pkg/monitoring"
	"narraprep_backend/pkg/security"
	"narraprep_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	Store           *database.Handle
	Redis           *redis.Client
	origins         *security.OriginSet
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	question *repository.QuestionRepository
	quiz     *repository.QuizRepository
	attempt  *repository.AttemptRepository
	cache    *repository.QuestionCache
}

type services struct {
	auth     *service.AuthService
	storage  *service.StorageService
	stats    *service.StatsAggregator
	user     *service.UserService
	question *service.QuestionService
	quiz     *service.QuizService
	attempt  *service.AttemptService
}

type controllers struct {
	auth     *controller.AuthController
	user     *controller.UserController
	question *controller.QuestionController
	quiz     *controller.QuizController
	attempt  *controller.AttemptController
	config   *controller.ConfigController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig hands a freshly loaded config to every registered callback.
func (a *App) ReloadConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(store *database.Handle, rdb *redis.Client, cfg *config.Config) *repositories {
	cache := repository.NewQuestionCache(rdb, cfg.Cache.QuestionTTL)
	return &repositories{
		user:     repository.NewUserRepository(store),
		question: repository.NewQuestionRepository(store, cache),
		quiz:     repository.NewQuizRepository(store),
		attempt:  repository.NewAttemptRepository(store),
		cache:    cache,
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.stats = service.NewStatsAggregator(repos.user)
	s.user = service.NewUserService(repos.user, s.auth, s.storage)
	s.question = service.NewQuestionService(repos.question, s.storage)
	s.quiz = service.NewQuizService(repos.quiz)
	s.attempt = service.NewAttemptService(repos.attempt, repos.quiz, repos.question, s.stats)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, cfg *config.Config) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		user:     controller.NewUserController(s.user),
		question: controller.NewQuestionController(s.question),
		quiz:     controller.NewQuizController(s.quiz),
		attempt:  controller.NewAttemptController(s.attempt),
		config:   controller.NewConfigController(cfg),
		health:   controller.NewHealthController(a.Store, repos.cache, cfg.Server.Name),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(a.origins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if cfg.RateLimit.MaxRequests > 0 && window > 0 {
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	store := database.NewHandle(&cfg.Database, cfg.Server.Mode)

	// 启动时连接失败不退出，健康检查会报告降级状态，首次使用时重试
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		logger.Log.Warn("Document store unavailable at startup", zap.Error(err))
	}
	cancel()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, question cache disabled", zap.Error(err))
		rdb = nil
	}

	app := newApp(cfg, store, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Server.Name, &cfg.Tracing)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracerProvider = tp
		}
	}

	if cfg.Storage.Type == "local" {
		app.Router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

// newApp wires repositories, services, controllers and routes around an existing store.
func newApp(cfg *config.Config, store *database.Handle, rdb *redis.Client) *App {
	app := &App{
		Config:  cfg,
		Store:   store,
		Redis:   rdb,
		origins: security.NewOriginSet(cfg.CORS.AllowedOrigins),
	}

	repos := app.initRepositories(store, rdb, cfg)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services, repos, cfg)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode != gin.ReleaseMode && cfg.Server.Mode != gin.TestMode {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.origins.Replace(newCfg.CORS.AllowedOrigins)
	})
	app.RegisterConfigCallback(controllers.config.Reload)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if err := a.Store.Close(); err != nil {
		logger.Log.Error("Failed to close document store", zap.Error(err))
	}

	logger.Log.Info("Server exiting")
}
