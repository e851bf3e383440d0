package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"edconnect_backend/internal/config"
	"edconnect_backend/internal/controller"
	"edconnect_backend/internal/middleware"
	"edconnect_backend/internal/repository"
	"edconnect_backend/internal/service"
	"edconnect_backend/pkg/configwatcher"
	"edconnect_backend/pkg/database"
	"edconnect_backend/pkg/logger"
	"edconnect_backend/pkg/monitoring"
	"edconnect_backend/pkg/privacy"
	"edconnect_backend/pkg/security"
	"edconnect_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/sessions"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	org          *repository.OrganizationRepository
	class        *repository.ClassRepository
	grade        *repository.GradeRepository
	attendance   *repository.AttendanceRepository
	achievement  *repository.AchievementRepository
	learningPath *repository.LearningPathRepository
	tutoring     *repository.TutoringRepository
	analytics    *repository.AnalyticsRepository
}

type services struct {
	auth         *service.AuthService
	tutor        *service.TutorService
	achievement  *service.AchievementService
	learningPath *service.LearningPathService
	analytics    *service.AnalyticsService
	school       *service.SchoolService
	redactor     *privacy.Redactor
	concepts     *service.ConceptExtractor
	sessionStore sessions.Store
}

type controllers struct {
	auth         *controller.AuthController
	tutor        *controller.TutorController
	achievement  *controller.AchievementController
	learningPath *controller.LearningPathController
	analytics    *controller.AnalyticsController
	school       *controller.SchoolController
	health       *controller.HealthController
}

// externals 外部协作者，测试时替换为假实现
type externals struct {
	completer service.ChatCompleter
	denylist  service.TokenDenylist
	storage   service.StorageProvider
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		org:          repository.NewOrganizationRepository(db),
		class:        repository.NewClassRepository(db),
		grade:        repository.NewGradeRepository(db),
		attendance:   repository.NewAttendanceRepository(db),
		achievement:  repository.NewAchievementRepository(db),
		learningPath: repository.NewLearningPathRepository(db),
		tutoring:     repository.NewTutoringRepository(db),
		analytics:    repository.NewAnalyticsRepository(db),
	}
}

// schoolNames 配置中的学校名单加上数据库里已有的学校
func schoolNames(cfg *config.Config, orgRepo *repository.OrganizationRepository) []string {
	names := append([]string{}, cfg.Tutor.SchoolNames...)
	if len(names) == 0 {
		names = append(names, privacy.DefaultSchoolNames...)
	}
	known, err := orgRepo.SchoolNames()
	if err != nil {
		logger.Log.Warn("Failed to load school names", zap.Error(err))
		return names
	}
	return append(names, known...)
}

func (a *App) initServices(repos *repositories, cfg *config.Config, ext externals) *services {
	s := &services{}

	s.redactor = privacy.NewRedactor(schoolNames(cfg, repos.org), logger.Log.Named("privacy"))
	s.concepts = service.NewConceptExtractor(cfg.Tutor.Concepts)
	s.sessionStore = middleware.NewSessionStore(cfg)

	s.auth = service.NewAuthService(repos.user, repos.org, ext.denylist, cfg)
	s.achievement = service.NewAchievementService(repos.achievement, repos.user, repos.tutoring)
	s.learningPath = service.NewLearningPathService(repos.learningPath, s.achievement)
	s.analytics = service.NewAnalyticsService(repos.analytics, repos.user)
	s.school = service.NewSchoolService(repos.user, repos.org, repos.class, repos.grade, repos.attendance)

	var archive *service.TranscriptArchive
	if ext.storage != nil {
		archive = service.NewTranscriptArchive(ext.storage)
	}
	s.tutor = service.NewTutorService(service.TutorDeps{
		Repo:         repos.tutoring,
		UserRepo:     repos.user,
		OrgRepo:      repos.org,
		Completer:    ext.completer,
		Redactor:     s.redactor,
		Concepts:     s.concepts,
		Summarizer:   service.NewSessionSummarizer(ext.completer, cfg.AI.Timeout(), logger.Log.Named("summarizer")),
		Archive:      archive,
		Achievements: s.achievement,
		Timeout:      cfg.AI.Timeout(),
		Log:          logger.Log.Named("tutor"),
	})

	// 热更新：概念表和学校名单
	a.RegisterConfigCallback(func(next *config.Config) {
		s.concepts.SetCategories(next.Tutor.Concepts)
		s.redactor.SetSchoolNames(schoolNames(next, repos.org))
	})

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth, s.sessionStore, a.Config.Session.Name),
		tutor:        controller.NewTutorController(s.tutor),
		achievement:  controller.NewAchievementController(s.achievement),
		learningPath: controller.NewLearningPathController(s.learningPath),
		analytics:    controller.NewAnalyticsController(s.analytics),
		school:       controller.NewSchoolController(s.school),
		health:       controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// build 组装仓储、服务、控制器和路由
func (a *App) build(ext externals) {
	repos := a.initRepositories(a.DB)
	a.services = a.initServices(repos, a.Config, ext)
	controllers := a.initControllers(a.services)

	router := gin.New()
	router.Use(gin.Recovery())
	if !a.Config.Server.IsRelease() {
		router.Use(gin.Logger())
	}
	a.Router = router

	a.setupMiddlewares(router, a.Config)
	a.registerRoutes(router, controllers, a.services)
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	migrate := cfg.ForceMigrate || !cfg.Server.IsRelease()
	db, err := database.InitDB(&cfg.Database, migrate, !cfg.Server.IsRelease())
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
	}
	if cfg.MigrateOnly {
		return app
	}

	var denylist service.TokenDenylist
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Redis 不可用时退化为进程内吊销表
		logger.Log.Warn("Redis unavailable, revoked tokens kept in memory", zap.Error(err))
		denylist = service.NewMemoryTokenDenylist()
	} else {
		app.Redis = rdb
		denylist = service.NewRedisTokenDenylist(rdb)
	}

	storage, err := service.NewStorageProvider(&cfg.Storage)
	if err != nil {
		logger.Log.Warn("Transcript storage disabled", zap.String("type", cfg.Storage.Type), zap.Error(err))
		storage = nil
	}

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.build(externals{
		completer: service.NewAnthropicClient(cfg.AI),
		denylist:  denylist,
		storage:   storage,
	})

	return app
}

func (a *App) applyConfig(cfg *config.Config) {
	logger.Log.Info("Configuration reloaded")
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		path := filepath.Join(a.ConfigDir, "config.yaml")
		if err := configwatcher.WatchConfig(watchCtx, path, time.Second, a.applyConfig); err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stopWatch()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
