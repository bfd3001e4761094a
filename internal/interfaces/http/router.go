package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"glycoanalyzer/internal/application/session"
	"glycoanalyzer/internal/application/session/usecases"
	"glycoanalyzer/internal/domain/license"
	"glycoanalyzer/internal/infrastructure/auth"
	"glycoanalyzer/internal/infrastructure/config"
	"glycoanalyzer/internal/infrastructure/email"
	"glycoanalyzer/internal/infrastructure/ratelimit"
	"glycoanalyzer/internal/interfaces/http/handlers"
	"glycoanalyzer/internal/interfaces/http/middleware"
	"glycoanalyzer/internal/shared/logger"
	"glycoanalyzer/internal/shared/services/markdown"
)

// loginAttemptWindow caps authentication attempts per email.
const (
	loginAttemptWindow = 15 * time.Minute
	loginAttemptLimit  = 10
	sessionIdleTTL     = 8 * time.Hour
)

// Router wires the HTTP surface: middleware chain, handlers, and the
// application services behind them.
type Router struct {
	engine         *gin.Engine
	registry       *session.Registry
	authHandler    *handlers.AuthHandler
	patientHandler *handlers.PatientHandler
	analysisHdl    *handlers.AnalysisHandler
	batchHandler   *handlers.BatchHandler
	authMiddleware *middleware.AuthMiddleware
	log            logger.Interface
}

// NewRouter builds the router from the resolved configuration and the
// already-constructed infrastructure pieces that main owns.
func NewRouter(
	cfg *config.Config,
	directory license.Directory,
	classifier usecases.Classifier,
	log logger.Interface,
) *Router {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	gate := license.NewGate(directory, log.Named("gate"))
	registry := session.NewRegistry(sessionIdleTTL)
	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.ExpMinutes, cfg.Auth.JWT.Issuer)

	var limiter usecases.LoginLimiter = ratelimit.NewNoopLoginLimiter()
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		limiter = ratelimit.NewRedisLoginLimiter(client, loginAttemptWindow, loginAttemptLimit)
	}

	var sender usecases.ReportSender = email.NewNoopReportService()
	if cfg.Email.Configured() {
		sender = email.NewSMTPReportService(&cfg.Email, markdown.NewService())
	}

	loginUC := usecases.NewLoginUseCase(gate, registry, jwtService, limiter, log.Named("login"))
	logoutUC := usecases.NewLogoutUseCase(registry, log.Named("logout"))
	registerUC := usecases.NewRegisterPatientUseCase(registry, log.Named("patient"))
	analyzeUC := usecases.NewAnalyzePhotosUseCase(registry, classifier, log.Named("analyze"))
	getBatchUC := usecases.NewGetBatchUseCase(registry)
	resetBatchUC := usecases.NewResetBatchUseCase(registry, log.Named("batch"))
	emailReportUC := usecases.NewEmailReportUseCase(registry, sender, log.Named("report"))

	return &Router{
		engine:         engine,
		registry:       registry,
		authHandler:    handlers.NewAuthHandler(loginUC, logoutUC, log.Named("auth")),
		patientHandler: handlers.NewPatientHandler(registerUC, log.Named("patient")),
		analysisHdl:    handlers.NewAnalysisHandler(analyzeUC, log.Named("analysis")),
		batchHandler:   handlers.NewBatchHandler(getBatchUC, resetBatchUC, emailReportUC, log.Named("batch")),
		authMiddleware: middleware.NewAuthMiddleware(jwtService, log.Named("auth")),
		log:            log,
	}
}

// SetupRoutes installs the middleware chain and the API routes.
func (r *Router) SetupRoutes(allowedOrigins []string) {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.Logging(r.log))
	r.engine.Use(middleware.CORS(allowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.engine.Group("/api/v1")
	{
		v1.POST("/auth/login", r.authHandler.Login)

		authed := v1.Group("")
		authed.Use(r.authMiddleware.RequireSession())
		{
			authed.POST("/auth/logout", r.authHandler.Logout)
			authed.POST("/patients", r.patientHandler.Register)
			authed.POST("/analyses", r.analysisHdl.Analyze)
			authed.GET("/batch", r.batchHandler.Get)
			authed.DELETE("/batch", r.batchHandler.Reset)
			authed.POST("/batch/:index/report/email", r.batchHandler.EmailReport)
		}
	}
}

// Engine exposes the underlying gin engine for the HTTP server.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Registry exposes the session registry so main can run the idle sweeper.
func (r *Router) Registry() *session.Registry {
	return r.registry
}
