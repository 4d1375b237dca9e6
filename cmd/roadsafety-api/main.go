package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/roadsafety-api/api/swagger"
	"github.com/noah-isme/roadsafety-api/internal/handler"
	"github.com/noah-isme/roadsafety-api/internal/middleware"
	"github.com/noah-isme/roadsafety-api/internal/repository"
	"github.com/noah-isme/roadsafety-api/internal/service"
	"github.com/noah-isme/roadsafety-api/pkg/cache"
	"github.com/noah-isme/roadsafety-api/pkg/config"
	"github.com/noah-isme/roadsafety-api/pkg/database"
	"github.com/noah-isme/roadsafety-api/pkg/export"
	"github.com/noah-isme/roadsafety-api/pkg/logger"
	"github.com/noah-isme/roadsafety-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/roadsafety-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/roadsafety-api/pkg/middleware/requestid"
	"github.com/noah-isme/roadsafety-api/pkg/resettoken"
	"github.com/noah-isme/roadsafety-api/pkg/storage"
	"github.com/noah-isme/roadsafety-api/pkg/tracing"
)

// @title Road Safety Complaint API
// @version 1.0.0
// @description Citizens report road defects, admins triage them and contractors repair them.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logr.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache and token revocation", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	files, err := storage.NewLocalStorage(cfg.Storage.UploadDir)
	if err != nil {
		return fmt.Errorf("init media storage: %w", err)
	}
	mail, err := mailer.New(cfg.Mail, logr)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	contractorRepo := repository.NewContractorRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	updateRepo := repository.NewUpdateRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Dashboard.CacheTTL, logr, redisClient != nil)
	media := service.NewMediaService(
		files,
		storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL),
		storage.UploadPolicy{MaxBytes: cfg.Storage.MaxFileSizeBytes, AllowedTypes: cfg.Storage.AllowedMIMEs},
		cfg.APIPrefix+"/media",
		logr,
	)
	notifications := service.NewNotificationService(notificationRepo, metrics, logr)
	identity := service.NewIdentityService(userRepo, contractorRepo, logr)

	authSvc := service.NewAuthService(service.AuthServiceParams{
		Users:       userRepo,
		Contractors: contractorRepo,
		Identity:    identity,
		Blocklist:   repository.NewTokenBlocklist(redisClient),
		ResetTokens: resettoken.NewGenerator(cfg.PasswordReset.Secret, cfg.PasswordReset.TTL),
		Mailer:      mail,
		Metrics:     metrics,
		Validator:   validate,
		Logger:      logr,
		Config: service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
			ResetLinkBase:     cfg.PasswordReset.PublicBaseURL + cfg.APIPrefix + "/auth/reset-password",
		},
	})
	complaintSvc := service.NewComplaintService(service.ComplaintServiceParams{
		Complaints:  complaintRepo,
		Updates:     updateRepo,
		Assignments: assignmentRepo,
		Notifier:    notifications,
		Media:       media,
		Cache:       cacheSvc,
		Metrics:     metrics,
		Validator:   validate,
		Logger:      logr,
	})
	assignmentSvc := service.NewAssignmentService(service.AssignmentServiceParams{
		Assignments: assignmentRepo,
		Complaints:  complaintRepo,
		Contractors: contractorRepo,
		Updates:     updateRepo,
		Notifier:    notifications,
		Media:       media,
		Cache:       cacheSvc,
		Metrics:     metrics,
		Validator:   validate,
		Logger:      logr,
	})
	searchSvc := service.NewSearchService(userRepo, contractorRepo, complaintRepo, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Complaints:    complaintRepo,
		Contractors:   contractorRepo,
		Assignments:   assignmentRepo,
		Notifications: notifications,
		Search:        searchSvc,
		Media:         media,
		Cache:         cacheSvc,
		Logger:        logr,
		Config:        service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})
	contractorSvc := service.NewContractorService(contractorRepo, notifications, cacheSvc, logr)
	exportSvc := service.NewExportService(complaintRepo, export.NewCSVExporter(), export.NewPDFExporter(), validate, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Storage.MaxFileSizeBytes + 1<<20
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(tracing.Middleware(cfg.Tracing.ServiceName))
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	ops := handler.NewMetricsHandler(metrics, readinessChecks(db.PingContext, redisClient))
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Complaints: handler.NewComplaintHandler(complaintSvc, dashboardSvc),
		Admin: handler.NewAdminHandler(handler.AdminHandlerDeps{
			Dashboard:   dashboardSvc,
			Complaints:  complaintSvc,
			Assignments: assignmentSvc,
			Contractors: contractorSvc,
			Search:      searchSvc,
			Export:      exportSvc,
		}),
		Contractor:    handler.NewContractorHandler(dashboardSvc, assignmentSvc),
		Notifications: handler.NewNotificationHandler(notifications),
		Media:         handler.NewMediaHandler(media),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func readinessChecks(pingDB handler.ReadinessCheck, redisClient *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{"database": pingDB}
	if redisClient != nil {
		checks["redis"] = cache.Pinger(redisClient)
	}
	return checks
}
