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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	_ "github.com/noah-isme/complaint-desk-api/api/swagger"
	"github.com/noah-isme/complaint-desk-api/internal/handler"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	"github.com/noah-isme/complaint-desk-api/internal/repository"
	"github.com/noah-isme/complaint-desk-api/internal/router"
	"github.com/noah-isme/complaint-desk-api/internal/service"
	"github.com/noah-isme/complaint-desk-api/pkg/cache"
	"github.com/noah-isme/complaint-desk-api/pkg/config"
	"github.com/noah-isme/complaint-desk-api/pkg/database"
	"github.com/noah-isme/complaint-desk-api/pkg/export"
	"github.com/noah-isme/complaint-desk-api/pkg/jobs"
	"github.com/noah-isme/complaint-desk-api/pkg/logger"
	"github.com/noah-isme/complaint-desk-api/pkg/signer"
	"github.com/noah-isme/complaint-desk-api/pkg/tracing"
)

// @title Complaint Desk API
// @version 1.0.0
// @description Complaint submission, assignment and chat for citizens, agents and administrators
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByProvider(ctx context.Context, provider, subject, email string) (*models.User, error)
	LinkProvider(ctx context.Context, id, provider, subject string) error
	Create(ctx context.Context, user *models.User) error
	ListByType(ctx context.Context, userType models.UserType) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, update models.UserProfileUpdate) (*models.User, error)
	DeleteWithComplaints(ctx context.Context, id string) (int64, error)
	Ping(ctx context.Context) error
}

type complaintStore interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	ListByUser(ctx context.Context, userID string) ([]models.Complaint, error)
	List(ctx context.Context) ([]models.Complaint, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Complaint, error)
	UpdateStatus(ctx context.Context, complaintID string, status models.ComplaintStatus) (*models.Complaint, int64, error)
}

type assignmentStore interface {
	Create(ctx context.Context, assignment *models.AssignedComplaint) error
	ListByAgent(ctx context.Context, agentID string) ([]models.AssignedComplaint, error)
}

type messageStore interface {
	Create(ctx context.Context, message *models.Message) error
	ListByComplaint(ctx context.Context, complaintID string) ([]models.Message, error)
}

type auditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// stores is the persistence backend selected by DB_DRIVER.
type stores struct {
	users       userStore
	complaints  complaintStore
	assignments assignmentStore
	messages    messageStore
	audit       auditStore
	close       func(context.Context) error
}

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init tracing", "error", err)
	}

	store, err := openStores(ctx, cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to open store", "driver", cfg.Database.Driver, "error", err)
	}
	logr.Sugar().Infow("store connected", "driver", cfg.Database.Driver)

	var redisClient *redis.Client
	if client, err := cache.NewRedis(ctx, cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, cache, shared deny-list and chat stream disabled", "error", err)
	} else {
		redisClient = client
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	audit := service.NewAuditService(store.audit, metrics, logr)
	auditQueue := jobs.NewQueue("audit", audit.Handle, jobs.QueueConfig{
		Workers:    cfg.Audit.Workers,
		MaxRetries: cfg.Audit.MaxRetries,
		Logger:     logr,
	})
	auditQueue.Start(ctx)
	audit.AttachQueue(auditQueue)

	var blacklist service.TokenBlacklist = repository.NewMemoryTokenBlacklist()
	var broker service.MessageBroker
	cacheSvc := service.NewCacheService(nil, metrics, cfg.Cache.TTL, logr, false)
	if redisClient != nil {
		blacklist = repository.NewTokenBlacklistRepository(redisClient)
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
		if cfg.Chat.StreamEnabled {
			broker = repository.NewMessageBroker(redisClient, logr)
		}
	}

	authSvc := service.NewAuthService(store.users, blacklist, audit, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,

		AllowPrivilegedSignUp: cfg.Auth.AllowPrivilegedSignUp,
	})
	states := signer.NewStateSigner(cfg.JWT.Secret, 10*time.Minute)
	oauthSvc := service.NewOAuthService(cfg.OAuth, cfg.FrontendURL, store.users, authSvc, audit, states, logr)
	userSvc := service.NewUserService(store.users, cacheSvc, audit, validate, logr)
	complaintSvc := service.NewComplaintService(store.complaints, store.users, cacheSvc, audit, metrics, logr)
	assignmentSvc := service.NewAssignmentService(store.assignments, store.complaints, audit, metrics, validate, logr)
	messageSvc := service.NewMessageService(store.messages, broker, metrics, logr)
	dashboardSvc := service.NewDashboardService(store.complaints, store.users, cacheSvc, cfg.Cache.TTL, logr)
	exportSvc := service.NewExportService(complaintSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	engine := router.New(router.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        metrics,
		Tokens:         authSvc,
	}, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		OAuth:      handler.NewOAuthHandler(oauthSvc, states.TTL(), cfg.Env == config.EnvProduction, logr),
		User:       handler.NewUserHandler(userSvc),
		Complaint:  handler.NewComplaintHandler(complaintSvc, dashboardSvc, exportSvc),
		Assignment: handler.NewAssignmentHandler(assignmentSvc),
		Message:    handler.NewMessageHandler(messageSvc, metrics, cfg.CORS.AllowedOrigins, logr),
		Health:     handler.NewHealthHandler(store.users),
		Metrics:    handler.NewMetricsHandler(metrics.Handler()),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           otelhttp.NewHandler(engine, cfg.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "chat_stream", messageSvc.StreamEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http server shutdown", zap.Error(err))
	}
	auditQueue.Stop()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logr.Warn("redis close", zap.Error(err))
		}
	}
	if err := store.close(shutdownCtx); err != nil {
		logr.Warn("store close", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logr.Warn("tracing shutdown", zap.Error(err))
	}
	logr.Info("server stopped")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database, 10*time.Second)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:       repository.NewUserRepository(db),
			complaints:  repository.NewComplaintRepository(db),
			assignments: repository.NewAssignmentRepository(db),
			messages:    repository.NewMessageRepository(db),
			audit:       repository.NewAuditRepository(db),
			close:       func(context.Context) error { return db.Close() },
		}, nil
	default:
		client, db, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		timeout := cfg.Mongo.Timeout
		return &stores{
			users:       repository.NewMongoUserRepository(db, timeout),
			complaints:  repository.NewMongoComplaintRepository(db, timeout),
			assignments: repository.NewMongoAssignmentRepository(db, timeout),
			messages:    repository.NewMongoMessageRepository(db, timeout),
			audit:       repository.NewMongoAuditRepository(db, timeout),
			close:       client.Disconnect,
		}, nil
	}
}
