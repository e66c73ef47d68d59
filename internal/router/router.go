package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/handler"
	"github.com/noah-isme/complaint-desk-api/internal/middleware"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	"github.com/noah-isme/complaint-desk-api/internal/service"
	"github.com/noah-isme/complaint-desk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/complaint-desk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/complaint-desk-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth       *handler.AuthHandler
	OAuth      *handler.OAuthHandler
	User       *handler.UserHandler
	Complaint  *handler.ComplaintHandler
	Assignment *handler.AssignmentHandler
	Message    *handler.MessageHandler
	Health     *handler.HealthHandler
	Metrics    *handler.MetricsHandler
}

// Options carries the cross-cutting dependencies of the router.
type Options struct {
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Tokens         middleware.TokenValidator
}

// New builds the gin engine with the full route table.
func New(opts Options, h Handlers) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins...))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/SignUp", h.Auth.SignUp)
	r.POST("/Login", h.Auth.Login)

	oauth := r.Group("/auth")
	for _, provider := range []string{service.ProviderGoogle, service.ProviderMicrosoft} {
		oauth.GET("/"+provider, h.OAuth.Start(provider))
		oauth.GET("/"+provider+"/callback", h.OAuth.Callback(provider))
	}
	oauth.GET("/failure", h.OAuth.Failure)

	admin := string(models.UserTypeAdmin)
	agent := string(models.UserTypeAgent)
	adminOnly := middleware.RBAC(admin)

	secured := r.Group("")
	secured.Use(middleware.JWT(opts.Tokens))

	secured.POST("/auth/logout", h.Auth.Logout)

	secured.GET("/AgentUsers", adminOnly, h.User.ListAgents)
	secured.GET("/AgentUsers/:agentId", middleware.AdminOrSelf("agentId"), h.User.GetAgent)
	secured.GET("/OrdinaryUsers", adminOnly, h.User.ListOrdinary)
	secured.DELETE("/OrdinaryUsers/:id", adminOnly, h.User.Delete)
	secured.PUT("/user/:_id", middleware.AdminOrSelf("_id"), h.User.UpdateProfile)

	secured.POST("/Complaint/:id", middleware.AdminOrSelf("id"), h.Complaint.Create)
	secured.GET("/status", adminOnly, h.Complaint.List)
	secured.GET("/status/:id", middleware.AdminOrSelf("id"), h.Complaint.ListByUser)
	secured.PUT("/complaint/:complaintId", middleware.RBAC(admin, agent), h.Complaint.UpdateStatus)
	secured.GET("/complaints/stats", adminOnly, h.Complaint.Stats)
	secured.GET("/complaints/export", adminOnly, h.Complaint.Export)

	secured.POST("/assignedComplaints", adminOnly, h.Assignment.Assign)
	secured.GET("/allcomplaints/:agentId", middleware.AdminOrSelf("agentId"), h.Assignment.AgentComplaints)

	secured.POST("/messages", h.Message.Create)
	secured.GET("/messages/:complaintId", h.Message.List)
	secured.GET("/messages/:complaintId/stream", h.Message.Stream)

	return r
}
