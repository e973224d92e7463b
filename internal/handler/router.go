package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-connect-api/internal/middleware"
	"github.com/noah-isme/campus-connect-api/internal/models"
	"github.com/noah-isme/campus-connect-api/internal/service"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
	"github.com/noah-isme/campus-connect-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-connect-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-connect-api/pkg/middleware/requestid"
	"github.com/noah-isme/campus-connect-api/pkg/response"
)

const routeNotFound = "Route not found. Try /api/ai or /api/studyhub"

// RouterConfig holds the HTTP surface settings.
type RouterConfig struct {
	APIPrefix    string
	CORSOrigins  []string
	VoiceDir     string
	VoiceBaseURL string
	Logger       *zap.Logger
	Metrics      *service.MetricsService
}

// Handlers groups the endpoint handlers.
type Handlers struct {
	Assistant   *AssistantHandler
	Departments *DepartmentHandler
	StudyHub    *StudyHubHandler
	Auth        *AuthHandler
	Admin       *AdminHandler
	System      *MetricsHandler
}

// Guards are the cross-cutting middlewares applied per route group.
// Nil limiters and a nil auditor are no-ops.
type Guards struct {
	Tokens  middleware.TokenValidator
	Auditor *middleware.Auditor
	API     *middleware.RateLimiter
	AI      *middleware.RateLimiter
	Auth    *middleware.RateLimiter
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg RouterConfig, h Handlers, g Guards) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.CORSOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	r.GET("/health", h.System.Health)
	r.GET("/ready", h.System.Ready)
	r.GET("/metrics", h.System.Prometheus)
	if cfg.VoiceDir != "" && strings.HasPrefix(cfg.VoiceBaseURL, "/") {
		r.Static(cfg.VoiceBaseURL, cfg.VoiceDir)
	}

	requireUser := middleware.JWT(g.Tokens)
	adminOnly := middleware.AdminOnly()

	api := r.Group(prefix, g.API.Handler())

	ai := api.Group("/ai")
	{
		ai.POST("/query", g.AI.Handler(), h.Assistant.Query)
		ai.POST("/query/voice", g.AI.Handler(), h.Assistant.Voice)
		ai.POST("/cleanup-voices", requireUser, adminOnly,
			g.Auditor.Record(models.AuditActionVoiceCleanup, "voice"), h.Assistant.CleanupVoices)
	}

	departments := api.Group("/departments")
	{
		departments.GET("", h.Departments.List)
		departments.GET("/search", h.Departments.Search)
		departments.GET("/:id", h.Departments.Get)
		departments.POST("", requireUser, adminOnly,
			g.Auditor.Record(models.AuditActionDepartmentCreate, "department"), h.Departments.Create)
		departments.PUT("/:id", requireUser, adminOnly,
			g.Auditor.Record(models.AuditActionDepartmentUpdate, "department"), h.Departments.Update)
		departments.DELETE("/:id", requireUser, adminOnly,
			g.Auditor.Record(models.AuditActionDepartmentDelete, "department"), h.Departments.Delete)
	}

	studyhub := api.Group("/studyhub")
	{
		studyhub.GET("", h.StudyHub.Latest)
		studyhub.GET("/department/:department", h.StudyHub.ByDepartment)
		studyhub.GET("/search", h.StudyHub.Search)
		studyhub.POST("", requireUser, h.StudyHub.Upload)
	}

	auth := api.Group("/auth")
	{
		auth.POST("/register", g.Auth.Handler(), h.Auth.Register)
		auth.POST("/login", g.Auth.Handler(), h.Auth.Login)
		auth.GET("/me", requireUser, h.Auth.Me)
	}

	admin := api.Group("/admin", requireUser, adminOnly)
	{
		admin.GET("/resources", h.Admin.Resources)
		admin.GET("/resources/export", h.Admin.Export)
		admin.PUT("/resources/:id/approve", g.Auditor.Record(models.AuditActionResourceApprove, "resource"), h.Admin.Approve)
		admin.PUT("/resources/:id/reject", g.Auditor.Record(models.AuditActionResourceReject, "resource"), h.Admin.Reject)
		admin.DELETE("/resources/:id", g.Auditor.Record(models.AuditActionResourceDelete, "resource"), h.Admin.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, routeNotFound))
	})
	return r
}
