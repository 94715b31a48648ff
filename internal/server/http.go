package server

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/activity"
	audithandler "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/audit/handler"
	auditrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/audit/repository"
	automationhandler "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/handler"
	automationrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/repository"
	clienthandler "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/handler"
	clientrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/repository"
	dashboardhandler "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/dashboard/handler"
	dashboardrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/dashboard/repository"
	dealhandler "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/deal/handler"
	dealrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/deal/repository"
	healthhandler "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/health/handler"
	identityhandler "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/identity/handler"
	identityservice "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/identity/service"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/security"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/server/middleware"
)

const serviceName = "clientflow-api"

// Deps holds the handler dependencies for the HTTP router. Optional fields may
// be nil; the affected endpoints then return 501 or skip the concern.
type Deps struct {
	// Auth is the auth service for register/login/refresh/logout.
	Auth *identityservice.AuthService
	// Tokens validates bearer tokens for the protected API group.
	Tokens *security.TokenProvider

	ClientRepo     clientrepo.Repository
	DealRepo       dealrepo.Repository
	AutomationRepo automationrepo.Repository
	DashboardRepo  dashboardrepo.Repository
	// AuditRepo backs GET /api/audit-logs and the audit middleware. If nil,
	// listing returns 501 and no requests are audited.
	AuditRepo auditrepo.Repository

	// Runner executes on-demand automation runs. If nil, POST .../run returns 501.
	Runner automationhandler.Runner
	// Scorer backs document scoring. If nil, POST .../documents/score returns 501.
	Scorer clienthandler.DocumentScorer
	// Emitter publishes activity events; nil disables emission.
	Emitter activity.EventEmitter

	// DB and PolicyChecker feed the readiness probe; nil checks are skipped.
	DB            *sqlx.DB
	PolicyChecker healthhandler.PolicyChecker
}

// NewRouter builds the gin engine with all routes and middleware wired.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))

	health := healthhandler.NewHandler(deps.DB, deps.PolicyChecker)
	r.GET("/healthz", health.Live)
	r.GET("/readyz", health.Ready)

	auth := identityhandler.NewHandler(deps.Auth)
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", auth.Register)
		authGroup.POST("/login", auth.Login)
		authGroup.POST("/refresh", auth.Refresh)
		// Logout accepts a refresh token in the body or a bearer access token.
		authGroup.POST("/logout", middleware.OptionalAuth(deps.Tokens), auth.Logout)
	}

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.Tokens))
	api.Use(middleware.Audit(deps.AuditRepo))

	clients := clienthandler.NewHandler(deps.ClientRepo, deps.Scorer, deps.Emitter)
	api.GET("/clients", clients.List)
	api.POST("/clients", clients.Create)
	api.GET("/clients/:id", clients.Get)
	api.PUT("/clients/:id", clients.Update)
	api.DELETE("/clients/:id", clients.Delete)
	api.POST("/clients/:id/documents/score", clients.ScoreDocument)

	deals := dealhandler.NewHandler(deps.DealRepo, deps.ClientRepo, deps.Emitter)
	api.GET("/deals", deals.List)
	api.POST("/deals", deals.Create)
	api.GET("/deals/:id", deals.Get)
	api.PUT("/deals/:id", deals.Update)
	api.DELETE("/deals/:id", deals.Delete)

	automations := automationhandler.NewHandler(deps.AutomationRepo, deps.ClientRepo, deps.Runner, deps.Emitter)
	api.GET("/automations", automations.List)
	api.POST("/automations", automations.Create)
	api.GET("/automations/:id", automations.Get)
	api.PUT("/automations/:id", automations.Update)
	api.DELETE("/automations/:id", automations.Delete)
	api.POST("/automations/:id/run", automations.Run)
	api.GET("/automations/:id/runs", automations.ListRuns)
	api.GET("/runs", automations.ListAllRuns)

	if deps.DashboardRepo != nil {
		dashboard := dashboardhandler.NewHandler(deps.DashboardRepo)
		api.GET("/dashboard", dashboard.Overview)
	}

	audit := audithandler.NewHandler(deps.AuditRepo)
	api.GET("/audit-logs", audit.List)

	return r
}
