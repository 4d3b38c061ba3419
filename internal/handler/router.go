package handler

import (
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/middleware"
	"github.com/thidaswick/WorqHub/internal/repository"
	"github.com/thidaswick/WorqHub/pkg/config"
	"github.com/thidaswick/WorqHub/pkg/logger"
	"github.com/thidaswick/WorqHub/prometheus"
)

// Deps are the collaborators the HTTP layer is built from
type Deps struct {
	Config *config.Config
	Log    *zap.Logger
	Tokens middleware.TokenVerifier
	Auth   Authenticator
	Repos  *repository.Repositories
	DB     Pinger
}

// NewServer builds the echo instance with global middleware and every route
func NewServer(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Config.IsProduction())
	e.Validator = NewValidator()
	e.IPExtractor = ipExtractor(d.Config.Server, d.Log)

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: corsOrigins(d.Config.Server.CORSOrigin),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(d.Log))
	e.Use(prometheus.MetricsMiddleware())

	RegisterRoutes(e, d)
	return e
}

// RegisterRoutes mounts the public, auth, tenant admin and tenant-scoped routes
func RegisterRoutes(e *echo.Echo, d Deps) {
	// Public routes - no authentication required
	e.GET("/health", NewHealthHandler(d.DB).HealthCheck)
	if d.Config.Metrics.Enabled {
		e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))
	}

	api := e.Group("/api/v1")
	authed := middleware.AuthMiddleware(d.Tokens)
	tenantScoped := []echo.MiddlewareFunc{authed, middleware.RequireTenantContext}

	authHandler := NewAuthHandler(d.Auth)
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.GET("/me", authHandler.Me, tenantScoped...)

	// Tenant administration - Admin only, not filtered by the caller's tenant
	tenantHandler := NewTenantHandler(d.Repos.Tenants)
	tenants := api.Group("/tenants", authed, middleware.RequirePermission(access.PermTenantsAdmin))
	tenants.GET("", tenantHandler.ListTenants)
	tenants.POST("", tenantHandler.CreateTenant)
	tenants.GET("/:id", tenantHandler.GetTenant)
	tenants.PUT("/:id", tenantHandler.UpdateTenant)

	// Tenant-scoped record families
	NewWorkOrderHandler(d.Repos.WorkOrders, d.Repos.Customers, d.Repos.Users).mount(api.Group("/work-orders", tenantScoped...), access.PermRecordsWrite)
	NewCustomerHandler(d.Repos.Customers).mount(api.Group("/customers", tenantScoped...), access.PermRecordsWrite)
	NewInventoryHandler(d.Repos.Inventory).mount(api.Group("/inventory", tenantScoped...), access.PermRecordsWrite)
	NewInvoiceHandler(d.Repos.Invoices, d.Repos.Customers, d.Repos.WorkOrders).mount(api.Group("/billing/invoices", tenantScoped...), access.PermBillingWrite)

	reports := NewReportHandler(d.Repos.WorkOrders, d.Repos.Customers, d.Repos.Inventory, d.Repos.Invoices)
	api.Group("/reports", tenantScoped...).GET("/dashboard", reports.GetDashboard,
		middleware.RequirePermission(access.PermReportsView))
}

// ipExtractor resolves the client IP used by the login throttle. Forwarding
// headers are only believed when the connection comes from a trusted proxy.
func ipExtractor(cfg config.ServerConfig, log *zap.Logger) echo.IPExtractor {
	ranges, err := cfg.ProxyRanges()
	if err != nil {
		log.Warn("Ignoring invalid trusted proxies", zap.Error(err))
		ranges = nil
	}
	if len(ranges) == 0 {
		return echo.ExtractIPDirect()
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, r := range ranges {
		options = append(options, echo.TrustIPRange(r))
	}
	return echo.ExtractIPFromXFFHeader(options...)
}

func corsOrigins(raw string) []string {
	origins := []string{}
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
