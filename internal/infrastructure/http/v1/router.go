// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"recaudo/internal/domain/auth"
	"recaudo/internal/domain/billing"
	"recaudo/internal/domain/clients"
	"recaudo/internal/domain/plan"
	"recaudo/internal/domain/reports"
	"recaudo/internal/domain/sector"
	"recaudo/internal/infrastructure/http/v1/handlers"
	"recaudo/internal/infrastructure/http/v1/middleware"
	"recaudo/internal/infrastructure/storage/postgres"
	"recaudo/internal/infrastructure/storage/postgres/billing_repo"
	"recaudo/internal/infrastructure/storage/postgres/catalog_repo"
	"recaudo/internal/infrastructure/storage/postgres/client_repo"
	"recaudo/internal/infrastructure/storage/postgres/report_repo"
	"recaudo/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (health checks).
	Pool *postgres.Pool

	// TxManager runs repository calls and transactions.
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Audit records entity mutations.
	Audit *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Repositories share the TxManager so service-level transactions
	// cover every statement they issue.
	debtRepo := billing_repo.NewDebtRepo(cfg.TxManager)
	paymentRepo := billing_repo.NewPaymentRepo(cfg.TxManager)
	ledgerRepo := billing_repo.NewLedgerRepo(cfg.TxManager)
	queriesRepo := billing_repo.NewQueriesRepo(cfg.TxManager)
	clientRepo := client_repo.NewClientRepo(cfg.TxManager)
	planRepo := catalog_repo.NewPlanRepo(cfg.TxManager)
	sectorRepo := catalog_repo.NewSectorRepo(cfg.TxManager)
	dashboardRepo := report_repo.NewDashboardRepo(cfg.TxManager)

	clientService := clients.NewService(clientRepo, queriesRepo)

	allocator := billing.NewAllocator(debtRepo, paymentRepo, ledgerRepo)
	reconciler := billing.NewReconciler(debtRepo, paymentRepo, clientRepo)
	locks := billing.NewClientLocks()
	debtService := billing.NewDebtService(
		debtRepo, ledgerRepo, allocator, reconciler,
		clientService, cfg.TxManager, locks, cfg.Audit,
	)
	paymentService := billing.NewPaymentService(
		paymentRepo, allocator, reconciler,
		clientService, cfg.TxManager, locks, cfg.Audit,
	)
	queryService := billing.NewQueryService(queriesRepo, clientService)

	planService := plan.NewService(planRepo, clientRepo)
	sectorService := sector.NewService(sectorRepo, clientRepo)
	reportService := reports.NewService(dashboardRepo)

	// API v1
	api := router.Group("/api/v1")
	{
		registerAuthRoutes(api, cfg)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerBillingRoutes(protected, debtService, paymentService, queryService)
		registerClientRoutes(protected, clientService)
		registerCatalogRoutes(protected, planService, sectorService)
		registerDashboardRoutes(protected, reportService)
		registerAuditRoutes(protected, cfg.Audit)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints. Login is
// public; user management and profile lookups require a token.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	handler := handlers.NewAuthHandler(cfg.AuthService)

	authGroup := rg.Group("/auth")
	authGroup.POST("/login", handler.Login)

	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
	protectedAuth.POST("/register", middleware.RequireRole(auth.RoleAdmin), handler.Register)
	protectedAuth.GET("/me", handler.Me)
	protectedAuth.GET("/providers", handler.Providers)
}

// registerBillingRoutes registers the debt and payment endpoints.
func registerBillingRoutes(
	rg *gin.RouterGroup,
	debts *billing.DebtService,
	payments *billing.PaymentService,
	queries *billing.QueryService,
) {
	debtHandler := handlers.NewDebtHandler(debts)
	debtGroup := rg.Group("/debts")
	{
		debtGroup.POST("", middleware.RequireRole(auth.RoleOperator), debtHandler.Create)
		debtGroup.PATCH("/:id", middleware.RequireRole(auth.RoleOperator), debtHandler.Update)
		debtGroup.GET("/client/:id", debtHandler.ListByClient)
		debtGroup.GET("/client/:id/outstanding", debtHandler.ListOutstanding)
	}

	paymentHandler := handlers.NewPaymentHandler(payments, queries)
	paymentGroup := rg.Group("/payments")
	{
		paymentGroup.POST("", middleware.RequireRole(auth.RoleOperator, auth.RoleProvider), paymentHandler.Create)
		paymentGroup.PUT("/:id/cancel", middleware.RequireRole(auth.RoleOperator), paymentHandler.Cancel)
		paymentGroup.GET("/client/:id", paymentHandler.ListByClient)
	}
}

// registerClientRoutes registers the subscriber catalog endpoints.
func registerClientRoutes(rg *gin.RouterGroup, svc *clients.Service) {
	handler := handlers.NewClientHandler(svc)
	group := rg.Group("/clients")
	{
		group.POST("", middleware.RequireRole(auth.RoleOperator), handler.Create)
		group.GET("", handler.List)
		group.GET("/search", handler.Search)
		group.GET("/stats", handler.Stats)
		group.GET("/:id", handler.Get)
		group.PATCH("/:id", middleware.RequireRole(auth.RoleOperator), handler.Update)
	}
}

// registerCatalogRoutes registers plan and sector endpoints. Mutations
// are admin-only; listings are open to every authenticated user.
func registerCatalogRoutes(rg *gin.RouterGroup, plans *plan.Service, sectors *sector.Service) {
	planHandler := handlers.NewPlanHandler(plans)
	planGroup := rg.Group("/plans")
	{
		planGroup.POST("", middleware.RequireRole(auth.RoleAdmin), planHandler.Create)
		planGroup.PATCH("/:id", middleware.RequireRole(auth.RoleAdmin), planHandler.Update)
		planGroup.GET("", planHandler.List)
	}

	sectorHandler := handlers.NewSectorHandler(sectors)
	sectorGroup := rg.Group("/sectors")
	{
		sectorGroup.POST("", middleware.RequireRole(auth.RoleAdmin), sectorHandler.Create)
		sectorGroup.PATCH("/:id", middleware.RequireRole(auth.RoleAdmin), sectorHandler.Update)
		sectorGroup.GET("", sectorHandler.List)
	}
}

// registerAuditRoutes registers the audit trail lookup. Admin-only.
func registerAuditRoutes(rg *gin.RouterGroup, audit *postgres.AuditService) {
	if audit == nil {
		return
	}
	handler := handlers.NewAuditHandler(audit)
	rg.GET("/audit/:type/:id", middleware.RequireRole(auth.RoleAdmin), handler.History)
}

// registerDashboardRoutes registers the dashboard aggregations.
func registerDashboardRoutes(rg *gin.RouterGroup, svc *reports.Service) {
	handler := handlers.NewDashboardHandler(svc)
	group := rg.Group("/dashboard")
	{
		group.GET("/latest-payments", handler.LatestPayments)
		group.GET("/monthly-collection", handler.MonthlyCollection)
		group.GET("/clients-status", handler.ClientsStatus)
		group.GET("/payments-chart", handler.PaymentsChart)
	}
}
