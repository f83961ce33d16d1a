package v1

import (
	"github.com/gin-gonic/gin"

	"partsledger/internal/domain/auth"
	"partsledger/internal/domain/catalogs/company"
	"partsledger/internal/domain/catalogs/equipment"
	"partsledger/internal/domain/catalogs/sparepart"
	"partsledger/internal/domain/catalogs/unit"
	"partsledger/internal/domain/documents/invoice"
	"partsledger/internal/domain/registers/writeoff"
	"partsledger/internal/domain/reportmonth"
	"partsledger/internal/infrastructure/http/v1/handlers"
	"partsledger/internal/infrastructure/http/v1/middleware"
	"partsledger/internal/infrastructure/ingest"
	"partsledger/internal/infrastructure/storage/blob"
	"partsledger/internal/infrastructure/storage/postgres"
	"partsledger/internal/infrastructure/storage/postgres/catalog_repo"
	"partsledger/internal/infrastructure/storage/postgres/document_repo"
	"partsledger/internal/infrastructure/storage/postgres/period_repo"
	"partsledger/internal/infrastructure/storage/postgres/register_repo"
	"partsledger/pkg/logger"
	"partsledger/pkg/numerator"
)

// RouterConfig holds everything the HTTP layer needs.
type RouterConfig struct {
	// Pool is the database connection pool (also used for health checks)
	Pool *postgres.Pool

	// TxManager coordinates transactions across repositories
	TxManager *postgres.TxManager

	// Blobs stores uploaded invoice files
	Blobs *blob.Store

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// MonthPolicy controls report month creation rules
	MonthPolicy reportmonth.Policy
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
	healthHandler := handlers.NewHealthHandler(cfg.Pool.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerCatalogRoutes(protected, cfg)
		registerPeriodRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg)
		registerRegisterRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	public := rg.Group("/auth")
	public.POST("/login", authHandler.Login)

	secured := rg.Group("/auth")
	secured.Use(middleware.Auth(cfg.JWTValidator))
	secured.POST("/password", authHandler.ChangePassword)
	secured.POST("/users", middleware.RequireAdmin(), authHandler.Register)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()
	num := numerator.New(cfg.Pool.Pool)

	unitRepo := catalog_repo.NewUnitRepo(cfg.TxManager)
	companyRepo := catalog_repo.NewCompanyRepo(cfg.TxManager)

	// --- UNITS ---
	{
		service := unit.NewService(unitRepo, cfg.TxManager, num)
		handler := handlers.NewUnitHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/units"), handler)
	}

	// --- COMPANIES ---
	{
		service := company.NewService(companyRepo, cfg.TxManager, num)
		handler := handlers.NewCompanyHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/companies"), handler)
	}

	// --- EQUIPMENT ---
	{
		repo := catalog_repo.NewEquipmentRepo(cfg.TxManager)
		service := equipment.NewService(repo, companyRepo, cfg.TxManager, num)
		handler := handlers.NewEquipmentHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/equipment"), handler)
	}

	// --- SPARE PARTS ---
	{
		repo := catalog_repo.NewSparePartRepo(cfg.TxManager)
		service := sparepart.NewService(repo, unitRepo, companyRepo, cfg.TxManager, num)
		handler := handlers.NewSparePartHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/spare-parts"), handler)
	}
}

// registerPeriodRoutes registers report month endpoints.
func registerPeriodRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	repo := period_repo.NewReportMonthRepo(cfg.TxManager)
	service := reportmonth.NewService(repo, cfg.TxManager, cfg.MonthPolicy)
	handler := handlers.NewReportMonthHandler(baseHandler, service)

	months := rg.Group("/report-months")
	months.GET("", handler.List)
	months.POST("", handler.Create)
	months.GET("/:id", handler.Get)
	months.PUT("/:id", handler.Update)
	months.DELETE("/:id", handler.Delete)
	months.POST("/:id/close", handler.Close)
	months.POST("/:id/reopen", handler.Reopen)
}

// registerDocumentRoutes registers invoice endpoints, including version
// upload and retrieval.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	monthRepo := period_repo.NewReportMonthRepo(cfg.TxManager)
	invoiceRepo := document_repo.NewInvoiceRepo(cfg.TxManager)
	service := invoice.NewService(invoiceRepo, monthRepo, cfg.TxManager)

	num := numerator.New(cfg.Pool.Pool)
	unitRepo := catalog_repo.NewUnitRepo(cfg.TxManager)
	unitService := unit.NewService(unitRepo, cfg.TxManager, num)
	partRepo := catalog_repo.NewSparePartRepo(cfg.TxManager)
	resolver := ingest.NewResolver(partRepo, unitService)

	handler := handlers.NewInvoiceHandler(baseHandler, service, cfg.Blobs, resolver)

	invoices := rg.Group("/invoices")
	invoices.GET("", handler.List)
	invoices.POST("", handler.Create)
	invoices.GET("/:id", handler.Get)
	invoices.PUT("/:id", handler.Update)
	invoices.DELETE("/:id", handler.Delete)
	invoices.GET("/:id/versions", handler.ListVersions)
	invoices.POST("/:id/versions", handler.UploadVersion)
	invoices.GET("/:id/items", handler.ActiveItems)
	invoices.GET("/:id/versions/:versionId/content", handler.VersionContent)
	invoices.GET("/:id/versions/:versionId/file", handler.DownloadVersion)
	invoices.DELETE("/:id/versions/:versionId", handler.DeleteVersion)
}

// registerRegisterRoutes registers write-off fact endpoints.
func registerRegisterRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	monthRepo := period_repo.NewReportMonthRepo(cfg.TxManager)
	repo := register_repo.NewWriteOffRepo(cfg.TxManager)
	service := writeoff.NewService(repo, monthRepo, cfg.TxManager)
	handler := handlers.NewWriteOffHandler(baseHandler, service)

	writeOffs := rg.Group("/write-offs")
	writeOffs.GET("", handler.List)
	writeOffs.POST("", handler.Create)
	writeOffs.GET("/:id", handler.Get)
	writeOffs.POST("/:id/cancel", handler.Cancel)
	writeOffs.POST("/:id/clone", handler.Clone)
}
