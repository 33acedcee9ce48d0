package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	_ "github.com/thorsignia/visitor-system/docs"
	"github.com/thorsignia/visitor-system/internal/api/handler"
	"github.com/thorsignia/visitor-system/internal/api/middleware"
	"github.com/thorsignia/visitor-system/internal/core/ports"
	"github.com/thorsignia/visitor-system/internal/infrastructure/http/handlers"
	"github.com/thorsignia/visitor-system/internal/pkg/config"
)

const bodyLimit = "25M"

// Dependencies are the services and connections the router wires into handlers.
// Mongo is nil when the audit trail is disabled.
type Dependencies struct {
	CheckIns ports.CheckInService
	Visitors ports.VisitorService
	Visits   ports.VisitService
	Reports  ports.ReportService
	Admins   ports.AdminService
	Media    ports.MediaStore

	DB    *gorm.DB
	Redis *redis.Client
	Mongo *mongo.Database

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	renderer, err := handler.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	e.Renderer = renderer

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddleware("visitors"))

	// --- Handlers ---
	links := handler.NewLinker(cfg.PublicBaseURL, deps.Media)
	checkIn := handler.NewCheckInHandler(deps.CheckIns, links)
	visitors := handler.NewVisitorHandler(deps.Visitors, links)
	visits := handler.NewVisitHandler(deps.Visits, links)
	reports := handler.NewReportHandler(deps.Reports, links)
	admin := handler.NewAdminHandler(deps.Admins, deps.Reports, cfg.Session.CookieSecure, deps.Log)

	// --- Operational endpoints (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.DB, deps.Redis, deps.Mongo)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static(cfg.Media.URL, cfg.Media.Root)

	// --- REST API ---
	api := e.Group("/api")

	api.POST("/visitors/check_in", checkIn.CheckIn)
	api.POST("/visitors/check_out", checkIn.CheckOut)
	api.GET("/visitors/active", checkIn.Active)
	api.GET("/visitors/history", reports.History)
	api.GET("/visitors/export", reports.Export)
	api.GET("/visitors/search", visitors.Search)

	api.GET("/visitors", visitors.List)
	api.POST("/visitors", visitors.Create)
	api.GET("/visitors/:id", visitors.Get)
	api.PUT("/visitors/:id", visitors.Update)
	api.DELETE("/visitors/:id", visitors.Delete)

	api.GET("/visits", visits.List)
	api.POST("/visits", visits.Create)
	api.GET("/visits/:id", visits.Get)
	api.PUT("/visits/:id", visits.Update)
	api.DELETE("/visits/:id", visits.Delete)
	api.POST("/visits/:id/photos", checkIn.AttachPhoto)
	api.POST("/visits/:id/signature", checkIn.AttachSignature)

	// --- Admin pages ---
	e.GET(handler.AdminLoginPath, admin.LoginPage)
	e.POST(handler.AdminLoginPath, admin.Login)
	e.GET(handler.AdminDashboardPath, admin.Dashboard,
		middleware.AdminSession(deps.Admins, handler.SessionCookieName, handler.AdminLoginPath))
	e.POST("/admin-logout", admin.Logout)
	e.GET("/admin-logout", admin.Logout)

	return e, nil
}
