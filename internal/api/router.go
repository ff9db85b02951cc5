package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/bwils5/cloudbooks-manager/docs"
	"github.com/bwils5/cloudbooks-manager/internal/api/handler"
	"github.com/bwils5/cloudbooks-manager/internal/api/middleware"
	"github.com/bwils5/cloudbooks-manager/internal/core/ports"
	"github.com/bwils5/cloudbooks-manager/internal/infrastructure/storage"
)

// Deps carries the constructed services and infrastructure handles the
// router wires into handlers. Everything is injected explicitly; there is no
// ambient global state.
type Deps struct {
	Auth     ports.AuthService
	Books    ports.BookService
	Activity ports.ActivityService
	Recorder ports.ActivityRecorder
	Files    storage.FileStore

	// Mongo and Redis are only used by the readiness probe; either may be
	// nil (e.g. in tests) and is then skipped.
	Mongo *mongo.Database
	Redis *redis.Client

	// Registry scopes the request metrics. Nil means the process-wide
	// default registry; tests pass their own to avoid duplicate
	// registration across router instances.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	registerer := prometheus.Registerer(prometheus.DefaultRegisterer)
	gatherer := prometheus.Gatherer(prometheus.DefaultGatherer)
	if d.Registry != nil {
		registerer = d.Registry
		gatherer = d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "cloudbooks",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	bookHandler := handler.NewBookHandler(d.Books, d.Recorder)
	activityHandler := handler.NewActivityHandler(d.Activity)
	uploadHandler := handler.NewUploadHandler(d.Files, d.Recorder)

	authn := middleware.Auth(d.Auth)
	adminOnly := middleware.RequireRole("admin")

	// --- Auth routes (no credential required) ---
	e.POST("/register", authHandler.Register)
	e.POST("/token", authHandler.Token)

	// --- Catalog ---
	books := e.Group("/books", authn)
	books.GET("", bookHandler.List)
	books.GET("/:id", bookHandler.Get)
	books.POST("", bookHandler.Create, adminOnly)
	books.PUT("/:id", bookHandler.Update, adminOnly)
	books.DELETE("/:id", bookHandler.Delete, adminOnly)

	// --- Audit trail ---
	e.GET("/activity-log", activityHandler.List, authn, adminOnly)

	// --- Uploads ---
	e.POST("/upload", uploadHandler.Upload, authn)
	e.GET("/uploads/:filename", uploadHandler.Download, authn)
	e.DELETE("/uploads/:filename", uploadHandler.Delete, authn, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Observability / docs ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer,
	}))
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
