package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/FooledKiwi/flighttrack/internal/config"
	"github.com/FooledKiwi/flighttrack/internal/handler"
	"github.com/FooledKiwi/flighttrack/internal/middleware"
	"github.com/FooledKiwi/flighttrack/internal/service"
	"github.com/FooledKiwi/flighttrack/internal/storage"
	"github.com/FooledKiwi/flighttrack/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
)

// DBError represents a database-related error.
type DBError struct {
	Op  string
	Err error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("db error during %q: %v", e.Op, e.Err)
}

func (e *DBError) Unwrap() error { return e.Err }

// App holds the application-level dependencies.
type App struct {
	DB     *pgxpool.Pool // nil unless DBDriver is postgres
	Router *gin.Engine

	sqlite *storage.SQLiteRoutesRepository
	cfg    *config.Config
}

// New opens the configured route store, wires the service and handlers, and
// builds the HTTP engine.
func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	var repo storage.RoutesRepository
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := openPostgres(cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		a.DB = pool
		repo = storage.NewRoutesRepository(pool)

	case config.DriverSQLite:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		sq, err := storage.OpenSQLite(ctx, cfg.DBDSN)
		if err != nil {
			return nil, &DBError{Op: "open_sqlite", Err: err}
		}
		log.Printf("sqlite store opened at %s", cfg.DBDSN)
		a.sqlite = sq
		repo = sq

	case config.DriverMemory:
		log.Println("using in-memory store; routes are lost on restart")
		repo = storage.NewMemoryRoutesRepository()

	default:
		return nil, &config.ConfigError{Field: "DB_DRIVER", Message: "unsupported driver " + cfg.DBDriver}
	}

	routes := service.NewRouteService(repo)
	a.Router = NewRouter(handler.New(routes), cfg)
	return a, nil
}

// openPostgres connects the pool and brings the schema up to date.
func openPostgres(dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, &DBError{Op: "parse_dsn", Err: err}
	}

	poolCfg.MaxConns = 20
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, &DBError{Op: "connect", Err: err}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &DBError{Op: "ping", Err: err}
	}

	log.Println("database connection pool established")

	if err := storage.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("app: run migrations: %w", err)
	}

	log.Println("database schema up to date")
	return pool, nil
}

// NewRouter builds the gin engine with every page and endpoint registered.
func NewRouter(h *handler.Handler, cfg *config.Config) *gin.Engine {
	var limiter *rate.Limiter
	if cfg.CreateRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.CreateRateLimit), cfg.CreateRateBurst)
	}
	limitCreate := middleware.RateLimit(limiter)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.Timeout(cfg.RequestTimeout))
	router.SetHTMLTemplate(web.MustTemplates())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// HTML pages.
	router.GET("/", h.Dashboard)
	router.GET("/nth/", h.NthRouteForm)
	router.POST("/nth/", h.NthRoute)
	router.GET("/create/", h.CreateRouteForm)
	router.POST("/create/", limitCreate, h.CreateRoute)
	router.GET("/longest/", h.LongestRoute)
	router.GET("/shortest/", h.ShortestRouteForm)
	router.POST("/shortest/", h.ShortestRoute)
	router.GET("/route/", h.RouteList)

	// JSON listing; non-GET methods get a structured 405 from the handler.
	router.Any("/routes", h.ListRoutesJSON)

	api := router.Group("/api/v1")
	{
		api.GET("/routes", h.ListRoutes)
		api.POST("/routes", limitCreate, h.CreateRouteJSON)
		api.GET("/routes/nth", h.GetNthRoute)
		api.GET("/routes/longest", h.GetLongestRoute)
		api.GET("/routes/shortest", h.GetShortestRoute)
	}

	return router
}

// Shutdown closes whichever store New opened.
func (a *App) Shutdown() {
	if a.DB != nil {
		a.DB.Close()
		log.Println("database connection pool closed")
	}
	if a.sqlite != nil {
		if err := a.sqlite.Close(); err != nil {
			log.Printf("app: close sqlite: %v", err)
			return
		}
		log.Println("sqlite store closed")
	}
}
