package server

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	mwecho "github.com/labstack/echo/v4/middleware"
	mwsvc "github.com/watermartph/watermart/internal/middleware"

	"github.com/watermartph/watermart/internal/analytics"
	"github.com/watermartph/watermart/internal/appstate"
	"github.com/watermartph/watermart/internal/backup"
	"github.com/watermartph/watermart/internal/config"
	"github.com/watermartph/watermart/internal/customer"
	"github.com/watermartph/watermart/internal/demodata"
	"github.com/watermartph/watermart/internal/order"
	"github.com/watermartph/watermart/internal/sqlite"

	apihttp "github.com/watermartph/watermart/internal/http/api"
)

type Server struct {
	Echo *echo.Echo
	HTTP *http.Server
	DB   *sqlx.DB
	Hook *appstate.Hook
}

func Build(cfg *config.Config) (*Server, error) {
	//
	// Database
	//
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		log.Printf("Creating database '%s' (from %s setting)", cfg.DBPath, cfg.DBPathSource)
	} else {
		log.Printf("Opening database '%s' (from %s setting)", cfg.DBPath, cfg.DBPathSource)
	}
	db, err := sqlx.Connect("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// WAL mode is only required once after creating the database, but
	// doesn't hurt to set it each time
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return nil, err
	}

	if err := sqlite.RunMigrations(db.DB); err != nil {
		return nil, err
	}

	//
	// Domain services
	//
	orderSvc := order.NewService(db)
	customerSvc := customer.NewService(db, orderSvc.Repo())
	analyticsSvc := analytics.NewService(customerSvc, orderSvc)
	backupSvc := backup.NewService(db, cfg.DBPath)

	// Seed sample data on an empty database so first run isn't blank
	if !cfg.SkipSeed {
		n, err := demodata.Seed(context.Background(), customerSvc, orderSvc)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			log.Printf("Seeded %d sample customers", n)
		}
	}

	//
	// Application state hook (initial load + periodic refresh)
	//
	hook := appstate.NewHook(customerSvc, orderSvc)
	hook.Start(cfg.RefreshInterval)

	//
	// Handlers
	//
	apiHandler := apihttp.NewHandler(hook, customerSvc, orderSvc, analyticsSvc, backupSvc)

	//
	// Echo
	//
	e := echo.New()
	e.HideBanner = true

	// Health endpoints
	e.GET("/livez", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	e.GET("/readyz", func(c echo.Context) error {
		if err := db.Ping(); err != nil {
			return c.String(http.StatusServiceUnavailable, "DB not ready")
		}
		return c.String(http.StatusOK, "Ready")
	})

	// Middleware
	e.Use(mwecho.Logger())
	e.Use(mwecho.Recover())

	// API
	apiGroup := e.Group("/api/v1")
	apiGroup.Use(mwsvc.APIKeyAuth(cfg.APIKey))
	apihttp.RegisterRoutes(apiGroup, apiHandler)

	//
	// HTTP server
	//
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		Echo: e,
		HTTP: srv,
		DB:   db,
		Hook: hook,
	}, nil
}
