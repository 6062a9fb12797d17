// Package web assembles the HTTP service: the Fiber app, the shared
// middleware and the route handlers.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/config"
	"github.com/accessd/accessd/internal/rbac"
	audithandler "github.com/accessd/accessd/internal/web/handler/audit"
	"github.com/accessd/accessd/internal/web/handler/me"
	"github.com/accessd/accessd/internal/web/handler/permissions"
	"github.com/accessd/accessd/internal/web/handler/roles"
	"github.com/accessd/accessd/internal/web/handler/users"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	rbacService  *rbac.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: fail the health check first, so
	// the LB removes this instance from its active targets before we stop.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 for %d seconds to let the LB drain this instance",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	appName := cfg.Title
	if appName == "" {
		appName = "accessd"
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        appName,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	app.Use(RequestID())

	rbacService := rbac.NewService(db)

	service := &Service{
		cfg:          cfg,
		App:          app,
		fastShutDown: cfg.Webserver.FastShutdown,
		db:           db,
		rbacService:  rbacService,
	}
	service.alive.Store(true)

	app.Get("/healthz", service.healthz)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// init handlers (they register their own routes with permission checks)
	roles.Handler.Init(app, cfg, db, rbacService)
	permissions.Handler.Init(app, cfg, db, rbacService)
	users.Handler.Init(app, cfg, db, rbacService)
	me.Handler.Init(app, cfg, db, rbacService)
	audithandler.Handler.Init(app, cfg, db, rbacService)

	return service
}

func (s *Service) healthz(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
