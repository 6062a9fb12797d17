// Package daemon wires the configured database engine, the schema, the seed
// data and the web service into a running process.
package daemon

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/storage"
	sessionmemory "github.com/gofiber/storage/memory/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/config"
	"github.com/accessd/accessd/internal/db/dsn"
	"github.com/accessd/accessd/internal/db/models"
	"github.com/accessd/accessd/internal/web"
	"github.com/accessd/accessd/internal/web/session"
)

// Daemon represents the main application daemon.
// The web service is held by pointer: the shutdown path and the registered
// handlers must observe the same liveness state.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// WaitShutdown blocks until the web service has shut down gracefully.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserRole{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	if err = seed(cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
		return nil
	}

	session.Init(sessionStorage(cfg), cfg.Webserver.Domain, cfg.Webserver.Session.ExpiryTime)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}
}

func openDialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DB.Engine {
	case config.EnginePostgres:
		return gormpostgres.Open(dsn.Create(cfg))
	case config.EngineSQLite:
		return sqlite.Open(dsn.Create(cfg))
	default:
		return gormmysql.Open(dsn.Create(cfg))
	}
}

// sessionStorage picks the session backend matching the database engine.
// SQLite deployments are single-node, so the in-memory store suffices there.
func sessionStorage(cfg *config.Config) storage.Storage {
	switch cfg.DB.Engine {
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			Username: cfg.DB.User,
			Password: cfg.DB.Password,
			Database: cfg.DB.Name,
			Table:    "sessions",
		})
	default:
		return sessionmemory.New()
	}
}
