// Package daemon wires the persistence layer and the web service together.
package daemon

import (
	"fmt"

	"github.com/glebarez/sqlite"
	sessionmemory "github.com/gofiber/storage/memory"
	sessionmysql "github.com/gofiber/storage/mysql"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/taskery/taskery/internal/config"
	"github.com/taskery/taskery/internal/db/dsn"
	"github.com/taskery/taskery/internal/db/models"
	"github.com/taskery/taskery/internal/db/sequence"
	"github.com/taskery/taskery/internal/web"
	"github.com/taskery/taskery/internal/web/session"
)

const engineSQLite = "sqlite"

// Daemon represents the main application daemon.
type Daemon struct {
	webService *web.Service
	cfg        *config.Config
}

// Start runs the web service and blocks until a shutdown signal has drained it.
func (d *Daemon) Start() error {
	go func() {
		if err := d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port)); err != nil {
			log.Fatal().Err(err).Msg("web service stopped unexpectedly")
		}
	}()

	d.webService.WaitShutdown()

	return nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	// sqlite is meant for dev and single-node setups; mysql is the default
	dbDriver := gormmysql.Open(dsn.Create(cfg))
	if cfg.DB.GormEngine == engineSQLite {
		dbDriver = sqlite.Open(cfg.DB.SQLitePath)
	}

	db, err := gorm.Open(dbDriver, &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.TaskGroup{},
		&models.Membership{},
		&models.Task{},
		&sequence.Sequence{},
	); err != nil {
		panic("failed to migrate database")
	}

	seed(cfg, db)

	// Initialize the session token storage. The memory backend only fits the
	// sqlite single-node setup; mysql deployments share tokens through the db.
	if cfg.DB.GormEngine == engineSQLite {
		session.Init(sessionmemory.New())
	} else {
		session.Init(sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		}))
	}

	return &Daemon{
		webService: web.New(cfg, db),
		cfg:        cfg,
	}
}
