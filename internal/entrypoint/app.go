package entrypoint

import (
	"fmt"
	"log"

	"github.com/mrlokans/lending/internal/audit"
	"github.com/mrlokans/lending/internal/auth"
	"github.com/mrlokans/lending/internal/borrow"
	"github.com/mrlokans/lending/internal/config"
	"github.com/mrlokans/lending/internal/database"
	dbaudit "github.com/mrlokans/lending/internal/database/audit"
	"github.com/mrlokans/lending/internal/database/borrows"
	"github.com/mrlokans/lending/internal/database/catalog"
	"github.com/mrlokans/lending/internal/database/users"
	"github.com/mrlokans/lending/internal/reports"
)

// App holds the database and the services built on top of it. The server and the
// command line tools share it.
type App struct {
	Config  *config.Config
	DB      *database.Database
	Catalog *catalog.Repository
	Users   *users.Repository
	Loans   *borrows.Repository
	Audit   *audit.Service
	Auth    *auth.Service
	Borrow  *borrow.Service
	Reports *reports.Service
}

// Open connects to the configured database and wires the lending services.
func Open(cfg *config.Config, opts ...borrow.Option) (*App, error) {
	db, err := database.NewDatabaseWithOptions(cfg.Database.Path, database.Options{
		LogLevel: database.ParseLogLevel(cfg.Database.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &App{
		Config:  cfg,
		DB:      db,
		Catalog: catalog.NewRepository(db.DB),
		Users:   users.NewRepository(db.DB),
		Loans:   borrows.NewRepository(db.DB),
	}
	app.Audit = audit.NewService(dbaudit.NewRepository(db.DB))
	app.Auth = auth.NewService(app.Users, cfg.Auth)

	borrowOpts := append([]borrow.Option{
		borrow.WithDurationBounds(cfg.Borrow.MinDays, cfg.Borrow.MaxDays),
		borrow.WithRecorder(app.Audit),
	}, opts...)
	app.Borrow = borrow.NewService(db, app.Catalog, app.Users, app.Loans, borrowOpts...)
	app.Reports = reports.NewService(app.Catalog, app.Users, app.Loans)

	return app, nil
}

// Close flushes pending audit writes and closes the database.
func (a *App) Close() error {
	a.Audit.Wait()
	if err := a.DB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
		return err
	}
	return nil
}
