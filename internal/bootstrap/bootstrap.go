// Package bootstrap initializes infrastructure in order: logger first,
// then the optional history database, then the domain components.
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cinemareddy/postbot/internal/config"
	"github.com/cinemareddy/postbot/internal/database"
	"github.com/cinemareddy/postbot/internal/logger"
	"github.com/cinemareddy/postbot/internal/session"
	"github.com/cinemareddy/postbot/internal/storage"
	"github.com/cinemareddy/postbot/internal/tmdb"
	"github.com/cinemareddy/postbot/internal/usecase"
)

// App holds everything main needs to run the bot.
type App struct {
	Config   *config.Config
	Service  *usecase.Service
	Sessions *session.Store
	History  *storage.Repo

	db *sqlx.DB
}

// Run builds the application. Post history is enabled only when a
// database host is configured.
func Run(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	if err := logger.Init(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Profile: cfg.Logging.Profile,
		Dir:     cfg.Logging.Dir,
		File:    cfg.Logging.File,
	}); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	app := &App{Config: cfg}

	if strings.TrimSpace(cfg.Database.Host) != "" {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
		}
		if err := database.RunMigrations(cfg.Database); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
		app.db = db
		app.History = storage.NewRepo(db)
	}

	provider := tmdb.New(tmdb.Config{
		APIKey:       cfg.TMDB.APIKey,
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Timeout:      time.Duration(cfg.TMDB.TimeoutSeconds) * time.Second,
	})

	app.Sessions = session.NewStore(time.Duration(cfg.Session.MaxAgeSeconds) * time.Second)

	var recorder usecase.PostRecorder
	if app.History != nil {
		recorder = app.History
	}
	app.Service = usecase.New(provider, app.Sessions, recorder)

	return app, nil
}

// Close releases infrastructure held by the app.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
