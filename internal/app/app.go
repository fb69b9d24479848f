package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/database"
	"github.com/vancomm/minesweeper/internal/middleware"
	"github.com/vancomm/minesweeper/internal/publish"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	log    *logrus.Logger
	cfg    *config.Config
	router *http.ServeMux
	db     *pgxpool.Pool
	pub    *publish.Client
}

func New(log *logrus.Logger, cfg *config.Config) *App {
	return &App{
		log:    log,
		cfg:    cfg,
		router: http.NewServeMux(),
	}
}

// Start migrates the database, connects to it and to NATS when configured
// and serves until ctx is done.
func (a *App) Start(ctx context.Context) error {
	db, migrator, err := database.ConnectAndMigrate(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	defer db.Close()
	a.db = db
	if version, dirty, err := migrator.Version(); err == nil {
		a.log.WithFields(logrus.Fields{
			"version": version,
			"dirty":   dirty,
		}).Info("database migrated")
	}

	if a.cfg.NatsURL != "" {
		pub, err := publish.Connect(a.cfg.NatsURL, a.log)
		if err != nil {
			return err
		}
		defer pub.Close()
		a.pub = pub
		a.log.WithField("url", a.cfg.NatsURL).Info("publishing game notifications")
	}

	a.loadRoutes()

	server := &http.Server{
		Addr:    a.cfg.Addr(),
		Handler: a.Handler(),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	a.log.WithField("addr", server.Addr).Info("server listening")

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Handler is the router behind the middleware chain. Logging runs
// outermost so the other middleware can use the request logger.
func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Logging(a.log),
		middleware.Cors(),
		middleware.Auth(a.log, a.cfg.Cookies),
	)
}
