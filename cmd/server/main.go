package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorilla "github.com/gorilla/sessions"
	"github.com/willemschots/newsroom/assets"
	"github.com/willemschots/newsroom/internal"
	"github.com/willemschots/newsroom/internal/auth"
	authdb "github.com/willemschots/newsroom/internal/auth/db"
	"github.com/willemschots/newsroom/internal/db"
	"github.com/willemschots/newsroom/internal/email"
	"github.com/willemschots/newsroom/internal/email/mailgun"
	"github.com/willemschots/newsroom/internal/email/postmark"
	"github.com/willemschots/newsroom/internal/email/view"
	"github.com/willemschots/newsroom/internal/migrate"
	"github.com/willemschots/newsroom/internal/newsletter"
	"github.com/willemschots/newsroom/internal/subscriber"
	subscriberdb "github.com/willemschots/newsroom/internal/subscriber/db"
	"github.com/willemschots/newsroom/internal/web"
	"github.com/willemschots/newsroom/internal/web/sessions"
	"github.com/willemschots/newsroom/migrations"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stderr))
}

func run(ctx context.Context, w io.Writer) int {
	logger := slog.New(slog.NewTextHandler(w, nil))

	cfg, err := configFromEnv()
	if err != nil {
		logger.Error("failed to get config from environment", "error", err)
		return 1
	}

	// Reads and writes go through separate connection pools, they need
	// different SQLite settings.
	writeDB, err := db.OpenSQLite(cfg.db.file, true)
	if err != nil {
		logger.Error("failed to open database for writing", "error", err)
		return 1
	}
	defer writeDB.Close()

	readDB, err := db.OpenSQLite(cfg.db.file, false)
	if err != nil {
		logger.Error("failed to open database for reading", "error", err)
		return 1
	}
	defer readDB.Close()

	if cfg.db.migrate {
		migrated, err := migrate.RunFS(ctx, writeDB, migrations.FS, migrate.Metadata{
			AppVersion: internal.BuildRevision,
			Timestamp:  time.Now(),
		})
		if err != nil {
			logger.Error("failed to run migrations", "error", err)
			return 1
		}

		for _, m := range migrated {
			logger.Info("ran migration", "sequence", m.Sequence, "filename", m.Filename)
		}
	}

	pool, err := auth.NewHashPool(cfg.auth.hashWorkers)
	if err != nil {
		logger.Error("failed to create hash pool", "error", err)
		return 1
	}

	authSvc, err := auth.NewService(authdb.New(writeDB, readDB), pool)
	if err != nil {
		logger.Error("failed to create auth service", "error", err)
		return 1
	}

	sender, err := emailSender(cfg, logger)
	if err != nil {
		logger.Error("failed to create email sender", "error", err)
		return 1
	}

	emailSvc := email.NewService(view.NewFSRenderer(assets.EmailFS), sender, cfg.email.from)

	subStore := subscriberdb.New(writeDB, readDB)
	subSvc := subscriber.NewService(subStore, emailSvc, cfg.email.baseURL.String())
	newsSvc := newsletter.NewService(subStore, sender, cfg.email.from, logger)

	srv := &http.Server{
		Addr:         cfg.http.addr,
		ReadTimeout:  cfg.http.readTimeout,
		WriteTimeout: cfg.http.writeTimeout,
		IdleTimeout:  cfg.http.idleTimeout,
		Handler: web.NewServer(&web.ServerDeps{
			Logger:            logger,
			AuthService:       authSvc,
			SubscriberService: subSvc,
			NewsletterService: newsSvc,
			SessionStore:      sessions.NewStore(cookieStore(cfg)),
		}, cfg.http.server),
	}

	// We need to run two tasks concurrently:
	// - Listen and serving of the HTTP server.
	// - Waiting for a signal to stop the server.

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server",
			"addr", cfg.http.addr,
			"buildRevision", internal.BuildRevision,
			"buildRevisionTime", internal.BuildRevisionTime,
			"buildLocalModified", internal.BuildLocalModified,
		)
		// ListenAndServe always returns a non-nil error,
		// g will cancel gCtx when an error is returned, so
		// this will also stop the other goroutine.
		return srv.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("stopping http server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.http.shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutCtx)
	})

	err = g.Wait()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("http server stopped with error", "error", err)
		return 1
	}

	logger.Info("http server stopped successfully")

	return 0
}

func cookieStore(cfg config) *gorilla.CookieStore {
	keyPairs := make([][]byte, 0, len(cfg.http.cookieKeys))
	for _, key := range cfg.http.cookieKeys {
		keyPairs = append(keyPairs, key.SecretValue())
	}

	store := gorilla.NewCookieStore(keyPairs...)
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.http.server.SecureCookie
	store.Options.SameSite = http.SameSiteLaxMode

	return store
}

func emailSender(cfg config, logger *slog.Logger) (email.Sender, error) {
	client := &http.Client{
		Timeout: time.Second * 10,
	}

	switch cfg.email.driver {
	case "log":
		return email.NewLogSender(logger), nil
	case "postmark":
		return postmark.NewSender(client, cfg.email.postmark), nil
	case "mailgun":
		return mailgun.NewSender(client, cfg.email.mailgun), nil
	}

	return nil, fmt.Errorf("unknown email driver %q", cfg.email.driver)
}
