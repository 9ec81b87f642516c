package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/Skotchmaster/storefront/docs"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/mailer"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

// @title Storefront API
// @version 1.0
// @description Catalog, accounts and admin management for the storefront.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg := config.Load()
	cfg.MustValidate()

	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(log)

	ctx := context.Background()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		fatal(log, "db_init_failed", err)
	}
	if err := db.Migrate(gdb); err != nil {
		fatal(log, "db_migrate_failed", err)
	}

	tokenSvc, err := tokens.NewService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		fatal(log, "token_service_failed", err)
	}

	images, err := storage.NewDiskStore(cfg.UploadDir, cfg.UploadPrefix)
	if err != nil {
		fatal(log, "upload_dir_failed", err)
	}

	pub := events.New(cfg.KafkaBrokers)
	mail := mailer.New(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}, log)

	store := repo.New(gdb)
	catalog := &service.CatalogService{Repo: store, Images: images, Events: pub}
	if idx := openSearch(ctx, log, cfg); idx != nil {
		catalog.Index = idx
		catalog.Search = idx
	}

	auth := &service.AuthService{Repo: store, Tokens: tokenSvc, Mailer: mail, Events: pub}

	e := httpserver.New(log)
	httpserver.Register(e, &httpserver.Deps{
		Auth:         &httpserver.AuthHTTP{Svc: auth},
		Catalog:      &httpserver.CatalogHTTP{Svc: catalog},
		Admin:        &httpserver.AdminHTTP{Svc: catalog},
		Guard:        authmw.NewGuard(tokenSvc),
		Ready:        func(ctx context.Context) error { return db.Ping(ctx, gdb) },
		UploadPrefix: cfg.UploadPrefix,
		UploadDir:    cfg.UploadDir,
	})

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info("http_server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	go func() {
		<-quit
		log.Warn("force_exit")
		os.Exit(1)
	}()

	log.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		log.Error("db_close_error", "error", err)
	}
	if err := pub.Close(); err != nil {
		log.Error("kafka_close_error", "error", err)
	}

	log.Info("shutdown_complete")
}

// openSearch returns nil when search is not configured or the cluster is
// unreachable; the catalog then answers search requests with 503.
func openSearch(ctx context.Context, log *slog.Logger, cfg *config.Config) *search.Index {
	if cfg.ESURL == "" {
		log.Info("search_disabled", "reason", "ES_URL not set")
		return nil
	}

	client, err := search.NewClient(search.Config{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	})
	if err != nil {
		log.Warn("search_disabled", "error", err)
		return nil
	}

	idx := search.New(client, cfg.ESIndex)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := idx.Ping(pingCtx); err != nil {
		log.Warn("search_disabled", "error", err)
		return nil
	}
	if err := idx.EnsureIndex(pingCtx); err != nil {
		log.Warn("search_index_setup_failed", "index", cfg.ESIndex, "error", err)
		return nil
	}
	return idx
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
