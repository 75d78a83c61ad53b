package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/list-engine/internal/config"
	"github.com/ignite/list-engine/internal/fields"
	"github.com/ignite/list-engine/internal/lists"
	"github.com/ignite/list-engine/internal/mailer"
	"github.com/ignite/list-engine/internal/notify"
	"github.com/ignite/list-engine/internal/pkg/logger"
	"github.com/ignite/list-engine/internal/subscribers"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func main() {
	logger.SetLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	err = db.PingContext(pingCtx)
	pingCancel()
	if err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	fieldStore := fields.NewStore(db)
	listStore := lists.NewStore(db)
	subStore := subscribers.NewStore(db)

	// The settings cache is optional; without Redis every notification reads
	// settings straight from Postgres.
	var settings notify.SettingsReader = listStore
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		settings = lists.NewSettingsCache(listStore, rdb)
		logger.Info("settings cache enabled", "addr", cfg.Redis.Addr)
	}

	var sink mailer.Sink = mailer.LogSink{}
	if cfg.SES.AccessKey != "" {
		sesSender, err := mailer.NewSESSender(ctx, cfg.SES)
		if err != nil {
			logger.Error("failed to initialize SES sender", "error", err)
			os.Exit(1)
		}
		sink = sesSender
		logger.Info("SES mail sink enabled", "region", cfg.SES.Region)
	} else {
		logger.Info("no SES credentials, mail goes to the log")
	}

	resolver, err := notify.NewResolver(notify.NewFormTemplateStore(db))
	if err != nil {
		logger.Error("failed to load notification templates", "error", err)
		os.Exit(1)
	}
	dispatcher := notify.NewDispatcher(fieldStore, settings, resolver, notify.NewRenderer(), sink)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		fields.NewAPI(fieldStore).RegisterRoutes(r)
		notify.NewAPI(listStore, subStore, dispatcher).RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
