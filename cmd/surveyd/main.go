package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fusion5-labs/discovery-survey/internal/admin"
	api "github.com/fusion5-labs/discovery-survey/internal/api/http"
	"github.com/fusion5-labs/discovery-survey/internal/catalog"
	"github.com/fusion5-labs/discovery-survey/internal/config"
	"github.com/fusion5-labs/discovery-survey/internal/db"
	"github.com/fusion5-labs/discovery-survey/internal/store/local"
	"github.com/fusion5-labs/discovery-survey/internal/store/remote"
)

func main() {
	cfg := config.FromEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cat := catalog.Default()

	store, err := local.Open(ctx, cfg.LocalStoreDSN, logger)
	if err != nil {
		logger.Fatal("local store open failed", zap.Error(err))
	}
	defer store.Close()
	store.OnWarning = func(msg string) {
		logger.Warn("local store warning", zap.String("msg", msg))
	}

	sess := api.NewSession(cat, store)
	writer := remote.NewClient(remote.Config{
		BaseURL: cfg.SupabaseURL,
		AnonKey: cfg.SupabaseAnonKey,
	})

	// Privileged read path: direct SQL when a database URL is configured,
	// REST with the service-role key otherwise. Decided here, once.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		schemaDB, err := db.Open(ctx, db.DriverPostgres, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database open failed", zap.Error(err))
		}
		schemaDB.Close()
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database pool failed", zap.Error(err))
		}
		defer pool.Close()
	}
	reader := admin.NewService(admin.Config{
		SupabaseURL:    cfg.SupabaseURL,
		ServiceRoleKey: cfg.ServiceRoleKey,
	}, pool, logger)

	sessions := admin.NewSessionManager(cfg.SessionSecret)
	creds := admin.Credentials{Password: cfg.AdminPassword, PasswordHash: cfg.AdminPassHash}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/api/catalog", api.CatalogHandler(cat))

	r.Route("/api/response", func(rr chi.Router) {
		rr.Get("/", api.GetResponseHandler(sess))
		rr.Post("/", api.StartResponseHandler(sess))
		rr.Delete("/", api.ClearResponseHandler(sess))
		rr.Put("/answer", api.RecordAnswerHandler(sess))
		rr.Put("/metadata", api.UpdateMetadataHandler(sess))
		rr.Post("/sections/{sectionID}/complete", api.CompleteSectionHandler(sess))
		rr.Post("/submit", api.SubmitResponseHandler(sess, writer))
		rr.Get("/export", api.ExportResponseHandler(sess))
	})

	r.Post("/api/admin/login", admin.LoginHandler(creds, sessions))
	r.Group(func(ar chi.Router) {
		ar.Use(admin.RequireSession(sessions))
		ar.Handle("/api/admin/responses", reader.Handler())
		ar.Post("/api/admin/import", api.ImportResponseHandler())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
