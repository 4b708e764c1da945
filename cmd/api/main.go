package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nepal-lottery/lottery-backend/internal/api"
	"github.com/nepal-lottery/lottery-backend/internal/api/handlers"
	"github.com/nepal-lottery/lottery-backend/internal/api/middleware"
	"github.com/nepal-lottery/lottery-backend/internal/cache"
	"github.com/nepal-lottery/lottery-backend/internal/config"
	"github.com/nepal-lottery/lottery-backend/internal/database"
	"github.com/nepal-lottery/lottery-backend/internal/services/auth"
	"github.com/nepal-lottery/lottery-backend/internal/services/ledger"
	"github.com/nepal-lottery/lottery-backend/internal/services/live"
	"github.com/nepal-lottery/lottery-backend/internal/services/results"
	"github.com/nepal-lottery/lottery-backend/internal/services/site"
	"github.com/nepal-lottery/lottery-backend/internal/services/storage"
)

func main() {
	log := config.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	config.SetLogLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbService, err := database.NewDatabaseService(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database unavailable: %v", err)
	}
	defer dbService.Close()

	if err := dbService.CreateSchema(ctx); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	db := dbService.DB
	digitRepo := database.NewDigitResultRepository(db)
	categoryRepo := database.NewCategoryRepository(db)
	imageRepo := database.NewImageResultRepository(db)
	contactRepo := database.NewContactRepository(db)
	settingRepo := database.NewSettingRepository(db)

	l := ledger.New(digitRepo, ledger.WithLocation(cfg.Location()))
	store := storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.StorageBucket)
	resultService := results.NewResultService(imageRepo, storage.NewImageService(store))
	siteService := site.NewService(categoryRepo, imageRepo, contactRepo, settingRepo, l)

	hub := live.NewHub()
	defer hub.Stop()
	pages := cache.NewPageCache(cache.DefaultSize, cfg.CacheTTL)

	provider := auth.NewGoTrueProvider(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	if cfg.BypassAuth {
		log.Warn("BYPASS_AUTH is enabled, admin routes are open")
	}
	authn := middleware.NewAuthenticator(auth.NewTokenVerifier(cfg.SupabaseJWTSecret), provider, cfg.BypassAuth, cfg.IsProduction())

	router := api.NewRouter(api.Handlers{
		Digits:  handlers.NewDigitResultHandler(l, pages, hub),
		Results: handlers.NewImageResultHandler(resultService, pages),
		Site:    handlers.NewSiteHandler(siteService, pages),
		Auth:    handlers.NewAuthHandler(provider, cfg.IsProduction()),
		Live:    handlers.NewLiveHandler(hub, cfg.AllowedOrigins),
	}, authn, pages, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("server starting on :%s (env=%s, tz=%s)", cfg.Port, cfg.AppEnv, cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
}
