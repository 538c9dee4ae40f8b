package main

import (
	"log"
	"net/http"
	"time"

	"pet-adoption-platform/internal/adapters/auth/idp"
	"pet-adoption-platform/internal/adapters/storage/postgres"
	"pet-adoption-platform/internal/platform/config"
	"pet-adoption-platform/internal/platform/logger"
	"pet-adoption-platform/internal/ports/auth"
	"pet-adoption-platform/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	appLog := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	opts := router.Options{Log: appLog}

	if cfg.DBDSN != "" {
		db, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			log.Fatalf("db error: %v", err)
		}
		opts.DB = db
	}

	var verifier auth.AuthVerifier
	if cfg.IDPBaseURL != "" {
		v, err := idp.NewVerifier(idp.Config{
			BaseURL: cfg.IDPBaseURL,
			APIKey:  cfg.IDPAPIKey,
		})
		if err != nil {
			log.Fatalf("idp verifier error: %v", err)
		}
		verifier = v
	}
	opts.AuthVerifier = verifier // nil => modo dev con headers de debug

	r := router.NewRouter(opts)

	addr := ":" + cfg.Port

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	appLog.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
