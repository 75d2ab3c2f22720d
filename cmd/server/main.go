package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"coursevault/internal/config"
	"coursevault/internal/handler"
	"coursevault/internal/router"
	"coursevault/internal/signer"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	signSvc, err := signer.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize signer: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	janitor := signer.NewJanitor(signSvc, cfg.Upload.JanitorInterval)
	go janitor.Start(ctx)

	uploadH := handler.NewUploadHandler(signSvc)
	healthH := handler.NewHealthHandler()

	r := router.Setup(cfg, uploadH, healthH)

	log.Printf("Signing boundary starting on %s (backend=%s)", cfg.Server.Port, cfg.Storage.Backend)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
