package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/azizbkh/boutique-client/internal/stubapi"
	"github.com/azizbkh/boutique-client/pkg/config"
	"github.com/azizbkh/boutique-client/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "stubapi"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.LoadStub()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "stubapi",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	server, err := stubapi.NewServer(cfg.Stub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stub server", err)
		os.Exit(1)
	}

	ctx := logg.WithField(context.Background(), "addr", cfg.Stub.Addr)
	logg.Info(ctx, "starting stub api server")

	httpServer := &http.Server{
		Addr:    cfg.Stub.Addr,
		Handler: server.Handler(),
	}
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "stub api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
