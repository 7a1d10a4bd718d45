package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"formsapi/internal/app"
	"formsapi/internal/config"
	"formsapi/internal/logging"
	"formsapi/internal/transport/rest"
	"formsapi/internal/transport/ws"
)

// @title Forms API
// @version 1.0
// @description Typed forms, result submission and expanded results.
// @BasePath /
// @securityDefinitions.basic BasicAuth
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.Logging)

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	// Live result stream (wsHub implements service.Broadcaster)
	wsHub := ws.NewHub()
	defer wsHub.Close()
	a.ResultService.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		AuthService:        a.AuthService,
		UserService:        a.UserService,
		FormService:        a.FormService,
		ResultService:      a.ResultService,
		WSHub:              wsHub,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.HTTPPort, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server exited")
}
