package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hirex-ai/hirex/backend/internal/app"
	"github.com/hirex-ai/hirex/backend/internal/config"
	"github.com/hirex-ai/hirex/backend/internal/handler"
	"github.com/hirex-ai/hirex/backend/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.NewLogger(false).Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.NewLogger(cfg.Log.Debug)
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if envErr != nil {
		log.Debug("continuing with system environment variables only", zap.Error(envErr))
	}

	application, err := app.New(ctx, cfg, &http.Client{}, log)
	if err != nil {
		log.Fatal("failed to initialize services", zap.Error(err))
	}

	router := handler.NewRouter(application.Profiles, application.Chat, application.Dispatcher, log)

	startServer(ctx, cfg.Server, router, log)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, log *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info("HirEx backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
