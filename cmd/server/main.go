package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/app"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/config"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/logx"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/server"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		logx.Error().Err(err).Msg("Server stopped")
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred cleanup always happens.
func run() error {
	envErr := godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath, true)
	if err != nil {
		return err
	}
	logx.Init(logx.Options{Env: cfg.Env})
	if envErr != nil {
		logx.Info().Msg("No .env file found, using defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var index server.IndexStater
	if a.Index != nil {
		index = a.Index
	}
	srv := server.NewServer(a.Pipeline, a.Store, a.Graph, index)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}
	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logx.Info().Str("port", port).Msg("Starting server")
	return serve(ctx, httpServer)
}

// serve blocks until the listener fails or ctx ends; the latter triggers a
// graceful shutdown and is not an error.
func serve(ctx context.Context, httpServer *http.Server) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logx.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
