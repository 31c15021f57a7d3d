package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Khalidfayaz/kidscope-backend/internal/bootstrap"
	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/export"
	"github.com/Khalidfayaz/kidscope-backend/internal/rag"
	"github.com/Khalidfayaz/kidscope-backend/internal/report"
	"github.com/Khalidfayaz/kidscope-backend/internal/repository"
	"github.com/Khalidfayaz/kidscope-backend/internal/server"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := common.SetupLogger(cfg.Env)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	if cfg.Env == common.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := bootstrap.NewProviders(ctx, cfg, logger)
	if err != nil {
		logger.Error("init providers", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := providers.Close(); err != nil {
			logger.Warn("close providers", "error", err)
		}
	}()

	index, err := loadIndex(ctx, cfg.Index.DSN, logger)
	if err != nil {
		logger.Error("load index", "dsn", cfg.Index.DSN, "error", err)
		os.Exit(1)
	}
	if index.Len() == 0 {
		logger.Warn("rag.index.empty", "dsn", cfg.Index.DSN, "hint", "run buildindex first")
	}

	chain := rag.NewChain(providers.Embedder, providers.Chat, index, cfg.Index.TopK, logger)
	router := server.NewRouter(server.RouterConfig{
		OCR: server.NewOCRHandler(
			bootstrap.NewMarksheetService(cfg, providers.Chat, logger),
			export.NewService(logger),
			cfg.MaxUploadBytes(),
			logger,
		),
		Report:         server.NewReportHandler(report.NewService(chain, logger), logger),
		Index:          index,
		Provider:       cfg.LLM.Provider,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http.serving", "addr", srv.Addr, "provider", cfg.LLM.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http serve: %w", err)
		}
	}()
	if cfg.Server.GRPCHealthAddr != "" {
		go func() {
			if err := server.ServeGRPCHealth(ctx, cfg.Server.GRPCHealthAddr, logger); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Error("server failed", "error", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	logger.Info("stopped")
}

// loadIndex reads the whole index into memory and releases the store.
func loadIndex(ctx context.Context, dsn string, logger *slog.Logger) (*rag.Index, error) {
	repo, err := repository.OpenChunkRepository(ctx, dsn, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil {
			logger.Warn("close index store", "error", cerr)
		}
	}()
	return rag.Load(ctx, repo, logger)
}
