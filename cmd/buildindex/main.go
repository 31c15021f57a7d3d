package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/Khalidfayaz/kidscope-backend/internal/bootstrap"
	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/ingest"
	"github.com/Khalidfayaz/kidscope-backend/internal/rag"
	"github.com/Khalidfayaz/kidscope-backend/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "", "directory of reference documents (.txt, .md, .pdf) (required)")
		dsn        = flag.String("dsn", "", "index store; postgres:// URL or SQLite path (defaults to INDEX_DSN)")
		chunkSize  = flag.Int("chunk-size", rag.DefaultChunkSize, "chunk size in characters")
		overlap    = flag.Int("overlap", rag.DefaultChunkOverlap, "overlap between chunks in characters")
		batch      = flag.Int("batch", 64, "texts per embeddings request")
		parallel   = flag.Int("parallel", 2, "embeddings requests in flight")
		skipHidden = flag.Bool("skip-hidden", true, "skip dot files and directories")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		printError("Error: load config: %v\n", err)
		os.Exit(1)
	}
	if *dsn != "" {
		cfg.Index.DSN = *dsn
	}
	logger := common.SetupLogger(cfg.Env)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	providers, err := bootstrap.NewProviders(ctx, cfg, logger)
	if err != nil {
		logger.Error("init providers", "error", err)
		os.Exit(1)
	}
	defer func() { _ = providers.Close() }()

	repo, err := repository.OpenChunkRepository(ctx, cfg.Index.DSN, logger)
	if err != nil {
		logger.Error("open index store", "dsn", cfg.Index.DSN, "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil {
			logger.Warn("close index store", "error", cerr)
		}
	}()

	uc := ingest.NewUsecase(ingest.Config{
		ChunkSize:    *chunkSize,
		ChunkOverlap: *overlap,
		BatchSize:    *batch,
		Parallel:     *parallel,
		SkipHidden:   *skipHidden,
	}, bootstrap.NewRenderer(cfg, logger), providers.Embedder, repo, logger)

	start := time.Now()
	results, stats, err := uc.IngestDirectory(ctx, *dir)
	for _, r := range results {
		if r.Err != "" {
			logger.Warn("file skipped", "path", r.Path, "error", r.Err)
		}
	}
	if err != nil {
		logger.Error("build index failed", "dir", *dir, "error", err)
		os.Exit(1)
	}

	logger.Info("index built",
		"dsn", cfg.Index.DSN,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"chunks", stats.Chunks,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
