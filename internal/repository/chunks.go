package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Khalidfayaz/kidscope-backend/internal/entity"
)

// ChunkRepository persists the similarity index.
type ChunkRepository interface {
	// ListChunks returns every chunk ordered by source then position.
	ListChunks(ctx context.Context) ([]entity.Chunk, error)
	// ReplaceChunks drops the current index and writes chunks in one transaction.
	ReplaceChunks(ctx context.Context, chunks []entity.Chunk) error
	Ping(ctx context.Context) error
	Close() error
}

const chunksTable = "rag_chunks"

// IsPostgresDSN reports whether dsn selects the Postgres store.
func IsPostgresDSN(dsn string) bool {
	d := strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://")
}

// OpenChunkRepository picks Postgres for postgres:// DSNs and SQLite otherwise.
// The chunk table is created when missing, so a fresh store loads as empty.
func OpenChunkRepository(ctx context.Context, dsn string, logger *slog.Logger) (ChunkRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if IsPostgresDSN(dsn) {
		pool, err := OpenPool(ctx, Config{DSN: dsn, MaxConns: 4}, logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres index: %w", err)
		}
		if err := EnsurePostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("open postgres index: %w", err)
		}
		return NewPostgresChunkRepository(pool, logger), nil
	}
	repo, err := OpenSQLiteChunkRepository(ctx, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("open sqlite index: %w", err)
	}
	return repo, nil
}

// OpenChunkRepositoryReadOnly opens an existing store without creating
// files or tables. A missing SQLite file is an error wrapping os.ErrNotExist.
func OpenChunkRepositoryReadOnly(ctx context.Context, dsn string, logger *slog.Logger) (ChunkRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if IsPostgresDSN(dsn) {
		pool, err := OpenPool(ctx, Config{DSN: dsn, MaxConns: 1}, logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres index: %w", err)
		}
		return NewPostgresChunkRepository(pool, logger), nil
	}
	repo, err := OpenSQLiteChunkRepositoryReadOnly(ctx, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("open sqlite index: %w", err)
	}
	return repo, nil
}
