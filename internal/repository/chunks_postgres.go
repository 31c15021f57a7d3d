package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Khalidfayaz/kidscope-backend/internal/entity"
)

type postgresChunkRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresChunkRepository(pool *pgxpool.Pool, logger *slog.Logger) ChunkRepository {
	return &postgresChunkRepository{pool: pool, logger: logger}
}

const pgCreateChunks = `CREATE TABLE IF NOT EXISTS ` + chunksTable + ` (
	id        UUID PRIMARY KEY,
	source    TEXT NOT NULL,
	position  INTEGER NOT NULL,
	content   TEXT NOT NULL,
	embedding REAL[] NOT NULL
)`

// execer is satisfied by *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// EnsurePostgresSchema creates the chunk table when it does not exist yet.
func EnsurePostgresSchema(ctx context.Context, db execer) error {
	if _, err := db.Exec(ctx, pgCreateChunks); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func (r *postgresChunkRepository) ListChunks(ctx context.Context) ([]entity.Chunk, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, source, position, content, embedding FROM `+chunksTable+` ORDER BY source, position`)
	if err != nil {
		r.logger.Error("failed to list chunks", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []entity.Chunk
	for rows.Next() {
		var c entity.Chunk
		if err := rows.Scan(&c.ID, &c.Source, &c.Position, &c.Content, &c.Embedding); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresChunkRepository) ReplaceChunks(ctx context.Context, chunks []entity.Chunk) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := EnsurePostgresSchema(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `TRUNCATE `+chunksTable); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	rows := make([][]any, len(chunks))
	for i, c := range chunks {
		rows[i] = []any{c.ID, c.Source, c.Position, c.Content, c.Embedding}
	}
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{chunksTable},
		[]string{"id", "source", "position", "content", "embedding"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy chunks: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Info("index.postgres.written", "chunks", n)
	return nil
}

func (r *postgresChunkRepository) Ping(ctx context.Context) error {
	return HealthCheck(ctx, r.pool, 0, r.logger)
}

func (r *postgresChunkRepository) Close() error {
	r.pool.Close()
	return nil
}
