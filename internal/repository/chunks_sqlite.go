package repository

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Khalidfayaz/kidscope-backend/internal/entity"
)

type sqliteChunkRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const sqliteCreateChunks = `CREATE TABLE IF NOT EXISTS ` + chunksTable + ` (
	id        TEXT PRIMARY KEY,
	source    TEXT NOT NULL,
	position  INTEGER NOT NULL,
	content   TEXT NOT NULL,
	embedding BLOB NOT NULL
)`

// OpenSQLiteChunkRepository opens (creating if needed) the index file at path.
func OpenSQLiteChunkRepository(ctx context.Context, path string, logger *slog.Logger) (ChunkRepository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteCreateChunks); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	logger.Info("index.sqlite.opened", "path", path)
	return &sqliteChunkRepository{db: db, logger: logger}, nil
}

// OpenSQLiteChunkRepositoryReadOnly opens an existing index file in
// read-only mode.
func OpenSQLiteChunkRepositoryReadOnly(ctx context.Context, path string, logger *slog.Logger) (ChunkRepository, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("index file: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("index.sqlite.opened", "path", path, "read_only", true)
	return &sqliteChunkRepository{db: db, logger: logger}, nil
}

func (r *sqliteChunkRepository) ListChunks(ctx context.Context) ([]entity.Chunk, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, source, position, content, embedding FROM `+chunksTable+` ORDER BY source, position`)
	if err != nil {
		r.logger.Error("failed to list chunks", "error", err)
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []entity.Chunk
	for rows.Next() {
		var (
			c    entity.Chunk
			id   string
			blob []byte
		)
		if err := rows.Scan(&id, &c.Source, &c.Position, &c.Content, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("chunk id %q: %w", id, err)
		}
		if c.Embedding, err = DecodeVector(blob); err != nil {
			return nil, fmt.Errorf("chunk %s: %w", id, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *sqliteChunkRepository) ReplaceChunks(ctx context.Context, chunks []entity.Chunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+chunksTable); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+chunksTable+` (id, source, position, content, embedding) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID.String(), c.Source, c.Position, c.Content, EncodeVector(c.Embedding)); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	r.logger.Info("index.sqlite.written", "chunks", len(chunks))
	return nil
}

func (r *sqliteChunkRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *sqliteChunkRepository) Close() error {
	return r.db.Close()
}

// EncodeVector packs a vector as little-endian float32s.
func EncodeVector(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

// DecodeVector is the inverse of EncodeVector.
func DecodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
