package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Khalidfayaz/kidscope-backend/constants"
	"github.com/Khalidfayaz/kidscope-backend/internal/entity"
	"github.com/Khalidfayaz/kidscope-backend/internal/llm"
	"github.com/Khalidfayaz/kidscope-backend/internal/rag"
	"github.com/Khalidfayaz/kidscope-backend/internal/repository"
)

type Config struct {
	ChunkSize    int // runes, default 1000
	ChunkOverlap int // runes, default 200
	BatchSize    int // texts per embeddings call, default 64
	Parallel     int // embeddings calls in flight, default 2
	SkipHidden   bool
}

// Usecase walks a corpus, chunks and embeds it, and replaces the stored index.
type Usecase struct {
	cfg      Config
	pdf      TextExtractor
	embedder llm.Embedder
	repo     repository.ChunkRepository
	logger   *slog.Logger
}

func NewUsecase(cfg Config, pdf TextExtractor, embedder llm.Embedder, repo repository.ChunkRepository, logger *slog.Logger) *Usecase {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = rag.DefaultChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = rag.DefaultChunkOverlap
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = 2
	}
	return &Usecase{cfg: cfg, pdf: pdf, embedder: embedder, repo: repo, logger: logger}
}

// IngestDirectory walks root, chunks every corpus document and rewrites the
// index. Unreadable files are reported per file and skipped; embedding or
// storage failures abort without touching the stored index.
func (u *Usecase) IngestDirectory(ctx context.Context, root string) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	start := time.Now()

	var (
		results []FileResult
		stats   DirStats
		chunks  []entity.Chunk
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		if u.cfg.SkipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		text, err := u.readText(ctx, path)
		if err != nil {
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		source, _ := filepath.Rel(root, path)
		pieces := rag.SplitText(text, u.cfg.ChunkSize, u.cfg.ChunkOverlap)
		for i, p := range pieces {
			chunks = append(chunks, entity.Chunk{ID: uuid.New(), Source: filepath.ToSlash(source), Position: i, Content: p})
		}
		results = append(results, FileResult{Path: path, Chunks: len(pieces)})
		stats.Succeeded++
		stats.Chunks += uint32(len(pieces))
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	if len(chunks) == 0 {
		return results, stats, errors.New("no text found to index")
	}

	if err := u.embed(ctx, chunks); err != nil {
		return results, stats, err
	}
	if err := u.repo.ReplaceChunks(ctx, chunks); err != nil {
		return results, stats, fmt.Errorf("write index: %w", err)
	}

	u.logger.Info("ingest.directory.ok",
		"root", root,
		"files", stats.Succeeded,
		"failed", stats.Failed,
		"chunks", len(chunks),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return results, stats, nil
}

func (u *Usecase) readText(ctx context.Context, path string) (string, error) {
	if constants.NormalizeExt(filepath.Ext(path)) == "pdf" {
		if u.pdf == nil {
			return "", errors.New("no pdf text extractor configured")
		}
		return u.pdf.PDFText(ctx, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// embed fills chunk embeddings in batches with bounded parallelism.
func (u *Usecase) embed(ctx context.Context, chunks []entity.Chunk) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.cfg.Parallel)
	for lo := 0; lo < len(chunks); lo += u.cfg.BatchSize {
		hi := min(lo+u.cfg.BatchSize, len(chunks))
		g.Go(func() error {
			texts := make([]string, hi-lo)
			for i := range texts {
				texts[i] = chunks[lo+i].Content
			}
			vecs, err := u.embedder.Embed(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", lo, hi, err)
			}
			if len(vecs) != len(texts) {
				return fmt.Errorf("embed chunks %d-%d: want %d vectors got %d", lo, hi, len(texts), len(vecs))
			}
			for i, v := range vecs {
				chunks[lo+i].Embedding = v
			}
			u.logger.Debug("ingest.embed.batch", "from", lo, "to", hi)
			return nil
		})
	}
	return g.Wait()
}
