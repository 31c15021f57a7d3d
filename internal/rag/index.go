// Package rag holds the in-memory similarity index and the retrieval QA chain.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/Khalidfayaz/kidscope-backend/internal/entity"
	"github.com/Khalidfayaz/kidscope-backend/internal/repository"
)

// Index is a read-only cosine index over unit-length chunk vectors.
type Index struct {
	chunks []entity.Chunk
	dim    int
}

// NewIndex normalizes every vector and checks they share one dimension.
func NewIndex(chunks []entity.Chunk) (*Index, error) {
	idx := &Index{chunks: make([]entity.Chunk, 0, len(chunks))}
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return nil, fmt.Errorf("chunk %s has no embedding", c.ID)
		}
		if idx.dim == 0 {
			idx.dim = len(c.Embedding)
		} else if len(c.Embedding) != idx.dim {
			return nil, fmt.Errorf("chunk %s: dimension %d, index has %d", c.ID, len(c.Embedding), idx.dim)
		}
		c.Embedding = normalize(c.Embedding)
		idx.chunks = append(idx.chunks, c)
	}
	return idx, nil
}

// Load reads every chunk from the repository and builds the index.
func Load(ctx context.Context, repo repository.ChunkRepository, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	chunks, err := repo.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	idx, err := NewIndex(chunks)
	if err != nil {
		return nil, err
	}
	logger.Info("rag.index.loaded", "chunks", idx.Len(), "dim", idx.dim, "elapsed_ms", time.Since(start).Milliseconds())
	return idx, nil
}

func (i *Index) Len() int { return len(i.chunks) }

func (i *Index) Dim() int { return i.dim }

// Search returns the k chunks most similar to q, best first. Equal scores
// keep index order.
func (i *Index) Search(q []float32, k int) ([]entity.Match, error) {
	if len(i.chunks) == 0 || k <= 0 {
		return nil, nil
	}
	if len(q) != i.dim {
		return nil, fmt.Errorf("query dimension %d, index has %d", len(q), i.dim)
	}
	q = normalize(q)

	matches := make([]entity.Match, len(i.chunks))
	for n, c := range i.chunks {
		matches[n] = entity.Match{Chunk: c, Score: dot(q, c.Embedding)}
	}
	sort.SliceStable(matches, func(a, b int) bool { return matches[a].Score > matches[b].Score })
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	n := float32(math.Sqrt(sum))
	for i, f := range v {
		out[i] = f / n
	}
	return out
}
