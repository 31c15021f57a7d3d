package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/llm"
	"github.com/Khalidfayaz/kidscope-backend/internal/repository"
)

// VectorCache stores embeddings by key. GetVectors returns nil entries for misses.
type VectorCache interface {
	GetVectors(ctx context.Context, keys []string) ([][]float32, error)
	SetVectors(ctx context.Context, keys []string, vecs [][]float32, ttl time.Duration) error
}

// RedisVectorCache keeps vectors as little-endian float32 blobs.
type RedisVectorCache struct {
	rdb *redis.Client
}

// NewRedisVectorCache connects to url (redis://...) and pings it.
func NewRedisVectorCache(ctx context.Context, url string) (*RedisVectorCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisVectorCache{rdb: rdb}, nil
}

func (c *RedisVectorCache) GetVectors(ctx context.Context, keys []string) ([][]float32, error) {
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(keys))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if vec, err := repository.DecodeVector([]byte(s)); err == nil {
			out[i] = vec
		}
	}
	return out, nil
}

func (c *RedisVectorCache) SetVectors(ctx context.Context, keys []string, vecs [][]float32, ttl time.Duration) error {
	pipe := c.rdb.Pipeline()
	for i, k := range keys {
		pipe.Set(ctx, k, repository.EncodeVector(vecs[i]), ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisVectorCache) Close() error {
	return c.rdb.Close()
}

// CachedEmbedder serves repeated texts from a VectorCache. Cache failures
// are logged and fall through to the wrapped embedder.
type CachedEmbedder struct {
	next   llm.Embedder
	cache  VectorCache
	model  string
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedEmbedder(next llm.Embedder, cache VectorCache, model string, ttl time.Duration, logger *slog.Logger) *CachedEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedEmbedder{next: next, cache: cache, model: model, ttl: ttl, logger: logger}
}

// CacheKey is the key an embedding of text is stored under.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "kidscope:emb:" + model + ":" + hex.EncodeToString(sum[:])
}

func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	log := common.LoggerFrom(ctx, e.logger)
	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = CacheKey(e.model, t)
	}

	out, err := e.cache.GetVectors(ctx, keys)
	if err != nil || len(out) != len(texts) {
		log.Warn("rag.cache.get_failed", "error", err)
		out = make([][]float32, len(texts))
	}

	var missIdx []int
	var missTexts []string
	for i, v := range out {
		if v == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, texts[i])
		}
	}
	if len(missIdx) == 0 {
		log.Debug("rag.cache.hit", "inputs", len(texts))
		return out, nil
	}

	fresh, err := e.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	missKeys := make([]string, len(missIdx))
	for n, i := range missIdx {
		out[i] = fresh[n]
		missKeys[n] = keys[i]
	}
	if err := e.cache.SetVectors(ctx, missKeys, fresh, e.ttl); err != nil {
		log.Warn("rag.cache.set_failed", "error", err)
	}
	log.Debug("rag.cache.miss", "inputs", len(texts), "misses", len(missIdx))
	return out, nil
}
