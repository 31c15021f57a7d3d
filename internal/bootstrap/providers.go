// Package bootstrap builds the long-lived dependencies shared by the
// binaries from a loaded configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/llm"
	"github.com/Khalidfayaz/kidscope-backend/internal/llm/gemini"
	"github.com/Khalidfayaz/kidscope-backend/internal/llm/openai"
	"github.com/Khalidfayaz/kidscope-backend/internal/marksheet"
	"github.com/Khalidfayaz/kidscope-backend/internal/rag"
	"github.com/Khalidfayaz/kidscope-backend/internal/render"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Providers holds the model clients. Embeddings always come from OpenAI;
// chat and vision follow the configured provider.
type Providers struct {
	Chat     llm.ChatModel
	Embedder llm.Embedder

	closers []func() error
}

func NewProviders(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*Providers, error) {
	if logger == nil {
		logger = slog.Default()
	}
	oa := openai.NewClient(openai.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Temperature:    cfg.LLM.Temperature,
		Timeout:        cfg.LLM.Timeout,
	}, logger)

	p := &Providers{Chat: oa, Embedder: oa}

	switch cfg.LLM.Provider {
	case ProviderOpenAI, "":
	case ProviderGemini:
		gc, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.LLM.GeminiAPIKey,
			Model:       cfg.LLM.GeminiModel,
			Temperature: cfg.LLM.Temperature,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		p.Chat = gc
		p.closers = append(p.closers, gc.Close)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}

	if cfg.Cache.RedisURL != "" {
		cache, err := rag.NewRedisVectorCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			// the cache is optional; run without it
			logger.Warn("rag.cache.disabled", "error", err)
		} else {
			p.Embedder = rag.NewCachedEmbedder(oa, cache, oa.EmbeddingModel(), cfg.Cache.TTL, logger)
			p.closers = append(p.closers, cache.Close)
			logger.Info("rag.cache.enabled", "ttl", cfg.Cache.TTL.String())
		}
	}
	return p, nil
}

func (p *Providers) Close() error {
	var errs []error
	for _, c := range p.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewRenderer builds the page renderer from the vision settings.
func NewRenderer(cfg *common.Config, logger *slog.Logger) *render.Renderer {
	return render.NewRenderer(render.Config{
		Pdftoppm:  cfg.Vision.Pdftoppm,
		Pdftotext: cfg.Vision.Pdftotext,
		DPI:       cfg.Vision.DPI,
		MaxPages:  cfg.Vision.MaxPages,
	}, logger)
}

// NewMarksheetService wires rendering and page extraction for uploads.
func NewMarksheetService(cfg *common.Config, chat llm.ChatModel, logger *slog.Logger) *marksheet.Service {
	vision := marksheet.NewVisionExtractor(chat, marksheet.VisionConfig{
		Model:       cfg.Vision.Model,
		MaxTokens:   cfg.Vision.MaxTokens,
		Temperature: cfg.Vision.Temperature,
		Concurrency: cfg.Vision.Concurrency,
	}, logger)
	return marksheet.NewService(NewRenderer(cfg, logger), vision, logger)
}
