package marksheet

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/llm"
	"github.com/Khalidfayaz/kidscope-backend/internal/render"
)

type VisionConfig struct {
	Model       string
	MaxTokens   int // default 2000
	Temperature float32
	Concurrency int // pages in flight per request, default 2
}

// VisionExtractor sends one chat call per page and recovers JSON from the reply.
type VisionExtractor struct {
	cfg    VisionConfig
	model  llm.ChatModel
	schema *jsonschema.Schema
	logger *slog.Logger
}

func NewVisionExtractor(model llm.ChatModel, cfg VisionConfig, logger *slog.Logger) *VisionExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	return &VisionExtractor{
		cfg:    cfg,
		model:  model,
		schema: llm.MustCompileSchema("marksheet.json", llm.BuildMarksheetJSONSchema()),
		logger: logger,
	}
}

// ExtractPages returns one PageResult per page in page order. An upstream
// model error on any page fails the whole call.
func (v *VisionExtractor) ExtractPages(ctx context.Context, pages []render.Page) ([]PageResult, error) {
	out := make([]PageResult, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.Concurrency)

	for i, p := range pages {
		g.Go(func() error {
			res, err := v.extractPage(gctx, p)
			if err != nil {
				return fmt.Errorf("page %d: %w", p.Number, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *VisionExtractor) extractPage(ctx context.Context, p render.Page) (PageResult, error) {
	log := common.LoggerFrom(ctx, v.logger).With("page", p.Number)
	start := time.Now()

	reply, err := v.model.Complete(ctx, llm.ChatRequest{
		System:      llm.MarksheetSystemPrompt,
		Images:      []llm.ImageInput{{MIMEType: "image/png", Data: p.PNG}},
		Model:       v.cfg.Model,
		MaxTokens:   v.cfg.MaxTokens,
		Temperature: llm.Temp(v.cfg.Temperature),
	})
	if err != nil {
		log.Error("marksheet.page.model_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return PageResult{}, err
	}

	res := v.ParseReply(ctx, reply)
	res.Page = p.Number
	if res.Error != "" {
		log.Warn("marksheet.page.unparseable", "reply_len", len(reply), "elapsed_ms", time.Since(start).Milliseconds())
	} else {
		log.Info("marksheet.page.ok",
			"subjects", len(res.Data.Subjects),
			"source_type", res.Data.SourceType,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
	return res, nil
}

// ParseReply turns raw model text into a page result: recover the JSON
// object, rename synonym keys, validate (strict, then sanitized), then
// normalize.
func (v *VisionExtractor) ParseReply(ctx context.Context, reply string) PageResult {
	log := common.LoggerFrom(ctx, v.logger)

	raw, ok := llm.ExtractJSONObject(reply)
	if !ok {
		return PageResult{Error: ErrUnparseablePage}
	}
	// synonym keys are valid against the loose schema, so the renames cannot
	// wait for a strict failure
	if renamed, _, err := llm.SanitizeMarksheetJSON(raw, log); err == nil {
		raw = renamed
	}
	doc, err := llm.ValidateLenient(v.schema, raw, llm.SanitizeMarksheetJSON, log)
	if err != nil {
		log.Warn("marksheet.page.best_effort", "error", err)
	}

	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return PageResult{Error: ErrUnparseablePage}
	}
	res := Normalize(m)
	return PageResult{Data: &res}
}
