package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/llm"
)

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed implements llm.Embedder with the /embeddings endpoint.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	log := common.LoggerFrom(ctx, c.logger)
	start := time.Now()

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/embeddings"
	raw, err := llm.SendJSON(ctx, c.http, endpoint, embeddingsRequest{Model: c.cfg.EmbeddingModel, Input: texts}, c.authHeaders(), log)
	if err != nil {
		log.Error("llm.embed.http_error", "error", err, "inputs", len(texts))
		return nil, err
	}

	var er embeddingsResponse
	if err := json.Unmarshal(raw, &er); err != nil {
		return nil, fmt.Errorf("%w: decode embeddings: %v", common.ErrUpstream, err)
	}
	if len(er.Data) != len(texts) {
		return nil, fmt.Errorf("%w: embeddings count mismatch: want=%d got=%d", common.ErrUpstream, len(texts), len(er.Data))
	}

	// The API may return items out of order; place them by index.
	out := make([][]float32, len(texts))
	for _, d := range er.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", common.ErrUpstream, d.Index)
		}
		out[d.Index] = d.Embedding
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("%w: missing embedding for input %d", common.ErrUpstream, i)
		}
	}

	log.Debug("llm.embed.ok", "inputs", len(texts), "dim", len(out[0]), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}
