package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/llm"
)

// Config for the Gemini chat provider.
type Config struct {
	APIKey      string
	Model       string // default gemini-1.5-flash
	Temperature float32
}

// Client implements llm.ChatModel on top of the Gemini SDK.
type Client struct {
	cfg    Config
	client *genai.Client
	logger *slog.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if logger == nil {
		logger = slog.Default()
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &Client{cfg: cfg, client: gc, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Complete sends one turn to Gemini. A fresh GenerativeModel is built per
// call since its settings are mutable fields.
func (c *Client) Complete(ctx context.Context, req llm.ChatRequest) (string, error) {
	log := common.LoggerFrom(ctx, c.logger)
	start := time.Now()

	name := c.cfg.Model
	if req.Model != "" && strings.HasPrefix(req.Model, "gemini") {
		name = req.Model
	}
	model := c.client.GenerativeModel(name)
	temp := c.cfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	model.SetTemperature(temp)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if s := strings.TrimSpace(req.System); s != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(s)}}
	}

	parts := make([]genai.Part, 0, len(req.Images)+1)
	if strings.TrimSpace(req.User) != "" {
		parts = append(parts, genai.Text(req.User))
	}
	for _, img := range req.Images {
		parts = append(parts, genai.ImageData(llm.ImageFormat(img.MIMEType), img.Data))
	}

	log.Info("llm.chat.start", "provider", "gemini", "model", name, "temp", temp, "prompt_len", len(req.User), "images", len(req.Images))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		log.Error("llm.chat.http_error", "provider", "gemini", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("%w: gemini: %v", common.ErrUpstream, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: gemini returned no candidates", common.ErrUpstream)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	content := strings.TrimSpace(b.String())

	log.Info("llm.chat.ok", "provider", "gemini", "reply_len", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}
