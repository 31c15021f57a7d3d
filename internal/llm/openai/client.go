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

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatBody struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements llm.ChatModel with chat/completions. Images are sent
// as base64 data URLs in the user message.
func (c *Client) Complete(ctx context.Context, req llm.ChatRequest) (string, error) {
	log := common.LoggerFrom(ctx, c.logger)
	start := time.Now()

	body := chatBody{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    buildMessages(req),
	}
	if req.Model != "" {
		body.Model = req.Model
	}
	if req.Temperature != nil {
		body.Temperature = *req.Temperature
	}

	log.Info("llm.chat.start",
		"provider", "openai",
		"model", body.Model,
		"temp", body.Temperature,
		"prompt_len", len(req.User),
		"images", len(req.Images),
	)

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := llm.SendJSON(ctx, c.http, endpoint, body, c.authHeaders(), log)
	if err != nil {
		log.Error("llm.chat.http_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		log.Error("llm.chat.decode_error", "error", err, "raw_bytes", len(raw))
		return "", fmt.Errorf("%w: decode openai response: %v", common.ErrUpstream, err)
	}
	if len(cc.Choices) == 0 {
		log.Error("llm.chat.no_choices", "elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("%w: no choices in openai response", common.ErrUpstream)
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)

	log.Info("llm.chat.ok",
		"provider", "openai",
		"reply_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func buildMessages(req llm.ChatRequest) []chatMessage {
	msgs := make([]chatMessage, 0, 2)
	if s := strings.TrimSpace(req.System); s != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: s})
	}
	if len(req.Images) == 0 {
		msgs = append(msgs, chatMessage{Role: "user", Content: req.User})
		return msgs
	}
	parts := make([]contentPart, 0, len(req.Images)+1)
	if strings.TrimSpace(req.User) != "" {
		parts = append(parts, contentPart{Type: "text", Text: req.User})
	}
	for _, img := range req.Images {
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: llm.DataURL(img)}})
	}
	return append(msgs, chatMessage{Role: "user", Content: parts})
}

func (c *Client) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}
