package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/entity"
	"github.com/Khalidfayaz/kidscope-backend/internal/llm"
)

const DefaultTopK = 4

// stuffSystemPrompt places every retrieved passage in one system message.
const stuffSystemPrompt = "Use the following pieces of context to answer the user's question. \n" +
	"If you don't know the answer, just say that you don't know, don't try to make up an answer.\n" +
	"----------------\n"

// Searcher finds the chunks closest to a query vector.
type Searcher interface {
	Search(q []float32, k int) ([]entity.Match, error)
}

// Answer is the chain output plus the passages it was grounded on.
type Answer struct {
	Text    string
	Sources []entity.Match
}

// Chain is a retrieval QA chain: embed, retrieve top-k, stuff, complete.
type Chain struct {
	embedder llm.Embedder
	chat     llm.ChatModel
	index    Searcher
	topK     int
	logger   *slog.Logger
}

func NewChain(embedder llm.Embedder, chat llm.ChatModel, index Searcher, topK int, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Chain{embedder: embedder, chat: chat, index: index, topK: topK, logger: logger}
}

// Ask answers question from the indexed corpus at temperature 0.
func (c *Chain) Ask(ctx context.Context, question string) (Answer, error) {
	log := common.LoggerFrom(ctx, c.logger)
	start := time.Now()

	vecs, err := c.embedder.Embed(ctx, []string{question})
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}
	if len(vecs) != 1 {
		return Answer{}, fmt.Errorf("%w: want 1 embedding got %d", common.ErrUpstream, len(vecs))
	}
	matches, err := c.index.Search(vecs[0], c.topK)
	if err != nil {
		return Answer{}, fmt.Errorf("search index: %w", err)
	}

	passages := make([]string, len(matches))
	for i, m := range matches {
		passages[i] = m.Content
	}
	text, err := c.chat.Complete(ctx, llm.ChatRequest{
		System:      stuffSystemPrompt + strings.Join(passages, "\n\n"),
		User:        question,
		Temperature: llm.Temp(0),
	})
	if err != nil {
		return Answer{}, fmt.Errorf("complete: %w", err)
	}

	log.Info("rag.ask.ok",
		"sources", len(matches),
		"question_len", len(question),
		"answer_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Answer{Text: text, Sources: matches}, nil
}
