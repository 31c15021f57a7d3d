package bootstrap

import (
	"context"
	"testing"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/llm/openai"
)

func TestNewProvidersOpenAI(t *testing.T) {
	cfg := &common.Config{}
	cfg.LLM.Provider = ProviderOpenAI
	cfg.LLM.APIKey = "sk-test"

	p, err := NewProviders(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new providers: %v", err)
	}
	defer func() { _ = p.Close() }()

	if _, ok := p.Chat.(*openai.Client); !ok {
		t.Fatalf("chat: want *openai.Client got=%T", p.Chat)
	}
	if _, ok := p.Embedder.(*openai.Client); !ok {
		t.Fatalf("embedder without cache: want *openai.Client got=%T", p.Embedder)
	}
}

func TestNewProvidersUnknown(t *testing.T) {
	cfg := &common.Config{}
	cfg.LLM.Provider = "llama"
	if _, err := NewProviders(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewProvidersUnreachableCache(t *testing.T) {
	cfg := &common.Config{}
	cfg.LLM.APIKey = "sk-test"
	cfg.Cache.RedisURL = "redis://127.0.0.1:1/0"

	p, err := NewProviders(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new providers: %v", err)
	}
	if _, ok := p.Embedder.(*openai.Client); !ok {
		t.Fatalf("unreachable cache should be skipped, got=%T", p.Embedder)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
