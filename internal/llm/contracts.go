package llm

import "context"

// ImageInput is one raster image attached to a chat request.
type ImageInput struct {
	MIMEType string // e.g. "image/png"
	Data     []byte
}

// ChatRequest is a single-turn completion: a system message, a user message
// and optional images.
type ChatRequest struct {
	System      string
	User        string
	Images      []ImageInput
	Model       string   // overrides the client default when set
	MaxTokens   int      // 0 leaves the provider default
	Temperature *float32 // nil uses the client default
}

// ChatModel is what the extraction and report services depend on.
type ChatModel interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Temp is a helper for ChatRequest.Temperature.
func Temp(v float32) *float32 { return &v }
