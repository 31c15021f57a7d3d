package entity

import "github.com/google/uuid"

// Chunk is one indexed passage of the reference corpus.
type Chunk struct {
	ID        uuid.UUID `json:"id"`
	Source    string    `json:"source"`
	Position  int       `json:"position"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
}

// Match is a chunk returned by a similarity search.
type Match struct {
	Chunk
	Score float32 `json:"score"`
}
