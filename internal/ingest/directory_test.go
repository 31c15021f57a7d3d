package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Khalidfayaz/kidscope-backend/internal/entity"
	"github.com/Khalidfayaz/kidscope-backend/internal/repository"
)

type fakeEmbedder struct{ err error }

func (f fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1}
	}
	return out, nil
}

type fakePDF struct{}

func (fakePDF) PDFText(_ context.Context, path string) (string, error) {
	if strings.Contains(path, "broken") {
		return "", errors.New("pdftotext: exit status 1")
	}
	return "Temperament and Self-Esteem in early childhood.", nil
}

type memRepo struct {
	repository.ChunkRepository
	chunks []entity.Chunk
}

func (m *memRepo) ReplaceChunks(_ context.Context, chunks []entity.Chunk) error {
	m.chunks = chunks
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dsm", "anxiety.md"), "School Refusal is common.\n\nParental Reinforcement matters.")
	writeFile(t, filepath.Join(root, "zodiac.txt"), strings.Repeat("Aries are bold. ", 100))
	writeFile(t, filepath.Join(root, "book.pdf"), "%PDF")
	writeFile(t, filepath.Join(root, "broken.pdf"), "%PDF")
	writeFile(t, filepath.Join(root, "photo.png"), "png")
	writeFile(t, filepath.Join(root, ".cache", "skip.md"), "hidden")

	repo := &memRepo{}
	u := NewUsecase(Config{ChunkSize: 500, ChunkOverlap: 50, BatchSize: 2, SkipHidden: true}, fakePDF{}, fakeEmbedder{}, repo, nil)

	results, stats, err := u.IngestDirectory(context.Background(), root)
	if err != nil {
		t.Fatalf("IngestDirectory: %v", err)
	}
	if stats.Matched != 4 || stats.Succeeded != 3 || stats.Failed != 1 {
		t.Fatalf("stats: got=%+v", stats)
	}
	if len(results) != 4 {
		t.Fatalf("results: want=4 got=%d", len(results))
	}
	if int(stats.Chunks) != len(repo.chunks) || len(repo.chunks) < 4 {
		t.Fatalf("chunks: stats=%d stored=%d", stats.Chunks, len(repo.chunks))
	}
	sources := map[string]bool{}
	for _, c := range repo.chunks {
		if len(c.Embedding) != 2 || c.Embedding[0] != float32(len(c.Content)) {
			t.Fatalf("chunk %q embedding mismatch: %v", c.Source, c.Embedding)
		}
		sources[c.Source] = true
	}
	for _, s := range []string{"dsm/anxiety.md", "zodiac.txt", "book.pdf"} {
		if !sources[s] {
			t.Fatalf("missing source %q in %v", s, sources)
		}
	}
	if sources[".cache/skip.md"] {
		t.Fatal("hidden file indexed")
	}
}

func TestIngestDirectoryEmbedFailureKeepsIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "some text")
	repo := &memRepo{chunks: []entity.Chunk{{Content: "old"}}}
	u := NewUsecase(Config{}, fakePDF{}, fakeEmbedder{err: errors.New("quota")}, repo, nil)

	if _, _, err := u.IngestDirectory(context.Background(), root); err == nil {
		t.Fatal("want error")
	}
	if len(repo.chunks) != 1 || repo.chunks[0].Content != "old" {
		t.Fatal("index replaced despite failure")
	}
}

func TestIngestDirectoryRequiresRoot(t *testing.T) {
	u := NewUsecase(Config{}, nil, fakeEmbedder{}, &memRepo{}, nil)
	if _, _, err := u.IngestDirectory(context.Background(), " "); err == nil {
		t.Fatal("want error")
	}
}
