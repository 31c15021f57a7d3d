// Package ingest builds the similarity index from a directory of reference
// documents.
package ingest

import "context"

// FileResult is the per-file ingest outcome.
type FileResult struct {
	Path   string
	Chunks int
	Err    string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
	Chunks    uint32
}

// TextExtractor reads the text layer of a PDF.
type TextExtractor interface {
	PDFText(ctx context.Context, path string) (string, error)
}
