// Package render turns uploaded PDFs and images into PNG pages for the
// vision model.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Khalidfayaz/kidscope-backend/constants"
	"github.com/Khalidfayaz/kidscope-backend/internal/common"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	DPI       int    // rasterization DPI, default 200
	MaxPages  int    // 0 = no limit
}

// Page is one rendered page, PNG encoded.
type Page struct {
	Number int // 1-based
	PNG    []byte
}

type Renderer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewRenderer(cfg Config, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	return &Renderer{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner, for tests.
func (r *Renderer) WithRunner(runner Runner) *Renderer {
	r.runner = runner
	return r
}

// Render picks a strategy based on the file extension. Spreadsheets are
// rejected; anything that is not a PDF is decoded as an image.
func (r *Renderer) Render(ctx context.Context, filename string, data []byte) ([]Page, error) {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		return r.RenderPDF(ctx, data)
	case constants.SPREADSHEET:
		return nil, common.NewAppError("UNSUPPORTED", fmt.Sprintf("cannot render %q as pages", ext), common.ErrUnsupported)
	default:
		page, err := ToPNG(data)
		if err != nil {
			r.logger.Warn("render.image.decode_failed", "file", filename, "error", err)
			return nil, common.NewAppError("IMAGE_ERROR", "Image error: "+err.Error(), err)
		}
		return []Page{{Number: 1, PNG: page}}, nil
	}
}
