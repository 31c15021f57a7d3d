package marksheet

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/Khalidfayaz/kidscope-backend/constants"
	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/render"
)

// PageRenderer turns an upload into PNG pages.
type PageRenderer interface {
	Render(ctx context.Context, filename string, data []byte) ([]render.Page, error)
}

// Service routes uploads to the spreadsheet parser or the vision extractor.
type Service struct {
	renderer PageRenderer
	vision   *VisionExtractor
	logger   *slog.Logger
}

func NewService(renderer PageRenderer, vision *VisionExtractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{renderer: renderer, vision: vision, logger: logger}
}

// Extract runs the whole extraction for one uploaded file.
func (s *Service) Extract(ctx context.Context, filename string, data []byte) (*ExtractResponse, error) {
	log := common.LoggerFrom(ctx, s.logger)
	start := time.Now()

	name := strings.TrimSpace(filename)
	if name == "" {
		return nil, common.InvalidInputf("No file selected")
	}
	format := constants.MapExtToFormat(filepath.Ext(name))
	log.Info("marksheet.extract.start", "file", name, "format", format, "bytes", len(data))

	if format == constants.SPREADSHEET {
		res := ParseSpreadsheet(name, data)
		if res.Error != "" {
			log.Warn("marksheet.extract.spreadsheet_error", "file", name, "error", res.Error)
		}
		return &ExtractResponse{
			Filename:       filename,
			PagesProcessed: 1,
			Results:        []PageResult{{Page: 1, Data: &res}},
		}, nil
	}

	pages, err := s.renderer.Render(ctx, name, data)
	if err != nil {
		log.Error("marksheet.extract.render_failed", "file", name, "error", err)
		return nil, err
	}
	results, err := s.vision.ExtractPages(ctx, pages)
	if err != nil {
		log.Error("marksheet.extract.failed", "file", name, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewAppError("UPSTREAM", "Failed to extract marksheet", err)
	}

	log.Info("marksheet.extract.ok",
		"file", name,
		"pages", len(pages),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &ExtractResponse{
		Filename:       filename,
		PagesProcessed: len(pages),
		Results:        results,
	}, nil
}
