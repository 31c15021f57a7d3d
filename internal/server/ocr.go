package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/marksheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MarksheetExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (*marksheet.ExtractResponse, error)
}

type MarksheetExporter interface {
	MarksheetXLSX(ctx context.Context, resp marksheet.ExtractResponse) ([]byte, error)
}

// OCRHandler serves the marksheet endpoints under /ocr/api.
type OCRHandler struct {
	extractor MarksheetExtractor
	exporter  MarksheetExporter
	maxUpload int64
	logger    *slog.Logger
}

func NewOCRHandler(extractor MarksheetExtractor, exporter MarksheetExporter, maxUpload int64, logger *slog.Logger) *OCRHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRHandler{extractor: extractor, exporter: exporter, maxUpload: maxUpload, logger: logger}
}

func (h *OCRHandler) Extract(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("File too large (limit %d bytes)", tooLarge.Limit),
			})
			return
		}
		writeError(c, common.InvalidInputf("No file uploaded"))
		return
	}
	if strings.TrimSpace(fh.Filename) == "" {
		writeError(c, common.InvalidInputf("No file selected"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, common.NewAppError("UPLOAD_ERROR", "Failed to read upload", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, common.NewAppError("UPLOAD_ERROR", "Failed to read upload", err))
		return
	}

	resp, err := h.extractor.Extract(c.Request.Context(), fh.Filename, data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OCRHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "marksheet-extractor"})
}

// Export converts a previous extraction response into an XLSX download.
func (h *OCRHandler) Export(c *gin.Context) {
	var resp marksheet.ExtractResponse
	if err := c.ShouldBindJSON(&resp); err != nil {
		writeError(c, common.InvalidInputf("Invalid extraction payload: %v", err))
		return
	}
	if len(resp.Results) == 0 {
		writeError(c, common.InvalidInputf("No results to export"))
		return
	}

	data, err := h.exporter.MarksheetXLSX(c.Request.Context(), resp)
	if err != nil {
		common.LoggerFrom(c.Request.Context(), h.logger).Error("export.xlsx.failed", "file", resp.Filename, "error", err)
		writeError(c, common.NewAppError("EXPORT_FAILED", "Failed to export marksheet", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportName(resp.Filename)))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func exportName(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "marksheet"
	}
	return base + ".xlsx"
}
