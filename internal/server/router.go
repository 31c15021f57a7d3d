package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	OCR            *OCRHandler
	Report         *ReportHandler
	Index          IndexStats
	Provider       string
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter wires every HTTP route. The OCR endpoints live under /ocr and
// the report endpoints under /report.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(cfg.Logger))
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(CORS(cfg.AllowedOrigins))
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Backend Running - OCR & Report services"})
	})
	router.GET("/healthz", healthHandler{index: cfg.Index, provider: cfg.Provider}.healthz)

	if cfg.OCR != nil {
		ocr := router.Group("/ocr/api")
		{
			ocr.POST("/extract-marksheet", cfg.OCR.Extract)
			ocr.GET("/health", cfg.OCR.Health)
			ocr.POST("/export-marksheet", cfg.OCR.Export)
		}
	}

	if cfg.Report != nil {
		rep := router.Group("/report")
		{
			rep.POST("/rag", cfg.Report.RAG)
			rep.POST("/discussion-questions", cfg.Report.DiscussionQuestions)
			rep.POST("/discussion-followup", cfg.Report.DiscussionFollowup)
			rep.POST("/discussion-free", cfg.Report.DiscussionFree)
		}
	}

	return router
}
