package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/report"
)

type ReportService interface {
	Report(ctx context.Context, req report.ReportRequest) (*report.Sections, error)
	DiscussionQuestions(ctx context.Context, req report.QuestionsRequest) report.QuestionsResponse
	Discuss(ctx context.Context, m report.Mode, req report.DiscussionRequest) report.Reply
}

// ReportHandler serves the profile report and discussion bot under /report.
type ReportHandler struct {
	svc    ReportService
	logger *slog.Logger
}

func NewReportHandler(svc ReportService, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

func (h *ReportHandler) RAG(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, common.InvalidInputf("No JSON data received"))
		return
	}
	req, err := report.DecodeReportRequest(body)
	if err != nil {
		writeError(c, err)
		return
	}
	out, err := h.svc.Report(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReportHandler) DiscussionQuestions(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, common.InvalidInputf("No JSON data received"))
		return
	}
	req, err := report.DecodeQuestionsRequest(body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.DiscussionQuestions(c.Request.Context(), req))
}

func (h *ReportHandler) DiscussionFollowup(c *gin.Context) { h.discuss(c, report.ModeFollowup) }

func (h *ReportHandler) DiscussionFree(c *gin.Context) { h.discuss(c, report.ModeFree) }

func (h *ReportHandler) discuss(c *gin.Context, m report.Mode) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, common.InvalidInputf("No JSON data received"))
		return
	}
	req, err := report.DecodeDiscussionRequest(body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Discuss(c.Request.Context(), m, req))
}
