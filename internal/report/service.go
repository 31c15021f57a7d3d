package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/rag"
)

// Asker answers a question from the knowledge base.
type Asker interface {
	Ask(ctx context.Context, question string) (rag.Answer, error)
}

// Service builds profile reports and drives the discussion bot.
type Service struct {
	asker  Asker
	now    func() time.Time
	logger *slog.Logger
}

func NewService(asker Asker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{asker: asker, now: time.Now, logger: logger}
}

// WithClock overrides the clock used for week tags.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Report asks the knowledge base for a profile analysis and splits the
// answer into sections.
func (s *Service) Report(ctx context.Context, req ReportRequest) (*Sections, error) {
	log := common.LoggerFrom(ctx, s.logger)
	start := time.Now()

	zodiac, famous := Zodiac(string(req.DOB))
	query := BuildReportQuery(req, zodiac, famous)
	log.Info("report.rag.start", "zodiac", zodiac, "symptoms", len(req.Symptoms))

	ans, err := s.asker.Ask(ctx, query)
	if err != nil {
		log.Error("report.rag.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewAppError("REPORT_FAILED", "Failed to generate report", err)
	}
	raw := ans.Text
	if raw == "" {
		raw = "No AI response generated."
	}

	out := &Sections{Zodiac: zodiac, FamousPeople: famous, RawAnswer: raw}
	out.Strengths, out.Weaknesses, out.Recommendations = ParseSections(raw)
	log.Info("report.rag.ok", "sources", len(ans.Sources), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// DiscussionQuestions suggests up to five conversation starters for the
// child. It never fails: parse or upstream problems fall back to questions
// built from the report itself.
func (s *Service) DiscussionQuestions(ctx context.Context, req QuestionsRequest) QuestionsResponse {
	log := common.LoggerFrom(ctx, s.logger)
	resp := QuestionsResponse{WeekTag: WeekTag(s.now())}

	ans, err := s.asker.Ask(ctx, BuildQuestionsQuery(req.Report, req.PersonalInfo))
	if err != nil {
		log.Warn("report.questions.fallback", "reason", "upstream", "error", err)
		resp.Questions = FallbackQuestions(req.Report, req.PersonalInfo)
		return resp
	}
	qs := ParseQuestions(ans.Text)
	if len(qs) < 3 {
		log.Warn("report.questions.fallback", "reason", "unparsed", "parsed", len(qs))
		qs = FallbackQuestions(req.Report, req.PersonalInfo)
	}
	resp.Questions = firstN(qs, maxDiscussionQuestions)
	log.Info("report.questions.ok", "count", len(resp.Questions), "week", resp.WeekTag)
	return resp
}

// Discuss answers one chat turn in the given mode. Upstream failures
// return the mode's canned reply.
func (s *Service) Discuss(ctx context.Context, m Mode, req DiscussionRequest) Reply {
	log := common.LoggerFrom(ctx, s.logger).With("mode", m.Name)
	start := time.Now()

	ans, err := s.asker.Ask(ctx, BuildDiscussionQuery(m, req))
	if err != nil {
		log.Error("report.discussion.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return m.FailureReply()
	}
	reply := ParseReply(m, ans.Text)
	log.Info("report.discussion.ok", "elapsed_ms", time.Since(start).Milliseconds())
	return reply
}
