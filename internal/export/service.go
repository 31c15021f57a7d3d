package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/marksheet"
)

const (
	SummarySheet  = "Summary"
	SubjectsSheet = "Subjects"
)

var summaryHeaders = []string{
	"Page",
	"Student Name",
	"Roll Number",
	"Class",
	"Section",
	"School",
	"Exam",
	"Session",
	"Obtained Marks",
	"Total Marks",
	"Percentage",
	"Overall Grade",
	"Result",
	"Source Type",
	"Error",
}

var subjectHeaders = []string{
	"Page",
	"Student Name",
	"Subject",
	"Marks Obtained",
	"Total Marks",
	"Grade",
}

// Service produces XLSX bytes for extraction results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// MarksheetXLSX writes one summary row per page and one row per subject.
func (s *Service) MarksheetXLSX(ctx context.Context, resp marksheet.ExtractResponse) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// the default sheet becomes the summary
	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SubjectsSheet); err != nil {
		return nil, err
	}
	writeHeader(f, SummarySheet, summaryHeaders)
	writeHeader(f, SubjectsSheet, subjectHeaders)

	summaryRow, subjectRow := 2, 2
	for _, pr := range resp.Results {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, summaryRow)
			_ = f.SetCellValue(SummarySheet, cell, v)
		}
		write(1, pr.Page)

		d := pr.Data
		switch {
		case d == nil:
			write(15, pr.Error)
		case d.Error != "":
			write(15, d.Error)
		default:
			write(2, d.StudentName)
			write(3, d.RollNumber)
			write(4, d.ClassGrade)
			write(5, d.Section)
			write(6, d.SchoolName)
			write(7, d.ExamName)
			write(8, d.Session)
			write(9, d.ObtainedMarks)
			write(10, d.TotalMarks)
			write(11, d.Percentage)
			write(12, d.OverallGrade)
			write(13, d.PassFail)
			write(14, string(d.SourceType))

			for _, sub := range d.Subjects {
				values := []any{pr.Page, d.StudentName, sub.SubjectName, sub.MarksObtained, sub.TotalMarks, sub.Grade}
				cell, _ := excelize.CoordinatesToCellName(1, subjectRow)
				_ = f.SetSheetRow(SubjectsSheet, cell, &values)
				subjectRow++
			}
		}
		summaryRow++
	}

	_ = f.SetColWidth(SummarySheet, "A", "A", 8)
	_ = f.SetColWidth(SummarySheet, "B", "H", 22)
	_ = f.SetColWidth(SummarySheet, "I", "N", 14)
	_ = f.SetColWidth(SummarySheet, "O", "O", 40)
	_ = f.SetColWidth(SubjectsSheet, "B", "C", 24)
	_ = f.SetColWidth(SubjectsSheet, "D", "F", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	common.LoggerFrom(ctx, s.logger).Info("export.xlsx.ok",
		"file", resp.Filename,
		"pages", len(resp.Results),
		"subjects", subjectRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}
