package marksheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/Khalidfayaz/kidscope-backend/constants"
)

const spreadsheetOrigin = "Extracted from Excel/CSV"

type columns struct {
	subject, obtained, total, grade int
}

// ParseSpreadsheet reads a marks table from CSV or the first worksheet of an
// Excel workbook. Read failures come back in Result.Error, never as an error.
func ParseSpreadsheet(filename string, data []byte) Result {
	rows, err := readRows(filename, data)
	if err != nil {
		return Result{Error: "Excel parsing error: " + err.Error()}
	}
	return resultFromRows(rows)
}

func readRows(filename string, data []byte) ([][]string, error) {
	switch constants.NormalizeExt(filepath.Ext(filename)) {
	case "csv":
		r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		r.TrimLeadingSpace = true
		return r.ReadAll()
	case "xls":
		rows, err := readXLS(data)
		if err == nil {
			return rows, nil
		}
		// some .xls uploads are OOXML workbooks with the old extension
		if xrows, xerr := readXLSX(data); xerr == nil {
			return xrows, nil
		}
		return nil, err
	default:
		return readXLSX(data)
	}
}

// readXLS reads the first worksheet of a legacy BIFF workbook.
func readXLS(data []byte) (rows [][]string, err error) {
	defer func() {
		// the BIFF reader panics on some truncated files
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("corrupt xls workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("workbook has no sheets")
	}
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, int(row.LastCol()))
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func resultFromRows(rows [][]string) Result {
	r := newResult()
	r.OtherInfo = spreadsheetOrigin

	header := -1
	for i, row := range rows {
		if !blankRow(row) {
			header = i
			break
		}
	}
	if header < 0 {
		return Result{Error: "Excel parsing error: no columns to parse from file"}
	}
	cols := locateColumns(rows[header])

	var obtained, total int
	hasGrade := false
	for _, row := range rows[header+1:] {
		if blankRow(row) {
			continue
		}
		s := Subject{
			SubjectName: cell(row, cols.subject),
			Grade:       "N/A",
		}
		if s.SubjectName == "" {
			s.SubjectName = "Unknown"
		}

		raw := cell(row, cols.obtained)
		switch {
		case constants.IsGradeLabel(raw):
			s.MarksObtained, _ = constants.MarksForGrade(raw)
			s.Grade = strings.ToUpper(raw)
		case constants.IsBlank(raw):
			if g := cell(row, cols.grade); constants.IsGradeLabel(g) {
				s.MarksObtained, _ = constants.MarksForGrade(g)
			}
		default:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.MarksObtained = int(f)
			}
		}
		if g := cell(row, cols.grade); !constants.IsBlank(g) {
			s.Grade = g
		}
		s.TheoryMarks = s.MarksObtained
		s.TotalMarks = constants.DefaultMaxMarks
		if f, err := strconv.ParseFloat(cell(row, cols.total), 64); err == nil && f > 0 {
			s.TotalMarks = int(f)
		}
		if !constants.IsBlank(s.Grade) {
			hasGrade = true
		}

		r.Subjects = append(r.Subjects, s)
		obtained += s.MarksObtained
		total += s.TotalMarks
	}

	r.ObtainedMarks = float64(obtained)
	r.TotalMarks = float64(total)
	r.Percentage = Percentage(obtained, total)
	r.PassFail = constants.Fail
	if total > 0 {
		r.PassFail = PassFail(r.Percentage)
	}
	if hasGrade {
		r.SourceType = constants.SourceGrade
	}
	return r
}

func locateColumns(header []string) columns {
	c := columns{subject: -1, obtained: -1, total: -1, grade: -1}
	for i, h := range header {
		switch strings.ToLower(strings.Join(strings.Fields(h), " ")) {
		case "subject", "subject name":
			c.subject = i
		case "marks obtained", "obtained marks", "marks":
			c.obtained = i
		case "total marks", "max marks", "maximum marks":
			c.total = i
		case "grade":
			c.grade = i
		}
	}
	return c
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
