package marksheet

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Khalidfayaz/kidscope-backend/constants"
)

func TestParseSpreadsheetCSV(t *testing.T) {
	csv := "\xef\xbb\xbfSubject,Marks Obtained,Total Marks\n" +
		"Maths,88,100\n" +
		"English,A+,100\n" +
		"Science,N/A,\n" +
		",,\n" +
		"Hindi,\"72\",fifty\n"

	r := ParseSpreadsheet("marks.CSV", []byte(csv))
	if r.Error != "" {
		t.Fatalf("unexpected error: %s", r.Error)
	}
	if len(r.Subjects) != 4 {
		t.Fatalf("subjects: want=4 got=%d", len(r.Subjects))
	}
	want := []int{88, 95, 0, 72}
	for i, w := range want {
		if r.Subjects[i].MarksObtained != w {
			t.Fatalf("subject %d: want=%d got=%d", i, w, r.Subjects[i].MarksObtained)
		}
	}
	if r.Subjects[1].Grade != "A+" {
		t.Fatalf("grade label kept: got=%q", r.Subjects[1].Grade)
	}
	if r.ObtainedMarks != 255 || r.TotalMarks != 400 {
		t.Fatalf("totals: got=%v/%v", r.ObtainedMarks, r.TotalMarks)
	}
	if r.Percentage != 63.75 || r.PassFail != constants.Pass {
		t.Fatalf("percentage: got=%v %s", r.Percentage, r.PassFail)
	}
	if r.OtherInfo != spreadsheetOrigin || r.StudentName != constants.Unknown {
		t.Fatalf("defaults: got other_info=%v student=%q", r.OtherInfo, r.StudentName)
	}
	if r.SourceType != constants.SourceGrade {
		t.Fatalf("source type: got=%s", r.SourceType)
	}
}

func TestParseSpreadsheetXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"subject", "marks obtained", "total marks", "Grade"},
		{"Maths", 30, 100, ""},
		{"English", "", 100, "B"},
	}
	for i, row := range rows {
		cellName, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cellName, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	r := ParseSpreadsheet("marks.xlsx", buf.Bytes())
	if r.Error != "" {
		t.Fatalf("unexpected error: %s", r.Error)
	}
	if len(r.Subjects) != 2 {
		t.Fatalf("subjects: want=2 got=%d", len(r.Subjects))
	}
	if r.Subjects[1].MarksObtained != 65 || r.Subjects[1].Grade != "B" {
		t.Fatalf("grade column fallback: got=%+v", r.Subjects[1])
	}
	if r.Percentage != 47.5 || r.PassFail != constants.Pass {
		t.Fatalf("percentage: got=%v %s", r.Percentage, r.PassFail)
	}
}

func TestParseSpreadsheetBrokenWorkbook(t *testing.T) {
	r := ParseSpreadsheet("legacy.xls", []byte("\xd0\xcf\x11\xe0 not really a workbook"))
	if !strings.HasPrefix(r.Error, "Excel parsing error: ") {
		t.Fatalf("error: got=%q", r.Error)
	}
}

func TestParseSpreadsheetEmpty(t *testing.T) {
	r := ParseSpreadsheet("empty.csv", []byte("\n\n"))
	if !strings.HasPrefix(r.Error, "Excel parsing error: ") {
		t.Fatalf("error: got=%q", r.Error)
	}
}

func TestParseSpreadsheetZeroTotal(t *testing.T) {
	r := ParseSpreadsheet("only-header.csv", []byte("Subject,Marks Obtained,Total Marks\n"))
	if r.Error != "" {
		t.Fatalf("unexpected error: %s", r.Error)
	}
	if r.Percentage != 0 || r.PassFail != constants.Fail || len(r.Subjects) != 0 {
		t.Fatalf("got=%+v", r)
	}
}

func TestParseSpreadsheetXLSExtensionOnOOXML(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	row := []any{"Subject", "Marks Obtained", "Total Marks"}
	if err := f.SetSheetRow(f.GetSheetName(0), "A1", &row); err != nil {
		t.Fatal(err)
	}
	row = []any{"Maths", 45, 50}
	if err := f.SetSheetRow(f.GetSheetName(0), "A2", &row); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	r := ParseSpreadsheet("renamed.xls", buf.Bytes())
	if r.Error != "" {
		t.Fatalf("unexpected error: %s", r.Error)
	}
	if len(r.Subjects) != 1 || r.Percentage != 90 {
		t.Fatalf("got subjects=%+v percentage=%v", r.Subjects, r.Percentage)
	}
}

func TestReadXLSRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("plain text"), []byte("\xd0\xcf\x11\xe0\xa1\xb1\x1a\xe1 truncated")} {
		if _, err := readXLS(data); err == nil {
			t.Fatalf("readXLS(%q): want error", data)
		}
	}
}
