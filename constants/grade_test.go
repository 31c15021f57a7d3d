package constants

import "testing"

func TestGradeToMarksIsBijection(t *testing.T) {
	seen := map[int]string{}
	for _, label := range GradeLabels() {
		m, ok := GradeToMarks[label]
		if !ok {
			t.Fatalf("label %q missing from table", label)
		}
		if prev, dup := seen[m]; dup {
			t.Fatalf("marks %d shared by %q and %q", m, prev, label)
		}
		seen[m] = label
	}
	if len(seen) != len(GradeToMarks) {
		t.Fatalf("table size: want=%d got=%d", len(seen), len(GradeToMarks))
	}
}

func TestMarksForGrade(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"A+", 95, true},
		{" b+ ", 75, true},
		{"f", 0, true},
		{"E", 15, true},
		{"A++", 0, false},
		{"Excellent", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := MarksForGrade(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("MarksForGrade(%q): want=(%d,%v) got=(%d,%v)", tt.in, tt.want, tt.ok, got, ok)
		}
	}
}

func TestGPAToGrade(t *testing.T) {
	tests := map[string]string{
		"4.0":  "A",
		"3.6":  "A",
		"3.59": "B+",
		"3.2":  "B+",
		"2.8":  "B",
		"2.4":  "C+",
		"2.0":  "C",
		"1.6":  "D+",
		"1.2":  "D",
		"0.5":  "E",
		"N/A":  "N/A",
		"":     "N/A",
		"abc":  "N/A",
	}
	for in, want := range tests {
		if got := GPAToGrade(in); got != want {
			t.Fatalf("GPAToGrade(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestMapExtToFormat(t *testing.T) {
	tests := map[string]FileFormat{
		".XLSX": SPREADSHEET,
		"csv":   SPREADSHEET,
		".pdf":  PDF,
		".JPeG": IMAGE,
		".webp": IMAGE,
		".docx": UNKNOWN,
		"":      UNKNOWN,
	}
	for in, want := range tests {
		if got := MapExtToFormat(in); got != want {
			t.Fatalf("MapExtToFormat(%q): want=%q got=%q", in, want, got)
		}
	}
}
