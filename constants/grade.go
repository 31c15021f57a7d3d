package constants

import (
	"strconv"
	"strings"
)

// PassPercentage is the inclusive percentage threshold for "Pass".
const PassPercentage = 40.0

// DefaultMaxMarks is used when a subject's maximum cannot be parsed.
const DefaultMaxMarks = 100

// GradeToMarks maps the closed set of letter grades to mark equivalents.
var GradeToMarks = map[string]int{
	"A+": 95,
	"A":  85,
	"B+": 75,
	"B":  65,
	"C+": 55,
	"C":  45,
	"D+": 35,
	"D":  25,
	"E":  15,
	"F":  0,
}

var gradeOrder = []string{"A+", "A", "B+", "B", "C+", "C", "D+", "D", "E", "F"}

// GradeLabels returns the grade labels from best to worst.
func GradeLabels() []string {
	out := make([]string, len(gradeOrder))
	copy(out, gradeOrder)
	return out
}

// MarksForGrade looks up a label after trimming and upper-casing it.
// Unknown labels yield (0, false).
func MarksForGrade(label string) (int, bool) {
	m, ok := GradeToMarks[strings.ToUpper(strings.TrimSpace(label))]
	return m, ok
}

// IsGradeLabel reports whether s is one of the known grade labels.
func IsGradeLabel(s string) bool {
	_, ok := MarksForGrade(s)
	return ok
}

// GPAToGrade converts a 4-point GPA to a letter grade. Blank, "N/A" and
// unparseable values return "N/A".
func GPAToGrade(gpa string) string {
	s := strings.TrimSpace(gpa)
	if IsBlank(s) {
		return "N/A"
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "N/A"
	}
	switch {
	case v >= 3.6:
		return "A"
	case v >= 3.2:
		return "B+"
	case v >= 2.8:
		return "B"
	case v >= 2.4:
		return "C+"
	case v >= 2.0:
		return "C"
	case v >= 1.6:
		return "D+"
	case v >= 1.2:
		return "D"
	default:
		return "E"
	}
}

// IsBlank treats the usual "nothing here" markers models and sheets emit as empty.
func IsBlank(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n/a", "na", "none", "null", "nil", "-", "--", Unknown:
		return true
	}
	return false
}
