package marksheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Khalidfayaz/kidscope-backend/constants"
)

// Normalize reconciles a decoded model page into a Result. It never fails:
// fields that cannot be read fall back to their defaults.
func Normalize(doc map[string]any) Result {
	r := newResult()

	r.StudentName = textOr(doc["student_name"], constants.Unknown)
	r.FatherName = textOr(doc["father_name"], constants.Unknown)
	r.MotherName = textOr(doc["mother_name"], constants.Unknown)
	r.RollNumber = textOr(doc["roll_number"], constants.Unknown)
	r.RegistrationNumber = textOr(doc["registration_number"], constants.Unknown)
	r.ClassGrade = textOr(doc["class_grade"], constants.Unknown)
	r.Section = textOr(doc["section"], constants.Unknown)
	r.ExamName = textOr(doc["exam_name"], constants.Unknown)
	r.SchoolName = textOr(doc["school_name"], constants.Unknown)
	r.OverallGrade = textOr(doc["overall_grade"], constants.Unknown)
	r.Remarks = textOr(doc["remarks"], constants.Unknown)
	r.AcademicYear = textOr(doc["academic_year"], constants.Unknown)

	session := textOr(doc["academic_year"], "")
	if session == "" {
		session = textOr(doc["session"], "")
	}
	if session != "" {
		r.Session = session
	}

	if raw, ok := doc["subjects"].([]any); ok {
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				r.Subjects = append(r.Subjects, normalizeSubject(m))
			}
		}
	}

	var obtained, total int
	for _, s := range r.Subjects {
		obtained += s.MarksObtained
		total += s.TotalMarks
	}
	if total > 0 {
		r.ObtainedMarks = float64(obtained)
		r.TotalMarks = float64(total)
		r.Percentage = Percentage(obtained, total)
		r.PassFail = PassFail(r.Percentage)
	} else {
		r.ObtainedMarks, _ = number(doc["obtained_marks"])
		r.TotalMarks, _ = number(doc["total_marks"])
		if p, ok := number(doc["percentage"]); ok {
			r.Percentage = p
			r.PassFail = PassFail(p)
		}
		if pf := textOr(doc["pass_fail"], ""); pf != "" {
			r.PassFail = pf
		}
	}

	if v, ok := doc["other_info"]; ok && v != nil {
		r.OtherInfo = v
	}
	gpa, gpaInObject := findGPA(doc["other_info"])
	if gpa != "" {
		r.OverallGrade = constants.GPAToGrade(gpa)
	}

	r.SourceType = constants.SourceMarks
	for _, s := range r.Subjects {
		if !constants.IsBlank(s.Grade) {
			r.SourceType = constants.SourceGrade
			break
		}
	}
	if gpaInObject {
		r.SourceType = constants.SourceGPA
	}
	return r
}

func normalizeSubject(m map[string]any) Subject {
	grade := textOr(m["grade"], "N/A")

	var marks int
	switch theory := m["theory_marks"].(type) {
	case string:
		switch {
		case constants.IsGradeLabel(theory):
			marks, _ = constants.MarksForGrade(theory)
		case constants.IsBlank(theory):
			marks, _ = constants.MarksForGrade(grade)
		default:
			if f, err := strconv.ParseFloat(strings.TrimSpace(theory), 64); err == nil {
				marks = int(f)
			}
		}
	case float64:
		marks = int(theory)
	case nil:
		marks, _ = constants.MarksForGrade(grade)
	}

	return Subject{
		SubjectName:   textOr(m["subject_name"], "Unknown"),
		MarksObtained: marks,
		TheoryMarks:   marks,
		TotalMarks:    maxMarks(m["total_marks"]),
		Grade:         grade,
	}
}

// findGPA returns the GPA carried by other_info and whether it came from an
// object key.
func findGPA(v any) (string, bool) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if strings.EqualFold(strings.TrimSpace(k), "gpa") {
				return textOr(val, ""), true
			}
		}
	case string:
		if strings.Contains(strings.ToUpper(t), "GPA") {
			parts := strings.Split(t, ":")
			return strings.TrimSpace(parts[len(parts)-1]), false
		}
	}
	return "", false
}

// Percentage is obtained/total*100 rounded to two decimals, 0 when total is 0.
func Percentage(obtained, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(obtained)/float64(total)*100*100) / 100
}

// PassFail applies the pass threshold.
func PassFail(percentage float64) string {
	if percentage >= constants.PassPercentage {
		return constants.Pass
	}
	return constants.Fail
}

func maxMarks(v any) int {
	if f, ok := number(v); ok && f > 0 {
		return int(f)
	}
	return constants.DefaultMaxMarks
}

// number accepts JSON numbers and numeric strings ("88", " 72.5 ", "90%").
func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(t), "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}

// textOr renders scalars as trimmed strings; blanks and non-scalars yield def.
func textOr(v any, def string) string {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case bool:
		s = fmt.Sprint(t)
	default:
		return def
	}
	if constants.IsBlank(s) {
		return def
	}
	return s
}
