package marksheet

import (
	"encoding/json"

	"github.com/Khalidfayaz/kidscope-backend/constants"
)

// Subject is one normalized subject row.
type Subject struct {
	SubjectName   string `json:"subject_name"`
	MarksObtained int    `json:"marks_obtained"`
	TheoryMarks   int    `json:"theory_marks"`
	TotalMarks    int    `json:"total_marks"`
	Grade         string `json:"grade"`
}

// Result is the normalized content of one marksheet page or spreadsheet.
type Result struct {
	StudentName        string               `json:"student_name"`
	FatherName         string               `json:"father_name"`
	MotherName         string               `json:"mother_name"`
	RollNumber         string               `json:"roll_number"`
	RegistrationNumber string               `json:"registration_number"`
	ClassGrade         string               `json:"class_grade"`
	Section            string               `json:"section"`
	AcademicYear       string               `json:"academic_year"`
	Session            string               `json:"session"`
	ExamName           string               `json:"exam_name"`
	SchoolName         string               `json:"school_name"`
	Subjects           []Subject            `json:"subjects"`
	ObtainedMarks      float64              `json:"obtained_marks"`
	TotalMarks         float64              `json:"total_marks"`
	Percentage         float64              `json:"percentage"`
	OverallGrade       string               `json:"overall_grade"`
	PassFail           string               `json:"pass_fail"`
	Remarks            string               `json:"remarks"`
	OtherInfo          any                  `json:"other_info"`
	SourceType         constants.SourceType `json:"source_type"`

	// Error is set instead of every other field when a spreadsheet could
	// not be read.
	Error string `json:"error,omitempty"`
}

type resultAlias Result

// MarshalJSON emits only the error for failed spreadsheet parses.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(map[string]string{"error": r.Error})
	}
	return json.Marshal(resultAlias(r))
}

// PageResult is the outcome for one page. Data is nil when Error is set.
type PageResult struct {
	Page  int     `json:"page"`
	Data  *Result `json:"data,omitempty"`
	Error string  `json:"error,omitempty"`
}

// ExtractResponse is returned by the extract endpoint.
type ExtractResponse struct {
	Filename       string       `json:"filename"`
	PagesProcessed int          `json:"pages_processed"`
	Results        []PageResult `json:"results"`
}

// ErrUnparseablePage is the per-page error text when no JSON could be recovered.
const ErrUnparseablePage = "could not parse model output"

func newResult() Result {
	return Result{
		StudentName:        constants.Unknown,
		FatherName:         constants.Unknown,
		MotherName:         constants.Unknown,
		RollNumber:         constants.Unknown,
		RegistrationNumber: constants.Unknown,
		ClassGrade:         constants.Unknown,
		Section:            constants.Unknown,
		AcademicYear:       constants.Unknown,
		Session:            constants.Unknown,
		ExamName:           constants.Unknown,
		SchoolName:         constants.Unknown,
		Subjects:           []Subject{},
		OverallGrade:       constants.Unknown,
		PassFail:           constants.Fail,
		Remarks:            constants.Unknown,
		OtherInfo:          constants.Unknown,
		SourceType:         constants.SourceMarks,
	}
}
