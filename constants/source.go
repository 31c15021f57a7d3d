package constants

// SourceType tags how a marksheet expresses performance.
type SourceType string

const (
	SourceMarks SourceType = "marks"
	SourceGrade SourceType = "grade"
	SourceGPA   SourceType = "gpa"
)

// Unknown is the placeholder for identity fields the extractor could not read.
const Unknown = "unknown"

const (
	Pass = "Pass"
	Fail = "Fail"
)
