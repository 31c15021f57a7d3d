package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

const noAcademicRecords = "Academic records were not provided."

const reportQueryTemplate = `
Comprehensive Child Profile Analysis Request:

🧠 Basic Information:
- Date of Birth: %s
- Time of Birth: %s
- Place of Birth: %s
- Zodiac Sign: %s
- Famous People with Same Sign: %s

🧩 Psychological Traits (DSM-5 indicators):
%s

📘 Academic Performance Summary:
%s

📊 Please provide:
1. Three Key Strengths
2. Three Areas for Improvement
3. Three Personalized Recommendations

💡 Notes:
- Bold important traits (**like this**)
`

// BuildReportQuery renders the retrieval question for a report request.
func BuildReportQuery(req ReportRequest, zodiac string, famous []string) string {
	summary := AcademicSummary(req.AcademicRecords)
	if summary == "" {
		summary = noAcademicRecords
	}
	return fmt.Sprintf(reportQueryTemplate,
		req.DOB, req.TimeOfBirth, req.PlaceOfBirth,
		zodiac, strings.Join(famous, ", "),
		strings.Join(req.Symptoms, ", "),
		summary,
	)
}

// AcademicSummary formats academic_records, which is either free text or a
// list of {year, class, subjects: [{subject, percentage}]}. Blank input
// gives "".
func AcademicSummary(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return ""
		}
		return "\nAcademic Performance:\n" + t
	case []any:
		var lines []string
		for _, r := range t {
			rec, ok := r.(map[string]any)
			if !ok {
				continue
			}
			lines = append(lines, recordLine(rec))
		}
		if len(lines) == 0 {
			return ""
		}
		return "\nAcademic Performance:\n" + strings.Join(lines, "\n")
	}
	return ""
}

func recordLine(rec map[string]any) string {
	subjects, _ := rec["subjects"].([]any)
	parts := make([]string, 0, len(subjects))
	for _, s := range subjects {
		sub, ok := s.(map[string]any)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s%%)", stringify(sub["subject"]), stringify(sub["percentage"])))
	}
	return fmt.Sprintf("%s - Class %s: %s", stringify(rec["year"]), stringify(rec["class"]), strings.Join(parts, ", "))
}
