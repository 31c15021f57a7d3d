package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

var marksheetIdentityFields = []string{
	"student_name", "father_name", "mother_name", "roll_number",
	"registration_number", "class_grade", "section", "academic_year",
	"session", "exam_name", "school_name", "overall_grade", "pass_fail", "remarks",
}

// SanitizeMarksheetJSON
// - Renames known synonyms at page and subject level
// - Coerces identity fields to strings
// - Drops subject entries that are not objects
// - Stringifies other_info when it is neither a string nor an object
func SanitizeMarksheetJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	changes := make([]string, 0, 8)
	rename := func(obj map[string]any, from, to, scope string) {
		v, ok := obj[from]
		if !ok {
			return
		}
		if _, exists := obj[to]; !exists {
			obj[to] = v
		}
		delete(obj, from)
		changes = append(changes, scope+from+"->"+to)
	}

	rename(m, "academic_year/session", "academic_year", "")
	rename(m, "name", "student_name", "")
	rename(m, "student", "student_name", "")
	rename(m, "class", "class_grade", "")
	rename(m, "school", "school_name", "")
	rename(m, "exam", "exam_name", "")
	rename(m, "result", "pass_fail", "")
	if _, ok := m["marks"].([]any); ok {
		rename(m, "marks", "subjects", "")
	}

	for _, k := range marksheetIdentityFields {
		switch t := m[k].(type) {
		case float64:
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
			changes = append(changes, k+"(number)")
		case bool, []any, map[string]any:
			delete(m, k)
			changes = append(changes, k+"(type)")
		}
	}

	switch t := m["other_info"].(type) {
	case nil, string, map[string]any:
	default:
		b, _ := json.Marshal(t)
		m["other_info"] = string(b)
		changes = append(changes, "other_info(stringified)")
	}

	if subs, ok := m["subjects"].([]any); ok {
		kept := make([]any, 0, len(subs))
		for i, s := range subs {
			obj, ok := s.(map[string]any)
			if !ok {
				changes = append(changes, fmt.Sprintf("subjects[%d](type)", i))
				continue
			}
			scope := fmt.Sprintf("subjects[%d].", i)
			rename(obj, "subject", "subject_name", scope)
			rename(obj, "name", "subject_name", scope)
			rename(obj, "marks_obtained", "theory_marks", scope)
			rename(obj, "obtained_marks", "theory_marks", scope)
			rename(obj, "obtained", "theory_marks", scope)
			rename(obj, "marks", "theory_marks", scope)
			rename(obj, "max_marks", "total_marks", scope)
			rename(obj, "maximum_marks", "total_marks", scope)
			rename(obj, "full_marks", "total_marks", scope)
			if n, ok := obj["subject_name"].(float64); ok {
				obj["subject_name"] = strconv.FormatFloat(n, 'f', -1, 64)
			}
			if g, ok := obj["grade"]; ok {
				if _, isStr := g.(string); !isStr && g != nil {
					obj["grade"] = strings.TrimSpace(fmt.Sprint(g))
				}
			}
			kept = append(kept, obj)
		}
		m["subjects"] = kept
	} else if _, present := m["subjects"]; present {
		delete(m, "subjects")
		changes = append(changes, "subjects(type)")
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, changes, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(changes) > 0 {
		logger.Warn("llm.marksheet.normalize_sanitize", "changes", changes)
	}
	return out, changes, nil
}
