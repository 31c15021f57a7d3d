package llm

// marksheet fields are loosely typed: models return marks as numbers, numeric
// strings or grade labels, and other_info as either a string or an object.
var looseScalar = map[string]any{"type": []string{"string", "number", "integer", "null"}}

// BuildMarksheetJSONSchema describes one page of marksheet output.
func BuildMarksheetJSONSchema() map[string]any {
	subject := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subject_name":    map[string]any{"type": []string{"string", "null"}},
			"theory_marks":    looseScalar,
			"practical_marks": looseScalar,
			"total_marks":     looseScalar,
			"grade":           map[string]any{"type": []string{"string", "null"}},
		},
	}
	str := map[string]any{"type": []string{"string", "number", "null"}}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"student_name":        str,
			"father_name":         str,
			"mother_name":         str,
			"roll_number":         str,
			"registration_number": str,
			"class_grade":         str,
			"section":             str,
			"academic_year":       str,
			"session":             str,
			"exam_name":           str,
			"school_name":         str,
			"subjects":            map[string]any{"type": "array", "items": subject},
			"obtained_marks":      looseScalar,
			"total_marks":         looseScalar,
			"percentage":          looseScalar,
			"overall_grade":       str,
			"pass_fail":           str,
			"remarks":             str,
			"other_info":          map[string]any{"type": []string{"string", "object", "null"}},
		},
	}
}

// BuildDiscussionReplyJSONSchema describes the conversational reply format.
func BuildDiscussionReplyJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer":    map[string]any{"type": "string"},
			"questions": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	}
}
