package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		ok   bool
		key  string
	}{
		{"plain", `{"student_name":"Asha"}`, true, "student_name"},
		{"prose around", "Here is the data:\n{\"a\": 1}\nThanks!", true, "a"},
		{"fenced", "```json\n{\"b\": {\"c\": 2}}\n```", true, "b"},
		{"raw newline in string", "{\"remarks\": \"good\nwork\"}", true, "remarks"},
		{"no object", "no json here", false, ""},
		{"broken", "{\"a\": }", false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tc.in)
			if ok != tc.ok {
				t.Fatalf("ok: want=%v got=%v", tc.ok, ok)
			}
			if !ok {
				return
			}
			var m map[string]any
			if err := json.Unmarshal(got, &m); err != nil {
				t.Fatalf("result not json: %v", err)
			}
			if _, has := m[tc.key]; !has {
				t.Fatalf("missing key %q in %s", tc.key, got)
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	in := "```json\n{\"answer\":\"hi\"}\n```"
	if got := StripCodeFence(in); got != `{"answer":"hi"}` {
		t.Fatalf("want=%q got=%q", `{"answer":"hi"}`, got)
	}
}

func TestSanitizeMarksheetJSON(t *testing.T) {
	raw := []byte(`{
		"academic_year/session": "2023-24",
		"roll_number": 1234,
		"other_info": ["GPA: 3.4"],
		"subjects": [
			{"subject": "Maths", "marks": "88", "max_marks": 100},
			"stray",
			{"name": "Science", "obtained": "A", "grade": 1}
		]
	}`)
	out, changes, err := SanitizeMarksheetJSON(raw, nil)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if len(changes) == 0 {
		t.Fatal("want changes recorded")
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatal(err)
	}
	if m["academic_year"] != "2023-24" {
		t.Fatalf("academic_year: got=%v", m["academic_year"])
	}
	if m["roll_number"] != "1234" {
		t.Fatalf("roll_number: want=%q got=%v", "1234", m["roll_number"])
	}
	if s, ok := m["other_info"].(string); !ok || !strings.Contains(s, "GPA") {
		t.Fatalf("other_info: got=%v", m["other_info"])
	}
	subs := m["subjects"].([]any)
	if len(subs) != 2 {
		t.Fatalf("subjects: want=2 got=%d", len(subs))
	}
	first := subs[0].(map[string]any)
	if first["subject_name"] != "Maths" || first["theory_marks"] != "88" || first["total_marks"] != float64(100) {
		t.Fatalf("first subject: got=%v", first)
	}
	second := subs[1].(map[string]any)
	if second["subject_name"] != "Science" || second["theory_marks"] != "A" || second["grade"] != "1" {
		t.Fatalf("second subject: got=%v", second)
	}
}

func TestValidateLenient(t *testing.T) {
	schema := MustCompileSchema("marksheet.json", BuildMarksheetJSONSchema())

	good := []byte(`{"student_name":"Asha","subjects":[{"subject_name":"Maths","theory_marks":90}]}`)
	if out, err := ValidateLenient(schema, good, SanitizeMarksheetJSON, nil); err != nil || string(out) != string(good) {
		t.Fatalf("strict path: err=%v out=%s", err, out)
	}

	fixable := []byte(`{"roll_number": 42, "other_info": 3.5, "subjects": ["x"]}`)
	out, err := ValidateLenient(schema, fixable, SanitizeMarksheetJSON, nil)
	if err != nil {
		t.Fatalf("lenient path: %v", err)
	}
	if err := ValidateJSON(schema, out); err != nil {
		t.Fatalf("sanitized doc invalid: %v", err)
	}

	unfixable := []byte(`{"subjects":[{"subject_name":"Maths","theory_marks":{"x":1}}]}`)
	if _, err := ValidateLenient(schema, unfixable, SanitizeMarksheetJSON, nil); err == nil {
		t.Fatal("want error for object theory_marks")
	}
}

func TestDiscussionReplySchema(t *testing.T) {
	schema := MustCompileSchema("reply.json", BuildDiscussionReplyJSONSchema())
	if err := ValidateJSON(schema, []byte(`{"answer":"Hi!","questions":["a","b","c"]}`)); err != nil {
		t.Fatalf("valid reply rejected: %v", err)
	}
	if err := ValidateJSON(schema, []byte(`{"answer": 5}`)); err == nil {
		t.Fatal("numeric answer accepted")
	}
	if err := ValidateJSON(schema, []byte(`{"answer": "ok", "questions": "one"}`)); err == nil {
		t.Fatal("string questions accepted")
	}
}

func TestDataURL(t *testing.T) {
	got := DataURL(ImageInput{MIMEType: "image/png", Data: []byte("abc")})
	if got != "data:image/png;base64,YWJj" {
		t.Fatalf("got=%q", got)
	}
	if ImageFormat("image/jpeg") != "jpeg" || ImageFormat("") != "png" {
		t.Fatal("ImageFormat mismatch")
	}
}
