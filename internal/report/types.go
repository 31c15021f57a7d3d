package report

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
)

// Text accepts any JSON scalar and keeps its textual form. Front-ends send
// ages and years both as numbers and as strings.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*t = Text(stringify(v))
	return nil
}

func (t Text) String() string { return string(t) }

// Or returns def when t is blank.
func (t Text) Or(def string) string {
	if strings.TrimSpace(string(t)) == "" {
		return def
	}
	return string(t)
}

// TextList accepts a JSON array, a single scalar, or an object whose values
// are taken in key order.
type TextList []string

func (l *TextList) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*l = toTextList(v)
	return nil
}

func toTextList(v any) TextList {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make(TextList, 0, len(t))
		for _, e := range t {
			if e == nil {
				continue
			}
			out = append(out, stringify(e))
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(TextList, 0, len(t))
		for _, k := range keys {
			if t[k] == nil {
				continue
			}
			out = append(out, stringify(t[k]))
		}
		return out
	default:
		s := stringify(t)
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return TextList{s}
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Profile is a previously generated report as the front-end sends it back.
type Profile struct {
	Strengths       TextList `json:"strengths"`
	Weaknesses      TextList `json:"weaknesses"`
	Recommendations TextList `json:"recommendations"`
	Zodiac          Text     `json:"zodiac"`
}

func (p Profile) Empty() bool {
	return len(p.Strengths) == 0 && len(p.Weaknesses) == 0 &&
		len(p.Recommendations) == 0 && p.Zodiac == ""
}

type PersonalInfo struct {
	Name Text `json:"name"`
	Age  Text `json:"age"`
	DOB  Text `json:"dob"`
}

// Turn is one message of a discussion transcript.
type Turn struct {
	Role Text `json:"role"`
	Text Text `json:"text"`
}

// ReportRequest is the input of the profile report.
type ReportRequest struct {
	DOB             Text            `json:"dob"`
	TimeOfBirth     Text            `json:"time_of_birth"`
	PlaceOfBirth    Text            `json:"place_of_birth"`
	Symptoms        TextList        `json:"symptom_keywords"`
	AcademicRecords json.RawMessage `json:"academic_records,omitempty"`
}

// Sections is the generated report.
type Sections struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
	Zodiac          string   `json:"zodiac"`
	FamousPeople    []string `json:"famous_people"`
	RawAnswer       string   `json:"raw_answer"`
}

type QuestionsRequest struct {
	Report       Profile      `json:"report"`
	PersonalInfo PersonalInfo `json:"personal_info"`
}

type QuestionsResponse struct {
	Questions []string `json:"questions"`
	WeekTag   string   `json:"week_tag"`
}

type DiscussionRequest struct {
	Question            Text         `json:"question"`
	Report              Profile      `json:"report"`
	PersonalInfo        PersonalInfo `json:"personal_info"`
	ConversationHistory []Turn       `json:"conversation_history"`
}

// Reply always carries exactly three follow-up questions.
type Reply struct {
	Answer    string   `json:"answer"`
	Questions []string `json:"questions"`
}

var requiredReportFields = []string{"dob", "time_of_birth", "place_of_birth", "symptom_keywords"}

// DecodeReportRequest checks field presence and decodes body.
func DecodeReportRequest(body []byte) (ReportRequest, error) {
	var req ReportRequest
	fields, err := decodeObject(body)
	if err != nil {
		return req, err
	}
	v := common.NewValidator()
	for _, f := range requiredReportFields {
		v.Field(f, fields, common.Present)
	}
	if err := v.Err(); err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, common.InvalidInputf("Invalid request body: %v", err)
	}
	return req, nil
}

func DecodeQuestionsRequest(body []byte) (QuestionsRequest, error) {
	var req QuestionsRequest
	if _, err := decodeObject(body); err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, common.InvalidInputf("Invalid request body: %v", err)
	}
	if req.Report.Empty() {
		return req, common.InvalidInputf("Missing required field: report")
	}
	return req, nil
}

func DecodeDiscussionRequest(body []byte) (DiscussionRequest, error) {
	var req DiscussionRequest
	fields, err := decodeObject(body)
	if err != nil {
		return req, err
	}
	if err := common.NewValidator().Field("question", fields, common.Present).Err(); err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, common.InvalidInputf("Invalid request body: %v", err)
	}
	return req, nil
}

// decodeObject rejects bodies that are not a non-empty JSON object.
func decodeObject(body []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return nil, common.InvalidInputf("No JSON data received")
	}
	return fields, nil
}
