package report

import (
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Khalidfayaz/kidscope-backend/internal/llm"
)

var replySchema = llm.MustCompileSchema("discussion_reply.json", llm.BuildDiscussionReplyJSONSchema())

// ParseReply turns a model answer into a Reply with exactly three
// questions. A JSON object (fenced or embedded in prose) is preferred;
// otherwise answer and questions are picked out line by line.
func ParseReply(m Mode, text string) Reply {
	r, ok := parseStrictReply(m, text)
	if !ok {
		r = parseHeuristicReply(m, text)
	}
	r.Questions = exactlyThree(r.Questions)
	return r
}

func parseStrictReply(m Mode, text string) (Reply, bool) {
	cleaned := llm.StripCodeFence(text)
	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}
	if err := llm.ValidateJSON(replySchema, []byte(cleaned)); err != nil {
		return Reply{}, false
	}
	var doc struct {
		Answer    *string  `json:"answer"`
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return Reply{}, false
	}
	r := Reply{Answer: m.DefaultAnswer, Questions: doc.Questions}
	if doc.Answer != nil && strings.TrimSpace(*doc.Answer) != "" {
		r.Answer = *doc.Answer
	}
	return r, true
}

func parseHeuristicReply(m Mode, text string) Reply {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	var r Reply
	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "question") {
			continue
		}
		if strings.Contains(lower, "answer") || strings.Contains(lower, "response") || strings.Contains(line, ":") {
			if _, after, found := strings.Cut(line, ":"); found {
				r.Answer = strings.TrimSpace(after)
			} else {
				r.Answer = line
			}
			break
		}
	}
	if r.Answer == "" && len(lines) > 0 {
		r.Answer = lines[0]
	}

	for _, line := range lines {
		if utf8.RuneCountInString(line) <= 10 || !questionLike(line) {
			continue
		}
		q := line
		if strings.HasPrefix(q, "-") || strings.HasPrefix(q, "•") {
			_, size := utf8.DecodeRuneInString(q)
			q = strings.TrimSpace(q[size:])
		}
		if strings.Contains(q, ". ") {
			_, after, _ := strings.Cut(q, ".")
			q = strings.TrimSpace(after)
		}
		if !strings.Contains(strings.ToLower(q), "question") && utf8.RuneCountInString(q) > 10 {
			r.Questions = append(r.Questions, q)
		}
	}

	if r.Answer == "" {
		r.Answer = m.DefaultAnswer
	}
	if len(r.Questions) < replyQuestionCount {
		r.Questions = append(r.Questions, m.Fallback...)
	}
	return r
}

func questionLike(line string) bool {
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") {
		return true
	}
	first, _ := utf8.DecodeRuneInString(line)
	return unicode.IsDigit(first) || strings.Contains(strings.ToLower(line), "question")
}

func exactlyThree(qs []string) []string {
	out := make([]string, 0, replyQuestionCount)
	for _, q := range qs {
		if len(out) == replyQuestionCount {
			break
		}
		out = append(out, q)
	}
	for len(out) < replyQuestionCount {
		out = append(out, PaddingQuestion)
	}
	return out
}
