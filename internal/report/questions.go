package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const maxDiscussionQuestions = 5

const questionsQueryTemplate = `
Generate 3-5 very short, simple questions for a child based on their psychological profile.

Profile Summary:
%s

GUIDELINES:
1. Keep questions VERY SHORT (max 10-12 words each)
2. Focus on one specific aspect of their report
3. Make questions simple and easy to understand
4. Use child-friendly language
5. Reference their specific strengths or challenges
6. Questions should be open-ended but concise

Return ONLY the questions as a numbered list, nothing else.
`

var numberedLine = regexp.MustCompile(`^[1-9][.)]\s*`)

// WeekTag formats t's ISO week as "2025-W36". The week is not zero-padded.
func WeekTag(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%d-W%d", y, w)
}

func profileSummary(p Profile, info PersonalInfo) string {
	var b strings.Builder
	b.WriteString("CHILD PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", info.Name.Or("Unknown"))
	fmt.Fprintf(&b, "- Age: %s\n", info.Age.Or("Unknown"))
	fmt.Fprintf(&b, "- Date of Birth: %s\n", info.DOB.Or("Unknown"))
	fmt.Fprintf(&b, "- Zodiac Sign: %s\n\n", p.Zodiac.Or("Unknown"))
	b.WriteString("Key Strengths (first 2):\n")
	b.WriteString(bullets(firstN(p.Strengths, 2)))
	b.WriteString("\n\nAreas for Improvement (first 2):\n")
	b.WriteString(bullets(firstN(p.Weaknesses, 2)))
	return b.String()
}

// BuildQuestionsQuery renders the retrieval question that asks for
// conversation starters.
func BuildQuestionsQuery(p Profile, info PersonalInfo) string {
	return fmt.Sprintf(questionsQueryTemplate, profileSummary(p, info))
}

// ParseQuestions keeps numbered or bulleted lines longer than five
// characters, with their markers removed.
func ParseQuestions(text string) []string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		var q string
		switch {
		case numberedLine.MatchString(line):
			q = numberedLine.ReplaceAllString(line, "")
		case strings.HasPrefix(line, "-"), strings.HasPrefix(line, "•"):
			_, size := utf8.DecodeRuneInString(line)
			q = line[size:]
		default:
			continue
		}
		q = strings.TrimSpace(q)
		if utf8.RuneCountInString(q) > 5 {
			out = append(out, q)
		}
	}
	return out
}

// FallbackQuestions builds conversation starters from the first strength
// and weakness, topped up with general questions.
func FallbackQuestions(p Profile, info PersonalInfo) []string {
	var out []string
	if len(p.Strengths) > 0 {
		s := "your " + plainLower(p.Strengths[0])
		out = append(out,
			fmt.Sprintf("What do you enjoy about %s?", s),
			fmt.Sprintf("How does %s make you feel?", s),
		)
	}
	if len(p.Weaknesses) > 0 {
		w := "about " + plainLower(p.Weaknesses[0])
		out = append(out,
			fmt.Sprintf("How do you feel about %s?", w),
			fmt.Sprintf("What helps you with %s?", w),
		)
	}
	out = append(out,
		fmt.Sprintf("What makes you happy, %s?", info.Name.Or("there")),
		"What's your favorite thing to do?",
		"Who do you like spending time with?",
		"What are you good at?",
	)
	return firstN(out, maxDiscussionQuestions)
}

func plainLower(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "**", "")))
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "• " + it
	}
	return strings.Join(lines, "\n")
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
