package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PaddingQuestion fills a reply up to three follow-up questions.
const PaddingQuestion = "What are your thoughts about that?"

const replyQuestionCount = 3

// Mode selects how the child's message is framed and which canned replies
// back it up.
type Mode struct {
	Name string
	// Framing introduces the child's message through a single %s verb.
	Framing string
	// Subject is what the response addresses in the task list.
	Subject string
	// DefaultAnswer is used when a reply parses but carries no answer.
	DefaultAnswer string
	// Fallback tops up heuristically parsed replies.
	Fallback []string
	// Failure is the whole reply sent when the model call fails.
	Failure Reply
}

var (
	// ModeFollowup answers a discussion question the child picked.
	ModeFollowup = Mode{
		Name:          "followup",
		Framing:       `The child was asked this question: "%s".`,
		Subject:       "the child's answer",
		DefaultAnswer: "That's really interesting! 😊 I'd love to hear more about that.",
		Fallback: []string{
			"Can you tell me more about that?",
			"What made you feel that way?",
			"How would you like to build on this strength?",
		},
		Failure: Reply{
			Answer: "That's really interesting! 😊 Thanks for sharing. I'd love to hear more about your experiences and thoughts.",
			Questions: []string{
				"Can you tell me more about that?",
				"What made you feel that way?",
				"How would you like to build on this?",
			},
		},
	}

	// ModeFree answers a question the child typed.
	ModeFree = Mode{
		Name:          "free",
		Framing:       `The child asked: "%s".`,
		Subject:       "the child's question",
		DefaultAnswer: "That's a great question! 😊 Let's explore that together.",
		Fallback: []string{
			"Can you tell me more about what you're thinking?",
			"What made you curious about this?",
			"How do you feel about this topic?",
		},
		Failure: Reply{
			Answer: "That's a really good question! 😊 I'd love to explore that with you. Your curiosity is wonderful!",
			Questions: []string{
				"Can you tell me more about what you're thinking?",
				"What made you curious about this?",
				"How do you feel about this topic?",
			},
		},
	}
)

// FailureReply returns a copy of the mode's canned reply.
func (m Mode) FailureReply() Reply {
	return Reply{Answer: m.Failure.Answer, Questions: append([]string{}, m.Failure.Questions...)}
}

const discussionQueryTemplate = `
You are a compassionate child psychologist named Saarthi having a conversation with a child.

%s

%s

CHILD'S COMPLETE PROFILE:
- Name: %s
- Age: %s
- Date of Birth: %s
- Zodiac Sign: %s

PSYCHOLOGICAL REPORT:
Strengths: %s
Areas for Improvement: %s
Recommendations: %s

TASK:
1. Provide a detailed, empathetic response to %s (3-4 sentences)
2. Reference specific aspects of their psychological profile where relevant
3. Use a warm, supportive, and encouraging tone
4. Make it personal by using their name and specific details from their report
5. Then suggest 3 follow-up questions that continue the conversation naturally

RESPONSE FORMAT:
{
  "answer": "Your detailed empathetic response here (3-4 sentences)",
  "questions": ["Follow-up question 1", "Follow-up question 2", "Follow-up question 3"]
}
`

const historyTurns = 4

// HistoryContext renders the last four turns of a conversation. Roles
// "user" and "child" are the child; anything else is the assistant.
func HistoryContext(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	if len(turns) > historyTurns {
		turns = turns[len(turns)-historyTurns:]
	}
	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, t := range turns {
		role := "Assistant"
		switch strings.ToLower(strings.TrimSpace(string(t.Role))) {
		case "user", "child":
			role = "Child"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, t.Text)
	}
	return b.String()
}

// BuildDiscussionQuery renders the retrieval question for one chat turn.
func BuildDiscussionQuery(m Mode, req DiscussionRequest) string {
	return fmt.Sprintf(discussionQueryTemplate,
		HistoryContext(req.ConversationHistory),
		fmt.Sprintf(m.Framing, req.Question),
		req.PersonalInfo.Name.Or("Unknown"),
		req.PersonalInfo.Age.Or("Unknown"),
		req.PersonalInfo.DOB.Or("Unknown"),
		req.Report.Zodiac.Or("Unknown"),
		listLiteral(req.Report.Strengths),
		listLiteral(req.Report.Weaknesses),
		listLiteral(req.Report.Recommendations),
		m.Subject,
	)
}

func listLiteral(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
