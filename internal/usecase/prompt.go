package usecase

import (
	"fmt"
	"strings"

	"github.com/hiremind/hiremind-api/internal/model"
)

const questionPrompt = `You are a professional interviewer running a spoken interview for the role of %s at %s.

Job description:
%s

Candidate name: %s

Candidate resume:
%s

Conversation so far:
%s

Ask the next interview question. Keep it to one or two sentences, suitable for being read aloud.
Build on the candidate's previous answers when there are any; otherwise greet the candidate by name and ask an opening question.
Respond strictly in JSON:
{"question": "<the next question>"}`

const analysisPrompt = `You are an experienced hiring manager evaluating a completed interview for the role of %s.

Transcript:
%s

Evaluate only what the candidate said. Respond strictly in JSON:
{
  "overallScore": <number 0-100>,
  "summary": "<two or three sentence summary of the candidate's performance>",
  "strengths": ["<strength>", "..."],
  "improvements": ["<area to improve>", "..."],
  "categoryScores": {
    "communication": <number 0-100>,
    "technicalKnowledge": <number 0-100>,
    "problemSolving": <number 0-100>,
    "roleFit": <number 0-100>
  }
}`

func formatConversation(entries []model.ConversationEntry) string {
	if len(entries) == 0 {
		return "(no conversation yet)"
	}
	var b strings.Builder
	for _, e := range entries {
		speaker := "Candidate"
		if e.Role == "ai" || e.Role == "assistant" || e.Role == "model" {
			speaker = "Interviewer"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, strings.TrimSpace(e.Text))
	}
	return strings.TrimRight(b.String(), "\n")
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
