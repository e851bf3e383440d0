package service

import (
	"fmt"
	"strings"
)

const tutorSystemPrompt = `You are a patient and encouraging AI tutor for K-12 students.
Guide the student toward the answer instead of giving it away: ask one question at a time,
break problems into small steps and check understanding before moving on.
Use vocabulary that fits the student's grade level and keep answers short.
Never ask for or repeat personal information. Text such as [STUDENT_NAME] or [SCHOOL_NAME]
stands in for details that were removed for privacy; refer to the student as "you".
If the student asks about something unsafe or unrelated to learning, gently steer back to the lesson.`

// BuildTutorSystemPrompt 拼接固定模板与可选的科目/主题行
func BuildTutorSystemPrompt(subject, topic string) string {
	prompt := tutorSystemPrompt
	if subject != "" {
		prompt += "\n\nSubject: " + subject
	}
	if topic != "" {
		prompt += "\nTopic: " + topic
	}
	return prompt
}

const summarySystemPrompt = `You review tutoring sessions and report on student progress.
Reply with a single JSON object and nothing else.`

const summaryInstructions = `Summarize the tutoring session below. Respond with strict JSON using exactly these fields:
{
  "summary": string,
  "performanceScore": integer from 1 to 100,
  "conceptsCovered": [string],
  "improvementAreas": [string],
  "strengthAreas": [string]
}`

// BuildSummaryPrompt renders the transcript as the single user turn of the
// summary request.
func BuildSummaryPrompt(subject, topic string, transcript []ChatMessage) string {
	var sb strings.Builder
	sb.WriteString(summaryInstructions)
	sb.WriteString("\n\n")
	if subject != "" {
		fmt.Fprintf(&sb, "Subject: %s\n", subject)
	}
	if topic != "" {
		fmt.Fprintf(&sb, "Topic: %s\n", topic)
	}
	sb.WriteString("\nTranscript:\n")
	for _, m := range transcript {
		speaker := "Student"
		if m.Role == "assistant" {
			speaker = "Tutor"
		}
		fmt.Fprintf(&sb, "%s: %s\n", speaker, m.Content)
	}
	return sb.String()
}
