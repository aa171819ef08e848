package tutor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// Personality sets the tone of tutor answers.
type Personality string

const (
	PersonalityFriendly  Personality = "Friendly"
	PersonalityFormal    Personality = "Formal"
	PersonalityTechnical Personality = "Technical"
)

// ErrUnknownPersonality is returned for an unrecognized tone.
var ErrUnknownPersonality = errors.New("unknown personality")

// ParsePersonality accepts any casing; an empty value means Friendly.
func ParsePersonality(raw string) (Personality, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "friendly":
		return PersonalityFriendly, nil
	case "formal":
		return PersonalityFormal, nil
	case "technical":
		return PersonalityTechnical, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownPersonality, raw)
}

var askTemplate = template.Must(template.New("ask").Parse(
	`You are a cybersecurity expert chatbot. Your primary goal is to explain complex topics in a clear and engaging way.

Your personality should be: {{.Personality}}.
- If Friendly, be conversational and use analogies.
- If Formal, be direct, professional, and structured.
- If Technical, provide detailed, in-depth explanations with technical terms.

For a complex cybersecurity question:
1. Break the concept down in plain language. Avoid jargon unless the personality is Technical.
2. Use a real-world analogy, especially when Friendly.
3. Use markdown: bold key terms, bullet points where they help.

For a greeting or a simple question, answer directly without that structure.

Question: {{.Question}}`))

var feedbackTemplate = template.Must(template.New("feedback").Parse(
	`You are a friendly and encouraging cybersecurity tutor. A user has just completed a quiz. Write a short, personalized feedback message of 1-2 sentences.

Quiz title: {{.Title}}
Score: {{.Score}} out of {{.Total}}

If the score is 80% or more, praise them and reinforce the topic.
If it is mid-range, acknowledge the effort and suggest reviewing the missed questions.
If it is low, be encouraging, and suggest retrying after reviewing the basics or asking the AI tutor about the topic.
Infer the topic from the quiz title and mention it.

Reply with the feedback message only.`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func askPrompt(question string, p Personality) (string, error) {
	return render(askTemplate, struct {
		Question    string
		Personality Personality
	}{question, p})
}

func feedbackPrompt(title string, score, total int) (string, error) {
	return render(feedbackTemplate, struct {
		Title        string
		Score, Total int
	}{title, score, total})
}

// fallbackFeedback is used when the completion service is unavailable.
func fallbackFeedback(title string, score, total int) string {
	pct := 0
	if total > 0 {
		pct = score * 100 / total
	}
	switch {
	case pct >= 80:
		return fmt.Sprintf("Excellent work on %s! You clearly know this topic well.", title)
	case pct >= 50:
		return fmt.Sprintf("Good effort on %s. Review the questions you missed to lock in what you learned.", title)
	default:
		return fmt.Sprintf("Keep going with %s. Brush up on the basics or ask the AI tutor, then give the quiz another try.", title)
	}
}
