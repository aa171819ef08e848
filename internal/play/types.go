package play

import (
	"github.com/google/uuid"

	"github.com/cyberguardian/platform/internal/outcome"
	"github.com/cyberguardian/platform/internal/quiz"
)

// QuestionView is a question as shown to the player. The correct answer is withheld.
type QuestionView struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	Options    []string        `json:"options"`
	Difficulty quiz.Difficulty `json:"difficulty"`
}

// AnswerView reveals the verdict on the active question once it is answered.
type AnswerView struct {
	Selected      string       `json:"selected"`
	Outcome       quiz.Outcome `json:"outcome"`
	CorrectAnswer string       `json:"correct_answer"`
}

// View is the client-facing state of a session.
type View struct {
	SessionID  uuid.UUID        `json:"session_id"`
	QuizID     string           `json:"quiz_id"`
	QuizTitle  string           `json:"quiz_title"`
	Review     bool             `json:"review"`
	Phase      quiz.Phase       `json:"phase"`
	Position   int              `json:"position"`
	Total      int              `json:"total"`
	Score      int              `json:"score"`
	Difficulty quiz.Difficulty  `json:"difficulty"`
	Question   *QuestionView    `json:"question,omitempty"`
	Answer     *AnswerView      `json:"answer,omitempty"`
	Summary    *outcome.Summary `json:"summary,omitempty"`
}

func newView(id uuid.UUID, sess *quiz.Session) View {
	v := View{
		SessionID:  id,
		QuizID:     sess.QuizID(),
		QuizTitle:  sess.QuizTitle(),
		Review:     sess.IsReview(),
		Phase:      sess.Phase(),
		Position:   sess.AnsweredCount(),
		Total:      sess.Total(),
		Score:      sess.Score(),
		Difficulty: sess.Difficulty(),
	}

	q, ok := sess.CurrentQuestion()
	if !ok {
		return v
	}
	v.Position++
	v.Question = &QuestionView{
		ID:         q.ID,
		Text:       q.Text,
		Options:    append([]string(nil), q.Options...),
		Difficulty: q.Difficulty,
	}
	if sess.Phase() == quiz.PhaseAnswered {
		v.Answer = &AnswerView{
			Selected:      sess.LastSelected(),
			Outcome:       sess.LastOutcome(),
			CorrectAnswer: q.CorrectAnswer,
		}
	}
	return v
}
