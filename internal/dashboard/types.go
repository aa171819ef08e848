package dashboard

import "github.com/cyberguardian/platform/internal/db/repository"

// Learning levels, by average percent.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

const (
	intermediateThreshold = 60
	advancedThreshold     = 90

	recentLimit = 5
	rankLimit   = 5
)

// Stats summarizes a user's results.
type Stats struct {
	QuizzesTaken   int `json:"quizzes_taken"`
	AveragePercent int `json:"average_percent"`
	BestPercent    int `json:"best_percent"`
}

// Level places the user on the learning journey. ProgressToNext is nil at the top level.
type Level struct {
	Name           string  `json:"name"`
	NextLevel      *string `json:"next_level,omitempty"`
	ProgressToNext *int    `json:"progress_to_next,omitempty"`
}

// UserDashboard is everything a learner sees about their own progress.
type UserDashboard struct {
	Results []repository.QuizResult `json:"results"`
	Recent  []repository.QuizResult `json:"recent"`
	Stats   Stats                   `json:"stats"`
	Level   Level                   `json:"level"`
	Badges  []repository.Badge      `json:"badges"`
}

// Counts are platform-wide totals.
type Counts struct {
	Users    int `json:"users"`
	Quizzes  int `json:"quizzes"`
	Results  int `json:"results"`
	Feedback int `json:"feedback"`
}

// AdminDashboard is the platform overview.
type AdminDashboard struct {
	Counts        Counts                      `json:"counts"`
	RecentResults []repository.QuizResult     `json:"recent_results"`
	MostAttempted []repository.QuizAttempts   `json:"most_attempted"`
	MostFailed    []repository.FailedQuestion `json:"most_failed_questions"`
}
