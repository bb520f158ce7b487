package quiz

import (
	"fmt"
	"time"
)

const (
	// ActiveWindow is how long after creation students may view and submit a quiz.
	ActiveWindow = 15 * time.Minute
	// QuestionCount is the number of questions drawn for every quiz.
	QuestionCount = 5
)

// Quiz is either active or expired; the state is never stored, it follows from CreatedAt.
type Quiz struct {
	ID            int       `json:"id"`
	CourseID      int       `json:"course_id"`
	Title         string    `json:"title"`
	QuestionCount int       `json:"question_count"`
	Randomized    bool      `json:"randomized"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

func (q Quiz) ExpiresAt() time.Time { return q.CreatedAt.Add(ActiveWindow) }

// IsActive reports whether now is strictly before the end of the active window.
func (q Quiz) IsActive(now time.Time) bool { return now.Before(q.ExpiresAt()) }

// MinutesLeft returns the whole minutes remaining in the active window, 0 once expired.
func (q Quiz) MinutesLeft(now time.Time) int {
	if !q.IsActive(now) {
		return 0
	}
	return int(q.ExpiresAt().Sub(now) / time.Minute)
}

func title(seq int) string { return fmt.Sprintf("quiz%d", seq) }
