package grading

import (
	"time"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/question"
)

// Record is the only score of a student on a quiz. It is never updated.
type Record struct {
	QuizID    int       `json:"quiz_id"`
	StudentID int       `json:"student_id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Submission struct {
	Answers []string `json:"answers" validate:"required"`
}

func (s *Submission) Validate() error { return core.ValidateStruct(s) }

// Score counts the positions where the answer equals the correct answer exactly.
func Score(qs []question.Question, answers []string) int {
	var score int
	for i, q := range qs {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			score++
		}
	}
	return score
}
