package quiz

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/question"
)

// randIntn is math/rand's locked global source; mockable in tests.
var randIntn = rand.Intn

// Selector claims random unbound questions from a course bank.
type Selector struct {
	bank question.Bank
}

func NewSelector(bank question.Bank) *Selector {
	return &Selector{bank: bank}
}

// Select binds n distinct unbound questions of the course and type to quizID and
// returns their ids in binding order. When a concurrent claim takes some of the
// drawn questions, it draws again from what is left; it fails with
// core.ErrInsufficientPool once the remaining pool cannot cover the rest.
func (s *Selector) Select(ctx context.Context, courseID int, typ question.Type, n, quizID int) ([]int, error) {
	claimed := make([]int, 0, n)
	lost := make(map[int]struct{})

	for len(claimed) < n {
		pool, err := s.bank.FindUnbound(ctx, courseID, typ)
		if err != nil {
			return nil, errors.Wrap(err, "finding unbound questions")
		}
		ids := make([]int, 0, len(pool))
		for _, q := range pool {
			if _, ok := lost[q.ID]; !ok {
				ids = append(ids, q.ID)
			}
		}

		need := n - len(claimed)
		if len(ids) < need {
			return nil, core.ErrInsufficientPool
		}

		picked := sample(ids, need)
		got, err := s.bank.Bind(ctx, picked, quizID)
		if err != nil {
			return nil, errors.Wrap(err, "binding questions")
		}

		won := make(map[int]struct{}, len(got))
		for _, id := range got {
			won[id] = struct{}{}
		}
		if len(won) != len(got) {
			return nil, core.NewShutdownError("question bank bound the same question twice")
		}
		for _, id := range picked {
			if _, ok := won[id]; ok {
				delete(won, id)
				claimed = append(claimed, id)
			} else {
				lost[id] = struct{}{}
			}
		}
		if len(won) > 0 {
			return nil, core.NewShutdownError("question bank bound questions that were not requested")
		}
	}
	return claimed, nil
}

// sample draws k ids uniformly without replacement (partial Fisher-Yates on a copy).
func sample(ids []int, k int) []int {
	pool := make([]int, len(ids))
	copy(pool, ids)
	for i := 0; i < k; i++ {
		j := i + randIntn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
