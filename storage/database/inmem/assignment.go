package inmemdb

import (
	"context"
	"sort"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func copySubmission(s assignment.Submission) assignment.Submission {
	if s.Grade != nil {
		g := *s.Grade
		s.Grade = &g
	}
	return s
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	defer repo.db.lock(ctx)()
	t := repo.db.t
	a.ID = t.nextID("assignments")
	t.assignments[a.ID] = a
	return a, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id int) (assignment.Assignment, error) {
	defer repo.db.lock(ctx)()
	if a, ok := repo.db.t.assignments[id]; ok {
		return a, nil
	}
	return assignment.Assignment{}, core.ErrNotFound
}

func (repo *assignmentRepository) ListByCourse(ctx context.Context, courseID int) ([]assignment.Assignment, error) {
	defer repo.db.lock(ctx)()
	as := make([]assignment.Assignment, 0)
	for _, a := range repo.db.t.assignments {
		if a.CourseID == courseID {
			as = append(as, a)
		}
	}
	sort.Slice(as, func(i, j int) bool { return as[i].ID < as[j].ID })
	return as, nil
}

func (repo *assignmentRepository) CreateSubmission(ctx context.Context, s assignment.Submission) error {
	defer repo.db.lock(ctx)()
	key := submissionKey{s.AssignmentID, s.StudentID}
	if _, ok := repo.db.t.submissions[key]; ok {
		return core.ErrDuplicate
	}
	repo.db.t.submissions[key] = copySubmission(s)
	return nil
}

func (repo *assignmentRepository) GetSubmission(ctx context.Context, assignmentID, studentID int) (assignment.Submission, error) {
	defer repo.db.lock(ctx)()
	if s, ok := repo.db.t.submissions[submissionKey{assignmentID, studentID}]; ok {
		return copySubmission(s), nil
	}
	return assignment.Submission{}, core.ErrNotFound
}

func (repo *assignmentRepository) ListSubmissions(ctx context.Context, assignmentID int) ([]assignment.Submission, error) {
	defer repo.db.lock(ctx)()
	subs := make([]assignment.Submission, 0)
	for key, s := range repo.db.t.submissions {
		if key.assignmentID == assignmentID {
			subs = append(subs, copySubmission(s))
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].StudentID < subs[j].StudentID })
	return subs, nil
}

func (repo *assignmentRepository) update(ctx context.Context, assignmentID, studentID int, fn func(s *assignment.Submission)) error {
	defer repo.db.lock(ctx)()
	key := submissionKey{assignmentID, studentID}
	s, ok := repo.db.t.submissions[key]
	if !ok {
		return core.ErrNotFound
	}
	fn(&s)
	repo.db.t.submissions[key] = s
	return nil
}

func (repo *assignmentRepository) SetGrade(ctx context.Context, assignmentID, studentID int, grade float64) error {
	return repo.update(ctx, assignmentID, studentID, func(s *assignment.Submission) { s.Grade = &grade })
}

func (repo *assignmentRepository) SetFeedback(ctx context.Context, assignmentID, studentID int, feedback string) error {
	return repo.update(ctx, assignmentID, studentID, func(s *assignment.Submission) { s.Feedback = feedback })
}
