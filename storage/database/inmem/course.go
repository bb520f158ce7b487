package inmemdb

import (
	"context"
	"sort"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	defer repo.db.lock(ctx)()
	t := repo.db.t
	c.ID = t.nextID("courses")
	t.courses[c.ID] = c
	return c, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id int) (course.Course, error) {
	defer repo.db.lock(ctx)()
	if c, ok := repo.db.t.courses[id]; ok {
		return c, nil
	}
	return course.Course{}, core.ErrNotFound
}

func (repo *courseRepository) IsEnrolled(ctx context.Context, studentID, courseID int) (bool, error) {
	defer repo.db.lock(ctx)()
	_, ok := repo.db.t.enrollments[enrollmentKey{studentID, courseID}]
	return ok, nil
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, e course.Enrollment) error {
	defer repo.db.lock(ctx)()
	key := enrollmentKey{e.StudentID, e.CourseID}
	if _, ok := repo.db.t.enrollments[key]; ok {
		return core.ErrDuplicate
	}
	repo.db.t.enrollments[key] = e
	return nil
}

func (repo *courseRepository) DeleteEnrollment(ctx context.Context, studentID, courseID int) error {
	defer repo.db.lock(ctx)()
	key := enrollmentKey{studentID, courseID}
	if _, ok := repo.db.t.enrollments[key]; !ok {
		return core.ErrNotFound
	}
	delete(repo.db.t.enrollments, key)
	return nil
}

func (repo *courseRepository) ListEnrolledStudents(ctx context.Context, courseID int) ([]int, error) {
	defer repo.db.lock(ctx)()
	ids := make([]int, 0)
	for key := range repo.db.t.enrollments {
		if key.courseID == courseID {
			ids = append(ids, key.studentID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (repo *courseRepository) ListCourses(ctx context.Context) ([]course.Course, error) {
	defer repo.db.lock(ctx)()
	cs := make([]course.Course, 0, len(repo.db.t.courses))
	for _, c := range repo.db.t.courses {
		cs = append(cs, c)
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
	return cs, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, c course.Course) error {
	defer repo.db.lock(ctx)()
	if _, ok := repo.db.t.courses[c.ID]; !ok {
		return core.ErrNotFound
	}
	repo.db.t.courses[c.ID] = c
	return nil
}

// DeleteCourse cascades like the SQL schema: enrollments, questions, quizzes with
// their gradings, lessons with their attendance and assignments with their submissions.
func (repo *courseRepository) DeleteCourse(ctx context.Context, id int) error {
	defer repo.db.lock(ctx)()
	t := repo.db.t
	if _, ok := t.courses[id]; !ok {
		return core.ErrNotFound
	}
	delete(t.courses, id)
	for key := range t.enrollments {
		if key.courseID == id {
			delete(t.enrollments, key)
		}
	}
	for qid, q := range t.questions {
		if q.CourseID == id {
			delete(t.questions, qid)
			delete(t.positions, qid)
		}
	}
	for qid, qz := range t.quizzes {
		if qz.CourseID != id {
			continue
		}
		delete(t.quizzes, qid)
		for key := range t.gradings {
			if key.quizID == qid {
				delete(t.gradings, key)
			}
		}
	}
	for lid, l := range t.lessons {
		if l.CourseID == id {
			deleteLesson(t, lid)
		}
	}
	for aid, a := range t.assignments {
		if a.CourseID != id {
			continue
		}
		delete(t.assignments, aid)
		for key := range t.submissions {
			if key.assignmentID == aid {
				delete(t.submissions, key)
			}
		}
	}
	return nil
}
