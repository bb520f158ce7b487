package inmemdb

import (
	"context"
	"sort"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/lesson"
)

type lessonRepository struct {
	db *DB
}

var _ lesson.Repository = (*lessonRepository)(nil)

func NewLessonRepository(db *DB) lesson.Repository {
	return &lessonRepository{db: db}
}

func (repo *lessonRepository) CreateLesson(ctx context.Context, l lesson.Lesson) (lesson.Lesson, error) {
	defer repo.db.lock(ctx)()
	t := repo.db.t
	l.ID = t.nextID("lessons")
	t.lessons[l.ID] = l
	return l, nil
}

func (repo *lessonRepository) GetLesson(ctx context.Context, id int) (lesson.Lesson, error) {
	defer repo.db.lock(ctx)()
	if l, ok := repo.db.t.lessons[id]; ok {
		return l, nil
	}
	return lesson.Lesson{}, core.ErrNotFound
}

func (repo *lessonRepository) ListByCourse(ctx context.Context, courseID int) ([]lesson.Lesson, error) {
	defer repo.db.lock(ctx)()
	ls := make([]lesson.Lesson, 0)
	for _, l := range repo.db.t.lessons {
		if l.CourseID == courseID {
			ls = append(ls, l)
		}
	}
	sort.Slice(ls, func(i, j int) bool {
		if ls[i].Order != ls[j].Order {
			return ls[i].Order < ls[j].Order
		}
		return ls[i].ID < ls[j].ID
	})
	return ls, nil
}

func (repo *lessonRepository) UpdateLesson(ctx context.Context, l lesson.Lesson) error {
	defer repo.db.lock(ctx)()
	if _, ok := repo.db.t.lessons[l.ID]; !ok {
		return core.ErrNotFound
	}
	repo.db.t.lessons[l.ID] = l
	return nil
}

func (repo *lessonRepository) DeleteLesson(ctx context.Context, id int) error {
	defer repo.db.lock(ctx)()
	if _, ok := repo.db.t.lessons[id]; !ok {
		return core.ErrNotFound
	}
	deleteLesson(repo.db.t, id)
	return nil
}

func deleteLesson(t *tables, id int) {
	delete(t.lessons, id)
	for key := range t.attendance {
		if key.lessonID == id {
			delete(t.attendance, key)
		}
	}
}

func (repo *lessonRepository) CreateAttendance(ctx context.Context, a lesson.Attendance) error {
	defer repo.db.lock(ctx)()
	key := attendanceKey{a.LessonID, a.StudentID}
	if _, ok := repo.db.t.attendance[key]; ok {
		return core.ErrDuplicate
	}
	repo.db.t.attendance[key] = a
	return nil
}

func (repo *lessonRepository) ListAttendance(ctx context.Context, lessonID int) ([]int, error) {
	defer repo.db.lock(ctx)()
	ids := make([]int, 0)
	for key := range repo.db.t.attendance {
		if key.lessonID == lessonID {
			ids = append(ids, key.studentID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}
