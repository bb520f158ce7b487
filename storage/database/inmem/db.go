// Package inmemdb is an in-process storage backend used by tests and local runs.
// Every repository shares one DB; a transaction holds the DB lock for its whole
// duration and restores a snapshot when it fails.
package inmemdb

import (
	"context"
	"sync"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/assignment"
	"github.com/Chhotu7079/UniCore/core/course"
	"github.com/Chhotu7079/UniCore/core/grading"
	"github.com/Chhotu7079/UniCore/core/lesson"
	"github.com/Chhotu7079/UniCore/core/notification"
	"github.com/Chhotu7079/UniCore/core/question"
	"github.com/Chhotu7079/UniCore/core/quiz"
	"github.com/Chhotu7079/UniCore/core/user"
)

type (
	enrollmentKey struct{ studentID, courseID int }
	gradingKey    struct{ quizID, studentID int }
	attendanceKey struct{ lessonID, studentID int }
	submissionKey struct{ assignmentID, studentID int }

	tables struct {
		seq           map[string]int
		accounts      map[int]user.Account
		courses       map[int]course.Course
		enrollments   map[enrollmentKey]course.Enrollment
		questions     map[int]question.Question
		positions     map[int]int // question id -> position in its quiz
		quizzes       map[int]quiz.Quiz
		gradings      map[gradingKey]grading.Record
		notifications map[int]notification.Notification
		lessons       map[int]lesson.Lesson
		attendance    map[attendanceKey]lesson.Attendance
		assignments   map[int]assignment.Assignment
		submissions   map[submissionKey]assignment.Submission
	}

	DB struct {
		mu sync.Mutex
		t  *tables
	}

	txKey struct{}
)

var _ core.Transactor = (*DB)(nil)

func Open() *DB {
	return &DB{t: newTables()}
}

func newTables() *tables {
	return &tables{
		seq:           make(map[string]int),
		accounts:      make(map[int]user.Account),
		courses:       make(map[int]course.Course),
		enrollments:   make(map[enrollmentKey]course.Enrollment),
		questions:     make(map[int]question.Question),
		positions:     make(map[int]int),
		quizzes:       make(map[int]quiz.Quiz),
		gradings:      make(map[gradingKey]grading.Record),
		notifications: make(map[int]notification.Notification),
		lessons:       make(map[int]lesson.Lesson),
		attendance:    make(map[attendanceKey]lesson.Attendance),
		assignments:   make(map[int]assignment.Assignment),
		submissions:   make(map[submissionKey]assignment.Submission),
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.seq {
		c.seq[k] = v
	}
	for k, v := range t.accounts {
		c.accounts[k] = v
	}
	for k, v := range t.courses {
		c.courses[k] = v
	}
	for k, v := range t.enrollments {
		c.enrollments[k] = v
	}
	for k, v := range t.questions {
		c.questions[k] = copyQuestion(v)
	}
	for k, v := range t.positions {
		c.positions[k] = v
	}
	for k, v := range t.quizzes {
		c.quizzes[k] = v
	}
	for k, v := range t.gradings {
		c.gradings[k] = v
	}
	for k, v := range t.notifications {
		c.notifications[k] = v
	}
	for k, v := range t.lessons {
		c.lessons[k] = v
	}
	for k, v := range t.attendance {
		c.attendance[k] = v
	}
	for k, v := range t.assignments {
		c.assignments[k] = v
	}
	for k, v := range t.submissions {
		c.submissions[k] = copySubmission(v)
	}
	return c
}

// nextID returns the next serial value of table, and keeps it above any explicit id.
func (t *tables) nextID(table string) int {
	t.seq[table]++
	return t.seq[table]
}

func (t *tables) bumpSeq(table string, id int) {
	if id > t.seq[table] {
		t.seq[table] = id
	}
}

// lock acquires the DB lock unless ctx belongs to a transaction on db, which already holds it.
func (db *DB) lock(ctx context.Context) func() {
	if tx, _ := ctx.Value(txKey{}).(*DB); tx == db {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}

func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, _ := ctx.Value(txKey{}).(*DB); tx == db {
		return fn(ctx)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	snapshot := db.t.clone()
	if err := fn(context.WithValue(ctx, txKey{}, db)); err != nil {
		db.t = snapshot
		return err
	}
	return nil
}

// Flush empties every table and restarts every sequence.
func (db *DB) Flush() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.t = newTables()
}
