package lesson_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
	"github.com/Chhotu7079/UniCore/core/lesson"
	"github.com/Chhotu7079/UniCore/services/logger"
	"github.com/Chhotu7079/UniCore/tests"
)

type fixture struct {
	env        *testutil.Env
	admin      auth.Principal
	instructor auth.Principal
	stranger   auth.Principal
	student    auth.Principal
	outsider   auth.Principal
	courseID   int
}

func setup(t *testing.T) fixture {
	t.Helper()
	env := testutil.NewEnv(t)
	admin := testutil.CreateAccount(t, env.Accounts, "Root", "", "", auth.RoleAdmin)
	instructor := testutil.CreateAccount(t, env.Accounts, "Ada", "", "", auth.RoleInstructor)
	stranger := testutil.CreateAccount(t, env.Accounts, "Bob", "", "", auth.RoleInstructor)
	student := testutil.CreateAccount(t, env.Accounts, "Cy", "", "", auth.RoleStudent)
	outsider := testutil.CreateAccount(t, env.Accounts, "Di", "", "", auth.RoleStudent)
	c := testutil.CreateCourse(t, env.Courses, "Algebra", instructor.ID)
	testutil.Enroll(t, env.Courses, student.ID, c.ID)

	return fixture{
		env:        env,
		admin:      admin.Principal(),
		instructor: instructor.Principal(),
		stranger:   stranger.Principal(),
		student:    student.Principal(),
		outsider:   outsider.Principal(),
		courseID:   c.ID,
	}
}

func (f fixture) addLesson(t *testing.T, name string, order int, otp string) lesson.Lesson {
	t.Helper()
	l, err := f.env.LessonSvc.Add(context.Background(), f.instructor, f.courseID, lesson.NewLesson{Name: name, Order: order, OTP: otp})
	require.NoError(t, err)
	return l
}

func TestService_Add(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		p     auth.Principal
		cid   int
		nl    lesson.NewLesson
		check func(err error) bool
	}{
		{name: "anonymous", p: auth.Principal{}, cid: f.courseID, nl: lesson.NewLesson{Name: "x", OTP: "1"},
			check: func(err error) bool { return err == core.ErrNotAuthenticated }},
		{name: "unknown course", p: f.instructor, cid: 999, nl: lesson.NewLesson{Name: "x", OTP: "1"},
			check: func(err error) bool { return errors.Cause(err) == core.ErrNotFound }},
		{name: "other instructor", p: f.stranger, cid: f.courseID, nl: lesson.NewLesson{Name: "x", OTP: "1"}, check: core.IsPermissionDenied},
		{name: "student", p: f.student, cid: f.courseID, nl: lesson.NewLesson{Name: "x", OTP: "1"}, check: core.IsPermissionDenied},
		{name: "admin", p: f.admin, cid: f.courseID, nl: lesson.NewLesson{Name: "x", OTP: "1"}, check: core.IsPermissionDenied},
		{name: "no name", p: f.instructor, cid: f.courseID, nl: lesson.NewLesson{Name: " ", OTP: "1"}, check: core.IsValidation},
		{name: "no otp", p: f.instructor, cid: f.courseID, nl: lesson.NewLesson{Name: "x"}, check: core.IsValidation},
		{name: "negative order", p: f.instructor, cid: f.courseID, nl: lesson.NewLesson{Name: "x", OTP: "1", Order: -1}, check: core.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.env.LessonSvc.Add(ctx, tt.p, tt.cid, tt.nl)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}

	l, err := f.env.LessonSvc.Add(ctx, f.instructor, f.courseID, lesson.NewLesson{Name: " Intro ", Description: "first", OTP: " 4242 ", Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Intro", l.Name)
	assert.Equal(t, "4242", l.OTP)
	assert.Equal(t, f.courseID, l.CourseID)

	added := f.env.Logger.Find(logsvc.LevelInfo, "lesson added")
	require.Len(t, added, 1)
	assert.Equal(t, map[string]interface{}{"course_id": f.courseID, "lesson_id": l.ID}, added[0].Fields())
	assert.Len(t, f.env.Logger.Find(logsvc.LevelWarn, "access denied"), 3)
}

func TestService_List_Get(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	second := f.addLesson(t, "Vectors", 2, "2222")
	first := f.addLesson(t, "Intro", 1, "1111")

	ls, err := f.env.LessonSvc.List(ctx, f.instructor, f.courseID)
	require.NoError(t, err)
	require.Len(t, ls, 2)
	assert.Equal(t, []int{first.ID, second.ID}, []int{ls[0].ID, ls[1].ID}, "lessons are ordered by order")
	assert.Equal(t, "1111", ls[0].OTP)

	for _, p := range []auth.Principal{f.student, f.admin, f.stranger} {
		ls, err = f.env.LessonSvc.List(ctx, p, f.courseID)
		require.NoError(t, err)
		require.Len(t, ls, 2)
		for _, l := range ls {
			assert.Empty(t, l.OTP, "the OTP is only shown to the course instructor")
		}
	}
	_, err = f.env.LessonSvc.List(ctx, f.outsider, f.courseID)
	assert.True(t, core.IsPermissionDenied(err))

	got, err := f.env.LessonSvc.Get(ctx, f.student, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro", got.Name)
	assert.Empty(t, got.OTP)
	got, err = f.env.LessonSvc.Get(ctx, f.instructor, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	_, err = f.env.LessonSvc.Get(ctx, f.outsider, first.ID)
	assert.True(t, core.IsPermissionDenied(err))
	_, err = f.env.LessonSvc.Get(ctx, f.student, 999)
	assert.Equal(t, core.ErrNotFound, errors.Cause(err))
}

func TestService_Update_Delete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l := f.addLesson(t, "Intro", 1, "1111")

	_, err := f.env.LessonSvc.Update(ctx, f.stranger, l.ID, lesson.NewLesson{Name: "x", OTP: "1"})
	assert.True(t, core.IsPermissionDenied(err))
	_, err = f.env.LessonSvc.Update(ctx, f.instructor, l.ID, lesson.NewLesson{Name: "x"})
	assert.True(t, core.IsValidation(err))

	up, err := f.env.LessonSvc.Update(ctx, f.instructor, l.ID, lesson.NewLesson{Name: "Basics", Order: 3, OTP: "9999", Content: "v2"})
	require.NoError(t, err)
	assert.Equal(t, l.ID, up.ID)
	assert.Equal(t, l.CreatedAt, up.CreatedAt)
	got, err := f.env.Lessons.GetLesson(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, up, got)

	assert.True(t, core.IsPermissionDenied(f.env.LessonSvc.Delete(ctx, f.student, l.ID)))
	require.NoError(t, f.env.LessonSvc.Delete(ctx, f.instructor, l.ID))
	_, err = f.env.Lessons.GetLesson(ctx, l.ID)
	assert.Equal(t, core.ErrNotFound, err)
	assert.Equal(t, core.ErrNotFound, errors.Cause(f.env.LessonSvc.Delete(ctx, f.instructor, l.ID)))
}

func TestService_Attend(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l := f.addLesson(t, "Intro", 1, "4242")

	tests := []struct {
		name  string
		p     auth.Principal
		otp   string
		check func(err error) bool
	}{
		{name: "anonymous", p: auth.Principal{}, otp: "4242",
			check: func(err error) bool { return err == core.ErrNotAuthenticated }},
		{name: "instructor", p: f.instructor, otp: "4242", check: core.IsPermissionDenied},
		{name: "admin", p: f.admin, otp: "4242", check: core.IsPermissionDenied},
		{name: "not enrolled", p: f.outsider, otp: "4242", check: core.IsPermissionDenied},
		{name: "wrong otp", p: f.student, otp: "0000", check: core.IsValidation},
		{name: "no otp", p: f.student, otp: "", check: core.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.env.LessonSvc.Attend(ctx, tt.p, l.ID, lesson.Entry{OTP: tt.otp})
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}

	ids, err := f.env.LessonSvc.Attendance(ctx, f.instructor, l.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, f.env.LessonSvc.Attend(ctx, f.student, l.ID, lesson.Entry{OTP: " 4242 "}))
	// entering twice is not an error
	require.NoError(t, f.env.LessonSvc.Attend(ctx, f.student, l.ID, lesson.Entry{OTP: "4242"}))
	assert.Len(t, f.env.Logger.Find(logsvc.LevelInfo, "lesson attended"), 1)

	ids, err = f.env.LessonSvc.Attendance(ctx, f.instructor, l.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{f.student.ID}, ids)

	for _, p := range []auth.Principal{f.student, f.stranger, f.admin} {
		_, err = f.env.LessonSvc.Attendance(ctx, p, l.ID)
		assert.True(t, core.IsPermissionDenied(err))
	}
}
