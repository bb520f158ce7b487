package course_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
	"github.com/Chhotu7079/UniCore/core/course"
	"github.com/Chhotu7079/UniCore/core/lesson"
	"github.com/Chhotu7079/UniCore/services/logger"
	"github.com/Chhotu7079/UniCore/tests"
)

func TestService_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	admin := testutil.CreateAccount(t, env.Accounts, "Root", "", "", auth.RoleAdmin).Principal()
	instructor := testutil.CreateAccount(t, env.Accounts, "Ada", "", "", auth.RoleInstructor).Principal()
	other := testutil.CreateAccount(t, env.Accounts, "Bob", "", "", auth.RoleInstructor).Principal()
	student := testutil.CreateAccount(t, env.Accounts, "Cy", "", "", auth.RoleStudent).Principal()

	tests := []struct {
		name      string
		p         auth.Principal
		nc        course.NewCourse
		wantOwner int
		check     func(err error) bool
	}{
		{name: "instructor", p: instructor, nc: course.NewCourse{Name: "  Algebra "}, wantOwner: instructor.ID},
		{name: "admin on behalf", p: admin, nc: course.NewCourse{Name: "Physics", InstructorID: other.ID}, wantOwner: other.ID},
		{name: "instructor for other", p: instructor, nc: course.NewCourse{Name: "X", InstructorID: other.ID}, check: core.IsPermissionDenied},
		{name: "student", p: student, nc: course.NewCourse{Name: "X"}, check: core.IsPermissionDenied},
		{name: "admin for student", p: admin, nc: course.NewCourse{Name: "X", InstructorID: student.ID}, check: core.IsValidation},
		{name: "admin for unknown", p: admin, nc: course.NewCourse{Name: "X", InstructorID: 999}, check: core.IsValidation},
		{name: "no name", p: instructor, nc: course.NewCourse{Name: "   "}, check: core.IsValidation},
		{name: "anonymous", p: auth.Principal{}, nc: course.NewCourse{Name: "X"},
			check: func(err error) bool { return err == core.ErrNotAuthenticated }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := env.CourseSvc.Create(ctx, tt.p, tt.nc)
			if tt.check != nil {
				assert.True(t, tt.check(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, c.InstructorID)
			assert.NotContains(t, c.Name, " ")
		})
	}

	created := env.Logger.Find(logsvc.LevelInfo, "course created")
	require.Len(t, created, 2)
	assert.Equal(t, admin, created[1].Principal())
	assert.Equal(t, other.ID, created[1].Fields()["instructor_id"])
	assert.Len(t, env.Logger.Find(logsvc.LevelWarn, "access denied"), 2)
}

func TestService_Enroll(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	instructor := testutil.CreateAccount(t, env.Accounts, "Ada", "ada@test.cd", "", auth.RoleInstructor)
	student := testutil.CreateAccount(t, env.Accounts, "Cy", "", "", auth.RoleStudent).Principal()
	c := testutil.CreateCourse(t, env.Courses, "Algebra", instructor.ID)

	_, err := env.CourseSvc.Enroll(ctx, instructor.Principal(), c.ID)
	assert.True(t, core.IsPermissionDenied(err))
	_, err = env.CourseSvc.Enroll(ctx, student, 999)
	assert.Equal(t, core.ErrNotFound, errors.Cause(err))

	e, err := env.CourseSvc.Enroll(ctx, student, c.ID)
	require.NoError(t, err)
	assert.Equal(t, course.Enrollment{StudentID: student.ID, CourseID: c.ID, CreatedAt: e.CreatedAt}, e)

	_, err = env.CourseSvc.Enroll(ctx, student, c.ID)
	assert.Equal(t, core.ErrDuplicate, err)

	ns, err := env.Notifications.ListByUser(ctx, instructor.ID, false)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, "Student with ID 2 enrolled in course 1", ns[0].Message)

	sent := env.Mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@test.cd", sent[0].To[0].Address)
}

func TestService_EnrolledStudents_Unenroll(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	admin := testutil.CreateAccount(t, env.Accounts, "Root", "", "", auth.RoleAdmin).Principal()
	instructor := testutil.CreateAccount(t, env.Accounts, "Ada", "", "", auth.RoleInstructor).Principal()
	other := testutil.CreateAccount(t, env.Accounts, "Bob", "", "", auth.RoleInstructor).Principal()
	s1 := testutil.CreateAccount(t, env.Accounts, "Cy", "", "", auth.RoleStudent).Principal()
	s2 := testutil.CreateAccount(t, env.Accounts, "Di", "", "", auth.RoleStudent).Principal()
	c := testutil.CreateCourse(t, env.Courses, "Algebra", instructor.ID)
	testutil.Enroll(t, env.Courses, s2.ID, c.ID)
	testutil.Enroll(t, env.Courses, s1.ID, c.ID)

	for _, p := range []auth.Principal{admin, instructor} {
		ids, err := env.CourseSvc.EnrolledStudents(ctx, p, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{s1.ID, s2.ID}, ids)
	}
	for _, p := range []auth.Principal{other, s1} {
		_, err := env.CourseSvc.EnrolledStudents(ctx, p, c.ID)
		assert.True(t, core.IsPermissionDenied(err))
	}

	assert.True(t, core.IsPermissionDenied(env.CourseSvc.Unenroll(ctx, admin, c.ID, s1.ID)))
	assert.True(t, core.IsPermissionDenied(env.CourseSvc.Unenroll(ctx, s1, c.ID, s1.ID)))
	require.NoError(t, env.CourseSvc.Unenroll(ctx, instructor, c.ID, s1.ID))
	assert.Equal(t, core.ErrNotFound, env.CourseSvc.Unenroll(ctx, instructor, c.ID, s1.ID))

	ids, err := env.CourseSvc.EnrolledStudents(ctx, instructor, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{s2.ID}, ids)
}

func TestService_Get_List(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	admin := testutil.CreateAccount(t, env.Accounts, "Root", "", "", auth.RoleAdmin).Principal()
	instructor := testutil.CreateAccount(t, env.Accounts, "Ada", "", "", auth.RoleInstructor).Principal()
	other := testutil.CreateAccount(t, env.Accounts, "Bob", "", "", auth.RoleInstructor).Principal()
	student := testutil.CreateAccount(t, env.Accounts, "Cy", "", "", auth.RoleStudent).Principal()
	outsider := testutil.CreateAccount(t, env.Accounts, "Di", "", "", auth.RoleStudent).Principal()
	c1 := testutil.CreateCourse(t, env.Courses, "Algebra", instructor.ID)
	c2 := testutil.CreateCourse(t, env.Courses, "Physics", other.ID)
	testutil.Enroll(t, env.Courses, student.ID, c1.ID)

	for _, p := range []auth.Principal{admin, instructor, other, student} {
		got, err := env.CourseSvc.Get(ctx, p, c1.ID)
		require.NoError(t, err)
		assert.Equal(t, c1.Name, got.Name)
	}
	_, err := env.CourseSvc.Get(ctx, outsider, c1.ID)
	assert.True(t, core.IsPermissionDenied(err))
	_, err = env.CourseSvc.Get(ctx, student, 999)
	assert.Equal(t, core.ErrNotFound, errors.Cause(err))
	_, err = env.CourseSvc.Get(ctx, auth.Principal{}, c1.ID)
	assert.Equal(t, core.ErrNotAuthenticated, err)

	cs, err := env.CourseSvc.List(ctx, outsider)
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, []int{c1.ID, c2.ID}, []int{cs[0].ID, cs[1].ID})
	_, err = env.CourseSvc.List(ctx, auth.Principal{})
	assert.Equal(t, core.ErrNotAuthenticated, err)
}

func TestService_Update(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	admin := testutil.CreateAccount(t, env.Accounts, "Root", "", "", auth.RoleAdmin).Principal()
	instructor := testutil.CreateAccount(t, env.Accounts, "Ada", "", "", auth.RoleInstructor).Principal()
	s1 := testutil.CreateAccount(t, env.Accounts, "Cy", "cy@test.cd", "", auth.RoleStudent).Principal()
	s2 := testutil.CreateAccount(t, env.Accounts, "Di", "", "", auth.RoleStudent).Principal()
	outsider := testutil.CreateAccount(t, env.Accounts, "Ed", "", "", auth.RoleStudent).Principal()
	c := testutil.CreateCourse(t, env.Courses, "Algebra", instructor.ID)
	testutil.Enroll(t, env.Courses, s1.ID, c.ID)
	testutil.Enroll(t, env.Courses, s2.ID, c.ID)

	for _, p := range []auth.Principal{admin, s1} {
		_, err := env.CourseSvc.Update(ctx, p, c.ID, course.UpdateCourse{Name: "X"})
		assert.True(t, core.IsPermissionDenied(err))
	}
	_, err := env.CourseSvc.Update(ctx, instructor, c.ID, course.UpdateCourse{Name: " "})
	assert.True(t, core.IsValidation(err))
	_, err = env.CourseSvc.Update(ctx, instructor, c.ID, course.UpdateCourse{Name: "X", Duration: -1})
	assert.True(t, core.IsValidation(err))

	up, err := env.CourseSvc.Update(ctx, instructor, c.ID, course.UpdateCourse{Name: " Linear Algebra ", Description: "matrices", Duration: 30})
	require.NoError(t, err)
	assert.Equal(t, course.Course{
		ID:           c.ID,
		Name:         "Linear Algebra",
		Description:  "matrices",
		Duration:     30,
		InstructorID: instructor.ID,
		CreatedAt:    c.CreatedAt,
	}, up)

	got, err := env.Courses.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, up, got)

	for _, id := range []int{s1.ID, s2.ID} {
		ns, err := env.Notifications.ListByUser(ctx, id, false)
		require.NoError(t, err)
		require.Len(t, ns, 1)
		assert.Equal(t, "Linear Algebra course is updated", ns[0].Message)
	}
	ns, err := env.Notifications.ListByUser(ctx, outsider.ID, false)
	require.NoError(t, err)
	assert.Empty(t, ns)

	sent := env.Mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "cy@test.cd", sent[0].To[0].Address)
	assert.Len(t, env.Logger.Find(logsvc.LevelInfo, "course updated"), 1)
}

func TestService_Delete(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	instructor := testutil.CreateAccount(t, env.Accounts, "Ada", "", "", auth.RoleInstructor).Principal()
	other := testutil.CreateAccount(t, env.Accounts, "Bob", "", "", auth.RoleInstructor).Principal()
	student := testutil.CreateAccount(t, env.Accounts, "Cy", "", "", auth.RoleStudent).Principal()
	c := testutil.CreateCourse(t, env.Courses, "Algebra", instructor.ID)
	kept := testutil.CreateCourse(t, env.Courses, "Physics", instructor.ID)
	testutil.Enroll(t, env.Courses, student.ID, c.ID)
	testutil.Enroll(t, env.Courses, student.ID, kept.ID)
	l, err := env.LessonSvc.Add(ctx, instructor, c.ID, lesson.NewLesson{Name: "Intro", OTP: "1234"})
	require.NoError(t, err)

	assert.True(t, core.IsPermissionDenied(env.CourseSvc.Delete(ctx, other, c.ID)))
	assert.True(t, core.IsPermissionDenied(env.CourseSvc.Delete(ctx, student, c.ID)))

	require.NoError(t, env.CourseSvc.Delete(ctx, instructor, c.ID))
	_, err = env.Courses.GetCourse(ctx, c.ID)
	assert.Equal(t, core.ErrNotFound, err)
	_, err = env.Lessons.GetLesson(ctx, l.ID)
	assert.Equal(t, core.ErrNotFound, err, "lessons are deleted with their course")
	ok, err := env.Courses.IsEnrolled(ctx, student.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = env.Courses.IsEnrolled(ctx, student.ID, kept.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	err = env.CourseSvc.Delete(ctx, instructor, c.ID)
	assert.Equal(t, core.ErrNotFound, errors.Cause(err))
}
