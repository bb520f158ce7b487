package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
	"github.com/Chhotu7079/UniCore/services/logger"
)

var (
	admin    = auth.Principal{ID: 1, Role: auth.RoleAdmin}
	owner    = auth.Principal{ID: 2, Role: auth.RoleInstructor}
	stranger = auth.Principal{ID: 3, Role: auth.RoleInstructor}
	student  = auth.Principal{ID: 4, Role: auth.RoleStudent}
)

const (
	allow = iota
	denied
	expired
	submitted
	unauthenticated
)

func TestAuthorize(t *testing.T) {
	course := Resource{CourseID: 10, InstructorID: owner.ID}
	enrolled := Resource{CourseID: 10, InstructorID: owner.ID, Enrolled: true}
	active := Resource{CourseID: 10, InstructorID: owner.ID, Enrolled: true, QuizActive: true}

	withStudent := func(res Resource, id int) Resource { res.StudentID = id; return res }
	withSubmitted := func(res Resource) Resource { res.Submitted = true; return res }

	tests := []struct {
		name   string
		p      auth.Principal
		action Action
		res    Resource
		want   int
	}{
		{name: "no principal", p: auth.Principal{}, action: ReadQuiz, res: enrolled, want: unauthenticated},
		{name: "invalid role", p: auth.Principal{ID: 9, Role: auth.Role(7)}, action: ReadQuiz, res: enrolled, want: unauthenticated},

		{name: "manage: owner", p: owner, action: ManageCourse, res: course, want: allow},
		{name: "manage: other instructor", p: stranger, action: ManageCourse, res: course, want: denied},
		{name: "manage: admin", p: admin, action: ManageCourse, res: course, want: denied},
		{name: "manage: student", p: student, action: ManageCourse, res: enrolled, want: denied},

		{name: "read quiz: owner", p: owner, action: ReadQuiz, res: course, want: allow},
		{name: "read quiz: enrolled student", p: student, action: ReadQuiz, res: enrolled, want: allow},
		{name: "read quiz: not enrolled", p: student, action: ReadQuiz, res: course, want: denied},
		{name: "read quiz: admin", p: admin, action: ReadQuiz, res: course, want: denied},

		{name: "questions: owner after expiry", p: owner, action: ReadQuizQuestions, res: course, want: allow},
		{name: "questions: student while active", p: student, action: ReadQuizQuestions, res: active, want: allow},
		{name: "questions: student after expiry", p: student, action: ReadQuizQuestions, res: enrolled, want: expired},
		{name: "questions: not enrolled", p: student, action: ReadQuizQuestions, res: course, want: denied},

		{name: "submit: ok", p: student, action: SubmitQuiz, res: active, want: allow},
		{name: "submit: not enrolled", p: student, action: SubmitQuiz, res: Resource{QuizActive: true}, want: denied},
		{name: "submit: expired", p: student, action: SubmitQuiz, res: enrolled, want: expired},
		{name: "submit: twice", p: student, action: SubmitQuiz, res: withSubmitted(active), want: submitted},
		{name: "submit: instructor", p: owner, action: SubmitQuiz, res: active, want: denied},

		{name: "feedback: owner", p: owner, action: ViewFeedback, res: withStudent(course, student.ID), want: allow},
		{name: "feedback: other instructor", p: stranger, action: ViewFeedback, res: withStudent(course, student.ID), want: denied},
		{name: "feedback: self", p: student, action: ViewFeedback, res: withStudent(enrolled, student.ID), want: allow},
		{name: "feedback: other student", p: student, action: ViewFeedback, res: withStudent(enrolled, 99), want: denied},
		{name: "feedback: self not enrolled", p: student, action: ViewFeedback, res: withStudent(course, student.ID), want: denied},
		{name: "feedback: admin", p: admin, action: ViewFeedback, res: withStudent(course, student.ID), want: denied},

		{name: "grades: owner", p: owner, action: ViewGrades, res: course, want: allow},
		{name: "grades: student", p: student, action: ViewGrades, res: enrolled, want: denied},

		{name: "create course: admin", p: admin, action: CreateCourse, res: course, want: allow},
		{name: "create course: instructor self", p: owner, action: CreateCourse, res: course, want: allow},
		{name: "create course: instructor for other", p: stranger, action: CreateCourse, res: course, want: denied},
		{name: "create course: student", p: student, action: CreateCourse, res: Resource{InstructorID: student.ID}, want: denied},

		{name: "enroll: self", p: student, action: Enroll, res: withStudent(course, student.ID), want: allow},
		{name: "enroll: other", p: student, action: Enroll, res: withStudent(course, 99), want: denied},
		{name: "enroll: instructor", p: owner, action: Enroll, res: withStudent(course, owner.ID), want: denied},

		{name: "enrollments: admin", p: admin, action: ViewEnrollments, res: course, want: allow},
		{name: "enrollments: owner", p: owner, action: ViewEnrollments, res: course, want: allow},
		{name: "enrollments: other instructor", p: stranger, action: ViewEnrollments, res: course, want: denied},
		{name: "enrollments: student", p: student, action: ViewEnrollments, res: enrolled, want: denied},

		{name: "notifications: self", p: student, action: ReadNotifications, res: Resource{UserID: student.ID}, want: allow},
		{name: "notifications: admin for other", p: admin, action: ReadNotifications, res: Resource{UserID: student.ID}, want: denied},

		{name: "read course: admin", p: admin, action: ReadCourse, res: course, want: allow},
		{name: "read course: any instructor", p: stranger, action: ReadCourse, res: course, want: allow},
		{name: "read course: enrolled student", p: student, action: ReadCourse, res: enrolled, want: allow},
		{name: "read course: not enrolled", p: student, action: ReadCourse, res: course, want: denied},

		{name: "attend: enrolled student", p: student, action: AttendLesson, res: enrolled, want: allow},
		{name: "attend: not enrolled", p: student, action: AttendLesson, res: course, want: denied},
		{name: "attend: owner", p: owner, action: AttendLesson, res: course, want: denied},

		{name: "submit assignment: enrolled student", p: student, action: SubmitAssignment, res: enrolled, want: allow},
		{name: "submit assignment: not enrolled", p: student, action: SubmitAssignment, res: course, want: denied},
		{name: "submit assignment: admin", p: admin, action: SubmitAssignment, res: course, want: denied},

		{name: "unknown action", p: admin, action: Action(99), res: course, want: denied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.p, tt.action, tt.res)
			switch tt.want {
			case allow:
				assert.NoError(t, err)
			case denied:
				assert.True(t, core.IsPermissionDenied(err), "got %v", err)
			case expired:
				assert.Equal(t, core.ErrExpired, err)
			case submitted:
				assert.Equal(t, core.ErrAlreadySubmitted, err)
			case unauthenticated:
				assert.Equal(t, core.ErrNotAuthenticated, err)
			}
		})
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "submit quiz", SubmitQuiz.String())
	assert.Equal(t, "Action(42)", Action(42).String())
}

func TestGuard_Authorize(t *testing.T) {
	logger := logsvc.NewMemoryLogger()
	guard := NewGuard(logger)
	course := Resource{CourseID: 10, InstructorID: owner.ID}

	assert.NoError(t, guard.Authorize(owner, ManageCourse, course))
	assert.Equal(t, core.ErrNotAuthenticated, guard.Authorize(auth.Principal{}, ManageCourse, course))
	assert.Empty(t, logger.Entries(), "only denials are logged")

	err := guard.Authorize(stranger, ManageCourse, course)
	assert.True(t, core.IsPermissionDenied(err))

	entries := logger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, logsvc.LevelWarn, entries[0].Level)
	assert.Equal(t, "access denied", entries[0].Msg)
	assert.Equal(t, stranger, entries[0].Principal())
	assert.Equal(t, map[string]interface{}{
		"action":    "manage course",
		"course_id": 10,
		"reason":    "you are not the instructor of this course",
	}, entries[0].Fields())
}
