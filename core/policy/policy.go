// Package policy decides whether a principal may perform an action on a course,
// a quiz or a student's results, given ownership and enrollment facts.
//
// Every action has its own rule; there is no role that bypasses all rules.
package policy

import (
	"fmt"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
)

type Action int

const (
	// ManageCourse covers quiz creation, question add / bulk-load, question bank reads and unenrolling students.
	ManageCourse Action = iota + 1
	// ReadQuiz covers quiz metadata and the active quiz listing.
	ReadQuiz
	// ReadQuizQuestions is ReadQuiz plus the active window for students.
	ReadQuizQuestions
	SubmitQuiz
	ViewFeedback
	ViewGrades
	CreateCourse
	Enroll
	ViewEnrollments
	ReadNotifications
	// ReadCourse covers course details, lessons and assignments.
	ReadCourse
	AttendLesson
	SubmitAssignment
)

var actionNames = map[Action]string{
	ManageCourse:      "manage course",
	ReadQuiz:          "read quiz",
	ReadQuizQuestions: "read quiz questions",
	SubmitQuiz:        "submit quiz",
	ViewFeedback:      "view feedback",
	ViewGrades:        "view grades",
	CreateCourse:      "create course",
	Enroll:            "enroll",
	ViewEnrollments:   "view enrollments",
	ReadNotifications: "read notifications",
	ReadCourse:        "read course",
	AttendLesson:      "attend lesson",
	SubmitAssignment:  "submit assignment",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Resource holds the facts a rule is evaluated against.
// Callers only fill what the action needs.
type Resource struct {
	CourseID     int
	InstructorID int  // owner of the course
	Enrolled     bool // the principal is enrolled in the course
	StudentID    int  // target student of per-student actions
	UserID       int  // target user of per-user actions
	QuizActive   bool
	Submitted    bool // a grading record exists for (quiz, principal)
}

type rule func(p auth.Principal, res Resource) error

var rules = map[Action]rule{
	ManageCourse:      courseOwner,
	ReadQuiz:          ownerOrEnrolled,
	ReadQuizQuestions: readQuizQuestions,
	SubmitQuiz:        submitQuiz,
	ViewFeedback:      viewFeedback,
	ViewGrades:        courseOwner,
	CreateCourse:      createCourse,
	Enroll:            enroll,
	ViewEnrollments:   viewEnrollments,
	ReadNotifications: self,
	ReadCourse:        readCourse,
	AttendLesson:      enrolledStudent("only students can attend lessons"),
	SubmitAssignment:  enrolledStudent("only students can submit assignments"),
}

// Authorize returns nil when p may perform action on res.
// It fails with core.ErrNotAuthenticated when there is no principal, with a
// *core.PermissionError on role / ownership / enrollment mismatch, and with
// core.ErrExpired or core.ErrAlreadySubmitted when the quiz state forbids it.
func Authorize(p auth.Principal, action Action, res Resource) error {
	if !p.IsAuthenticated() {
		return core.ErrNotAuthenticated
	}
	r, ok := rules[action]
	if !ok {
		return core.NewPermissionError(fmt.Sprintf("unknown action %s", action))
	}
	return r(p, res)
}

// Guard authorizes like Authorize and reports every permission denial on its logger.
type Guard struct {
	log core.Logger
}

func NewGuard(log core.Logger) Guard {
	return Guard{log: log}
}

func (g Guard) Authorize(p auth.Principal, action Action, res Resource) error {
	err := Authorize(p, action, res)
	if perr, ok := err.(*core.PermissionError); ok {
		g.log.Warn("access denied", p, map[string]interface{}{
			"action":    action.String(),
			"course_id": res.CourseID,
			"reason":    perr.Reason,
		})
	}
	return err
}

func deny(reason string) error { return core.NewPermissionError(reason) }

func courseOwner(p auth.Principal, res Resource) error {
	switch p.Role {
	case auth.RoleInstructor:
		if p.ID != res.InstructorID {
			return deny("you are not the instructor of this course")
		}
		return nil
	case auth.RoleAdmin, auth.RoleStudent:
		return deny("only the course instructor can do this")
	default:
		return deny("unknown role")
	}
}

func ownerOrEnrolled(p auth.Principal, res Resource) error {
	switch p.Role {
	case auth.RoleInstructor:
		return courseOwner(p, res)
	case auth.RoleStudent:
		if !res.Enrolled {
			return deny("you are not enrolled in this course")
		}
		return nil
	case auth.RoleAdmin:
		return deny("only the course instructor or enrolled students can do this")
	default:
		return deny("unknown role")
	}
}

func readQuizQuestions(p auth.Principal, res Resource) error {
	if err := ownerOrEnrolled(p, res); err != nil {
		return err
	}
	if p.Role == auth.RoleStudent && !res.QuizActive {
		return core.ErrExpired
	}
	return nil
}

func submitQuiz(p auth.Principal, res Resource) error {
	switch p.Role {
	case auth.RoleStudent:
		if !res.Enrolled {
			return deny("you are not enrolled in this course")
		}
		if !res.QuizActive {
			return core.ErrExpired
		}
		if res.Submitted {
			return core.ErrAlreadySubmitted
		}
		return nil
	case auth.RoleAdmin, auth.RoleInstructor:
		return deny("only students can submit quizzes")
	default:
		return deny("unknown role")
	}
}

func viewFeedback(p auth.Principal, res Resource) error {
	switch p.Role {
	case auth.RoleInstructor:
		return courseOwner(p, res)
	case auth.RoleStudent:
		if !res.Enrolled {
			return deny("you are not enrolled in this course")
		}
		if p.ID != res.StudentID {
			return deny("you are not allowed to check other students' grades")
		}
		return nil
	case auth.RoleAdmin:
		return deny("only the course instructor or the student can view this grade")
	default:
		return deny("unknown role")
	}
}

func createCourse(p auth.Principal, res Resource) error {
	switch p.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleInstructor:
		if p.ID != res.InstructorID {
			return deny("instructors can only create their own courses")
		}
		return nil
	case auth.RoleStudent:
		return deny("students cannot create courses")
	default:
		return deny("unknown role")
	}
}

func enroll(p auth.Principal, res Resource) error {
	switch p.Role {
	case auth.RoleStudent:
		if p.ID != res.StudentID {
			return deny("student ID mismatch")
		}
		return nil
	case auth.RoleAdmin, auth.RoleInstructor:
		return deny("only students can enroll in courses")
	default:
		return deny("unknown role")
	}
}

func viewEnrollments(p auth.Principal, res Resource) error {
	switch p.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleInstructor:
		return courseOwner(p, res)
	case auth.RoleStudent:
		return deny("only admins or the course instructor can view enrollments")
	default:
		return deny("unknown role")
	}
}

func self(p auth.Principal, res Resource) error {
	if p.ID != res.UserID {
		return deny("ID mismatch")
	}
	return nil
}

func readCourse(p auth.Principal, res Resource) error {
	switch p.Role {
	case auth.RoleAdmin, auth.RoleInstructor:
		return nil
	case auth.RoleStudent:
		if !res.Enrolled {
			return deny("you are not enrolled in this course")
		}
		return nil
	default:
		return deny("unknown role")
	}
}

func enrolledStudent(notStudent string) rule {
	return func(p auth.Principal, res Resource) error {
		switch p.Role {
		case auth.RoleStudent:
			if !res.Enrolled {
				return deny("you are not enrolled in this course")
			}
			return nil
		case auth.RoleAdmin, auth.RoleInstructor:
			return deny(notStudent)
		default:
			return deny("unknown role")
		}
	}
}
