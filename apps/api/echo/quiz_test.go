package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/Chhotu7079/UniCore/apps/api/echo"
	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
	"github.com/Chhotu7079/UniCore/core/grading"
	"github.com/Chhotu7079/UniCore/core/notification"
	"github.com/Chhotu7079/UniCore/core/question"
	"github.com/Chhotu7079/UniCore/core/quiz"
	"github.com/Chhotu7079/UniCore/tests"
)

func Test_courseApi_createQuiz(t *testing.T) {
	server, env := setup(t)
	teacher := testutil.CreateAccount(t, env.Accounts, "Teacher", "teacher@test.cd", "", auth.RoleInstructor)
	student := testutil.CreateAccount(t, env.Accounts, "Student", "student@test.cd", "", auth.RoleStudent)
	c := testutil.CreateCourse(t, env.Courses, "Go", teacher.ID)
	testutil.CreateQuestions(t, env.Questions, c.ID, question.MCQ, 6)
	testutil.CreateQuestions(t, env.Questions, c.ID, question.TrueFalse, 4)

	path := fmt.Sprintf("/v1/courses/%d/quizzes", c.ID)

	runHTTPTests(t, server, []httpTest{
		{name: "student", method: http.MethodPost, path: path, token: getToken(t, student), body: marchallObj(t, quiz.NewQuiz{Type: question.MCQ}), wantCode: http.StatusForbidden},
		{
			name:     "type out of range",
			method:   http.MethodPost,
			path:     path,
			token:    getToken(t, teacher),
			body:     marchallObj(t, quiz.NewQuiz{Type: question.Type(4)}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"type": "type must be between 1 and 3"}),
		},
		{
			name:     "insufficient pool",
			method:   http.MethodPost,
			path:     path,
			token:    getToken(t, teacher),
			body:     marchallObj(t, quiz.NewQuiz{Type: question.TrueFalse}),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: core.ErrInsufficientPool.Error()}),
		},
	})

	t.Run("owner", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, teacher), marchallObj(t, quiz.NewQuiz{Type: question.MCQ}))
		server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var qz quiz.Quiz
		unmarshallObj(t, rec.Body.Bytes(), &qz)
		assert.Equal(t, c.ID, qz.CourseID)
		assert.Equal(t, "quiz1", qz.Title)

		bound, err := env.Questions.ListByQuiz(context.Background(), qz.ID)
		require.NoError(t, err)
		assert.Len(t, bound, quiz.QuestionCount)
		left, err := env.Questions.FindUnbound(context.Background(), c.ID, question.MCQ)
		require.NoError(t, err)
		assert.Len(t, left, 1)
	})

	t.Run("pool drained", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, teacher), marchallObj(t, quiz.NewQuiz{Type: question.MCQ}))
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func Test_quizApi_lifecycle(t *testing.T) {
	server, env := setup(t)
	teacher := testutil.CreateAccount(t, env.Accounts, "Teacher", "teacher@test.cd", "", auth.RoleInstructor)
	other := testutil.CreateAccount(t, env.Accounts, "Other", "other@test.cd", "", auth.RoleInstructor)
	student := testutil.CreateAccount(t, env.Accounts, "Student", "student@test.cd", "", auth.RoleStudent)
	outsider := testutil.CreateAccount(t, env.Accounts, "Outsider", "outsider@test.cd", "", auth.RoleStudent)
	c := testutil.CreateCourse(t, env.Courses, "Go", teacher.ID)
	testutil.CreateQuestions(t, env.Questions, c.ID, question.ShortAnswer, 5)
	testutil.Enroll(t, env.Courses, student.ID, c.ID)

	now := time.Now()
	quiz.NowFunc = func() time.Time { return now }
	defer func() { quiz.NowFunc = time.Now }()

	qz, err := env.QuizSvc.Create(context.Background(), auth.Principal{ID: teacher.ID, Role: auth.RoleInstructor}, c.ID, quiz.NewQuiz{Type: question.ShortAnswer})
	require.NoError(t, err)

	quizPath := fmt.Sprintf("/v1/quizzes/%d", qz.ID)
	teacherToken := getToken(t, teacher)
	studentToken := getToken(t, student)

	// fetch the questions as the student and answer all but the last one correctly
	req, rec := newAuthRequest(http.MethodGet, quizPath+"/questions", studentToken)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var qs []question.Question
	unmarshallObj(t, rec.Body.Bytes(), &qs)
	require.Len(t, qs, quiz.QuestionCount)

	answers := make([]string, 0, len(qs))
	for _, q := range qs {
		answers = append(answers, q.CorrectAnswer)
	}
	answers[len(answers)-1] = "wrong"

	runHTTPTests(t, server, []httpTest{
		{
			name:     "retrieve: enrolled student",
			method:   http.MethodGet,
			path:     quizPath,
			token:    studentToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.QuizResponse{Quiz: qz, Active: true, MinutesLeft: 15}),
		},
		{name: "retrieve: unknown quiz", method: http.MethodGet, path: "/v1/quizzes/999", token: studentToken, wantCode: http.StatusNotFound},
		{name: "retrieve: outsider", method: http.MethodGet, path: quizPath, token: getToken(t, outsider), wantCode: http.StatusForbidden},
		{name: "questions: outsider", method: http.MethodGet, path: quizPath + "/questions", token: getToken(t, outsider), wantCode: http.StatusForbidden},
		{name: "questions: other instructor", method: http.MethodGet, path: quizPath + "/questions", token: getToken(t, other), wantCode: http.StatusForbidden},
		{
			name:     "active: enrolled student",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/v1/courses/%d/quizzes/active", c.ID),
			token:    studentToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.ActiveQuizzesResponse{Quizzes: []string{fmt.Sprintf("quiz %d has 15 min left", qz.ID)}}),
		},
		{name: "feedback: before submission", method: http.MethodGet, path: fmt.Sprintf("%s/grades/%d", quizPath, student.ID), token: studentToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: core.ErrNotGradedYet.Error()})},
		{name: "submit: instructor", method: http.MethodPost, path: quizPath + "/submissions", token: teacherToken, body: marchallObj(t, grading.Submission{Answers: answers}), wantCode: http.StatusForbidden},
		{name: "submit: outsider", method: http.MethodPost, path: quizPath + "/submissions", token: getToken(t, outsider), body: marchallObj(t, grading.Submission{Answers: answers}), wantCode: http.StatusForbidden},
		{name: "submit: wrong answer count", method: http.MethodPost, path: quizPath + "/submissions", token: studentToken, body: marchallObj(t, grading.Submission{Answers: answers[:2]}), wantCode: http.StatusBadRequest},
		{
			name:     "submit: student",
			method:   http.MethodPost,
			path:     quizPath + "/submissions",
			token:    studentToken,
			body:     marchallObj(t, grading.Submission{Answers: answers}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, echoapi.ScoreResponse{QuizID: qz.ID, StudentID: student.ID, Score: 4}),
		},
		{
			name:     "submit: twice",
			method:   http.MethodPost,
			path:     quizPath + "/submissions",
			token:    studentToken,
			body:     marchallObj(t, grading.Submission{Answers: answers}),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: core.ErrAlreadySubmitted.Error()}),
		},
		{name: "feedback: self", method: http.MethodGet, path: fmt.Sprintf("%s/grades/%d", quizPath, student.ID), token: studentToken, wantCode: http.StatusOK, wantData: marchallObj(t, echoapi.ScoreResponse{QuizID: qz.ID, StudentID: student.ID, Score: 4})},
		{name: "feedback: owner", method: http.MethodGet, path: fmt.Sprintf("%s/grades/%d", quizPath, student.ID), token: teacherToken, wantCode: http.StatusOK, wantData: marchallObj(t, echoapi.ScoreResponse{QuizID: qz.ID, StudentID: student.ID, Score: 4})},
		{name: "feedback: other instructor", method: http.MethodGet, path: fmt.Sprintf("%s/grades/%d", quizPath, student.ID), token: getToken(t, other), wantCode: http.StatusForbidden},
		{
			name:     "grades: owner",
			method:   http.MethodGet,
			path:     quizPath + "/grades",
			token:    teacherToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.GradesResponse{QuizID: qz.ID, Grades: []string{fmt.Sprintf("(ID)%d: (Grade)4", student.ID)}}),
		},
		{name: "grades: student", method: http.MethodGet, path: quizPath + "/grades", token: studentToken, wantCode: http.StatusForbidden},
	})

	// the active window closes 15 minutes after creation
	quiz.NowFunc = func() time.Time { return now.Add(quiz.ActiveWindow) }

	testutil.Enroll(t, env.Courses, outsider.ID, c.ID)
	outsiderToken := getToken(t, outsider)

	runHTTPTests(t, server, []httpTest{
		{name: "expired: questions for student", method: http.MethodGet, path: quizPath + "/questions", token: outsiderToken, wantCode: http.StatusGone, wantData: marchallObj(t, httpErr{Error: core.ErrExpired.Error()})},
		{name: "expired: submit", method: http.MethodPost, path: quizPath + "/submissions", token: outsiderToken, body: marchallObj(t, grading.Submission{Answers: answers}), wantCode: http.StatusGone},
		{name: "expired: questions for owner", method: http.MethodGet, path: quizPath + "/questions", token: teacherToken, wantCode: http.StatusOK},
		{name: "expired: active list", method: http.MethodGet, path: fmt.Sprintf("/v1/courses/%d/quizzes/active", c.ID), token: teacherToken, wantCode: http.StatusOK, wantData: marchallObj(t, echoapi.ActiveQuizzesResponse{Quizzes: []string{}})},
		{
			name:     "expired: retrieve",
			method:   http.MethodGet,
			path:     quizPath,
			token:    outsiderToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.QuizResponse{Quiz: qz}),
		},
	})
}

func Test_notificationApi_list(t *testing.T) {
	server, env := setup(t)
	teacher := testutil.CreateAccount(t, env.Accounts, "Teacher", "teacher@test.cd", "", auth.RoleInstructor)
	student := testutil.CreateAccount(t, env.Accounts, "Student", "student@test.cd", "", auth.RoleStudent)
	c := testutil.CreateCourse(t, env.Courses, "Go", teacher.ID)
	testutil.CreateQuestions(t, env.Questions, c.ID, question.MCQ, 5)
	testutil.Enroll(t, env.Courses, student.ID, c.ID)

	qz, err := env.QuizSvc.Create(context.Background(), auth.Principal{ID: teacher.ID, Role: auth.RoleInstructor}, c.ID, quiz.NewQuiz{Type: question.MCQ})
	require.NoError(t, err)
	announcement := fmt.Sprintf("A new quiz (ID: %d) is available for course: %s", qz.ID, c.Name)

	path := fmt.Sprintf("/v1/users/%d/notifications", student.ID)
	list := func(t *testing.T, path string) []notification.Notification {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, student))
		server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var ns []notification.Notification
		unmarshallObj(t, rec.Body.Bytes(), &ns)
		return ns
	}

	runHTTPTests(t, server, []httpTest{
		{name: "someone else's", method: http.MethodGet, path: fmt.Sprintf("/v1/users/%d/notifications", teacher.ID), token: getToken(t, student), wantCode: http.StatusForbidden},
	})

	t.Run("unread", func(t *testing.T) {
		ns := list(t, path+"?unread=true")
		require.Len(t, ns, 1)
		assert.Equal(t, announcement, ns[0].Message)
		assert.False(t, ns[0].Read)
	})

	t.Run("marked read", func(t *testing.T) {
		assert.Empty(t, list(t, path+"?unread=true"))

		ns := list(t, path)
		require.Len(t, ns, 1)
		assert.True(t, ns[0].Read)
	})

	t.Run("emailed", func(t *testing.T) {
		sent := env.Mailer.Sent()
		require.NotEmpty(t, sent)
		assert.Equal(t, student.Email, sent[len(sent)-1].To[0].Address)
	})
}
