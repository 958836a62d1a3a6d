package echoportal

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolascodet/canvas-remake/core/lms"
	"github.com/nicolascodet/canvas-remake/core/quiz"
	"github.com/nicolascodet/canvas-remake/tests"
)

func TestAPIDashboard(t *testing.T) {
	app := setup(t)

	rec := app.get("/api/dashboard")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dashboardResp
	decode(t, rec.Body, &resp)
	assert.Len(t, resp.Courses, 4)

	total := 0
	seen := make(map[string]bool)
	for _, day := range resp.Days {
		assert.False(t, seen[day.Key], "day %s appears twice", day.Key)
		seen[day.Key] = true
		for _, it := range day.Items {
			assert.Equal(t, day.Key, lms.DayKey(it.When(), nil))
		}
		total += len(day.Items)
	}
	assert.Equal(t, 13, total)
	require.NotEmpty(t, resp.Days)
	assert.Equal(t, lms.KindAssignment, resp.Days[0].Items[0].Kind) // hw5, two days ago

	t.Run("upstream failure", func(t *testing.T) {
		app := setup(t)
		app.api.Fail("GET /dashboard", http.StatusInternalServerError)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadGateway,
			wantData: marshalObj(t, map[string]string{"error": tryAgainLater}),
		}, app.get("/api/dashboard"))
	})
}

func TestAPICourses(t *testing.T) {
	app := setup(t)

	rec := app.get("/api/courses")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []lms.Course
	decode(t, rec.Body, &list)
	assert.Len(t, list, 4)

	app.api.Update(func(f *testutil.Fixtures) { f.Courses = f.Courses[:1] })
	req, rec := newRequest(http.MethodPost, "/api/courses/refresh")
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec.Body, &list)
	assert.Len(t, list, 1)
	assert.Len(t, app.Courses.List(), 1)
}

func TestAPIGrades(t *testing.T) {
	app := setup(t)

	rec := app.get("/api/courses/MEME-420/grades")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp gradesResp
	decode(t, rec.Body, &resp)
	assert.Equal(t, "MEME-420", resp.CourseID)
	assert.Equal(t, 72, resp.Grade.Total)
	assert.Equal(t, 42, resp.Grade.Earned)
	assert.InDelta(t, 58.333, resp.Grade.Percentage, 0.001)
	assert.Len(t, resp.Assignments, 3)

	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: []byte(`{"error":"course not found"}`),
	}, app.get("/api/courses/NOPE-000/grades"))
}

func TestAPIQuizSession(t *testing.T) {
	app := setup(t)

	view := func(t *testing.T, wantCode int, method, path string, body ...[]byte) quiz.View {
		t.Helper()
		req, rec := newRequest(method, path, body...)
		app.do(req, rec)
		require.Equal(t, wantCode, rec.Code, rec.Body.String())
		var v quiz.View
		decode(t, rec.Body, &v)
		return v
	}

	v := view(t, http.StatusOK, http.MethodGet, "/api/quiz-session")
	assert.Equal(t, "browsing", v.StateName)
	assert.Empty(t, v.Answers)
	assert.Zero(t, app.Quizzes.Len(), "looking at the session does not register one")

	tests := []httpTest{
		{
			name:     "start without quiz id",
			method:   http.MethodPost,
			path:     "/api/quiz-session",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"quiz_id":"this field is required"}`),
		},
		{
			name:     "start unknown quiz",
			method:   http.MethodPost,
			path:     "/api/quiz-session",
			body:     []byte(`{"quiz_id":"nope"}`),
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error":"quiz not found"}`),
		},
		{
			name:     "answer without a quiz",
			method:   http.MethodPut,
			path:     "/api/quiz-session/answers",
			body:     []byte(`{"question":0,"option":1}`),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, map[string]string{"error": quiz.ErrNotInProgress.Error()}),
		},
		{
			name:     "submit without a quiz",
			method:   http.MethodPost,
			path:     "/api/quiz-session/submit",
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, map[string]string{"error": quiz.ErrNotInProgress.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.do(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
	t.Run("close without a quiz", func(t *testing.T) {
		req, rec := newRequest(http.MethodDelete, "/api/quiz-session")
		app.do(req, rec)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
	assert.Zero(t, app.Quizzes.Len(), "failed actions leave no session behind")

	v = view(t, http.StatusCreated, http.MethodPost, "/api/quiz-session", []byte(`{"quiz_id":"quiz2"}`))
	assert.Equal(t, "in_progress", v.StateName)
	assert.Equal(t, []int{quiz.Unanswered, quiz.Unanswered}, v.Answers)
	assert.False(t, v.HasTimer)
	assert.False(t, v.CanSubmit)

	v = view(t, http.StatusOK, http.MethodPut, "/api/quiz-session/answers", []byte(`{"question":0,"option":0}`))
	assert.Equal(t, []int{0, quiz.Unanswered}, v.Answers)

	t.Run("missing option", func(t *testing.T) {
		req, rec := newRequest(http.MethodPut, "/api/quiz-session/answers", []byte(`{"question":1}`))
		app.do(req, rec)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: []byte(`{"option":"this field is required"}`)}, rec)
	})

	t.Run("incomplete submit", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/quiz-session/submit")
		app.do(req, rec)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, map[string]string{"error": quiz.ErrIncompleteAnswers.Error()}),
		}, rec)
	})

	v = view(t, http.StatusOK, http.MethodPut, "/api/quiz-session/answers", []byte(`{"question":1,"option":0}`))
	assert.True(t, v.CanSubmit)

	req, rec := newRequest(http.MethodPost, "/api/quiz-session/submit")
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sub lms.QuizSubmission
	decode(t, rec.Body, &sub)
	require.NotNil(t, sub.Score)
	assert.Equal(t, 10.0, *sub.Score)
	assert.Equal(t, []int{0, 0}, sub.Answers)

	v = view(t, http.StatusOK, http.MethodGet, "/api/quiz-session")
	assert.Equal(t, "submitted", v.StateName)
	require.NotNil(t, v.Submission)

	for i := 0; i < 2; i++ { // closing twice is fine
		req, rec := newRequest(http.MethodDelete, "/api/quiz-session")
		app.do(req, rec)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	v = view(t, http.StatusOK, http.MethodGet, "/api/quiz-session")
	assert.Equal(t, "browsing", v.StateName)
}

func TestAPISubmitUpstreamFailure(t *testing.T) {
	app := setup(t)
	sess := app.Quizzes.Session(testSession)
	q, err := app.Store.Quiz(context.Background(), "quiz3")
	require.NoError(t, err)
	require.NoError(t, sess.Start(q))
	require.NoError(t, sess.SelectAnswer(0, 1))

	app.api.Fail("POST /quizzes/quiz3/submit", http.StatusServiceUnavailable)
	req, rec := newRequest(http.MethodPost, "/api/quiz-session/submit")
	app.do(req, rec)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadGateway,
		wantData: marshalObj(t, map[string]string{"error": tryAgainLater}),
	}, rec)
	assert.Equal(t, quiz.InProgress, sess.State())
	assert.NotEmpty(t, app.logs.Messages("ERROR"))
}
