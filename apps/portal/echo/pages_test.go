package echoportal

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolascodet/canvas-remake/core/lms"
	"github.com/nicolascodet/canvas-remake/tests"
)

func TestRenderer(t *testing.T) {
	app := setup(t)
	r, ok := app.app.Renderer.(*renderer)
	require.True(t, ok)

	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	assert.ElementsMatch(t, []string{
		"error", "dashboard", "calendar", "course", "assignments", "grades", "discussions", "quizzes",
	}, names)
}

func TestDashboard(t *testing.T) {
	app := setup(t)

	rec := app.get("/")
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantHTML: []string{
		"Advanced Memeology",
		"Create a Viral Cat Meme Portfolio",
		"Emergency Meme Review",
		"URGENT: New Meme Format Just Dropped",
		lms.DayKey(lms.NewTime(testutil.FixtureNow()), nil),
	}}, rec)
	assert.NotContains(t, rec.Body.String(), tryAgainLater)

	t.Run("api failure", func(t *testing.T) {
		app := setup(t)
		app.api.Fail("GET /dashboard", http.StatusInternalServerError)

		rec := app.get("/")
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantHTML: []string{
			tryAgainLater,
			"Nothing coming up.",
			"MEME-420", // from the registry
		}}, rec)
		assert.NotEmpty(t, app.logs.Messages("ERROR"))
	})
}

func TestCalendar(t *testing.T) {
	origNow := nowFunc
	nowFunc = testutil.FixtureNow
	t.Cleanup(func() { nowFunc = origNow })

	app := setup(t)
	tests := []httpTest{
		{
			name:     "current month",
			path:     "/calendar",
			wantCode: http.StatusOK,
			wantHTML: []string{"March 2025", "Emergency Meme Review", "Netflix Marathon Training", "month=2025-02", "month=2025-04", "today"},
		},
		{
			name:     "other month",
			path:     "/calendar?month=2025-04",
			wantCode: http.StatusOK,
			wantHTML: []string{"April 2025", "month=2025-03", "month=2025-05"},
		},
		{
			name:     "invalid month",
			path:     "/calendar?month=march",
			wantCode: http.StatusBadRequest,
			wantHTML: []string{"expected YYYY-MM"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.get(tt.path))
		})
	}

	rec := app.get("/calendar?month=2025-04")
	assert.NotContains(t, rec.Body.String(), "Emergency Meme Review")
}

func TestCoursePages(t *testing.T) {
	app := setup(t)
	tests := []httpTest{
		{
			name:     "home",
			path:     "/courses/MEME-420",
			wantCode: http.StatusOK,
			wantHTML: []string{"Advanced Memeology", "Section 69", "Translate Doge Into Latin", "To do", "Recent feedback"},
		},
		{
			name:     "assignments",
			path:     "/courses/MEME-420/assignments",
			wantCode: http.StatusOK,
			wantHTML: []string{"Create a Viral Cat Meme Portfolio", "Translate Doge Into Latin", "graded", "not submitted"},
		},
		{
			name:     "grades",
			path:     "/courses/MEME-420/grades",
			wantCode: http.StatusOK,
			wantHTML: []string{"42 / 72 (58.3%)"},
		},
		{
			name:     "nothing graded yet",
			path:     "/courses/PIZZA-505/grades",
			wantCode: http.StatusOK,
			wantHTML: []string{"0 / 75 (0.0%)"},
		},
		{
			name:     "unknown course",
			path:     "/courses/NOPE-000",
			wantCode: http.StatusNotFound,
			wantHTML: []string{"course not found"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.get(tt.path))
		})
	}

	t.Run("other courses' assignments are left out", func(t *testing.T) {
		rec := app.get("/courses/MEME-420/assignments")
		assert.NotContains(t, rec.Body.String(), "Binge Watch Entire Series")
	})

	t.Run("assignments unavailable", func(t *testing.T) {
		app := setup(t)
		app.api.Fail("GET /assignments", http.StatusServiceUnavailable)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantHTML: []string{tryAgainLater, "No assignments."}},
			app.get("/courses/MEME-420/assignments"))
	})
}

func TestRefreshCourses(t *testing.T) {
	app := setup(t)
	app.api.Update(func(f *testutil.Fixtures) {
		f.Courses = append(f.Courses, lms.Course{ID: "BEER-110", Code: "BEER-110", Name: "Craft Beer Studies"})
	})
	_, ok := app.Courses.Find("BEER-110")
	require.False(t, ok)

	req, rec := newRequest(http.MethodPost, "/courses/refresh")
	req.Header.Set("Referer", "http://example.com/calendar?month=2025-04")
	app.do(req, rec)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/calendar?month=2025-04", rec.Header().Get(echo.HeaderLocation))

	_, ok = app.Courses.Find("BEER-110")
	assert.True(t, ok)
	assert.Contains(t, app.get("/calendar").Body.String(), "BEER-110")
}

func TestLocalReferer(t *testing.T) {
	tests := []struct {
		name    string
		referer string
		want    string
	}{
		{"none", "", "/"},
		{"same host", "http://example.com/courses/MEME-420", "/courses/MEME-420"},
		{"query kept", "http://example.com/calendar?month=2025-01", "/calendar?month=2025-01"},
		{"relative", "/courses", "/courses"},
		{"other host", "http://evil.example.org/phish", "/"},
	}
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/courses/refresh", nil)
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			ctx := e.NewContext(req, httptest.NewRecorder())
			assert.Equal(t, tt.want, localReferer(ctx))
		})
	}
}

func TestSessionCookie(t *testing.T) {
	app := setup(t)

	t.Run("new browser", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/quiz-session", nil)
		rec := app.do(req, httptest.NewRecorder())
		require.Equal(t, http.StatusOK, rec.Code)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, sessionCookie, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Len(t, cookies[0].Value, 36)
	})

	t.Run("known browser", func(t *testing.T) {
		rec := app.get("/api/quiz-session")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("garbage cookie is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/quiz-session", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "not-a-uuid"})
		rec := app.do(req, httptest.NewRecorder())
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.NotEqual(t, "not-a-uuid", cookies[0].Value)
	})
}

func TestStatic(t *testing.T) {
	app := setup(t)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantHTML: []string{".sidebar"}}, app.get("/static/style.css"))
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound}, app.get("/static/nope.js"))
}

func TestDiscussions(t *testing.T) {
	app := setup(t)

	t.Run("list and selected post", func(t *testing.T) {
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantHTML: []string{
			"The Philosophy of Doge", "Evolution of SpongeBob Memes", "Wow, such insight, very academic!", "Meme Historian",
		}}, app.get("/courses/MEME-420/discussions?post=disc1"))

		rec := app.get("/courses/MEME-420/discussions")
		assert.NotContains(t, rec.Body.String(), "Wow, such insight")
		assert.NotContains(t, rec.Body.String(), "Best Positions for Zoom Naps")
	})

	t.Run("unknown post shows the list only", func(t *testing.T) {
		rec := app.get("/courses/MEME-420/discussions?post=nope")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "Replies")
	})

	t.Run("new post", func(t *testing.T) {
		rec := app.postForm("/courses/MEME-420/discussions", url.Values{"title": {"  Rage Comics  "}, "content": {"Are they back?"}})
		require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
		assert.Equal(t, "/courses/MEME-420/discussions?post=disc5", rec.Header().Get(echo.HeaderLocation))

		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantHTML: []string{"Rage Comics", "Are they back?"}},
			app.get("/courses/MEME-420/discussions?post=disc5"))
		assert.JSONEq(t, `{"title":"Rage Comics","content":"Are they back?"}`,
			string(app.api.LastBody("POST /courses/MEME-420/discussions")))
	})

	t.Run("missing title keeps the input", func(t *testing.T) {
		hits := app.api.Hits("POST /courses/MEME-420/discussions")
		rec := app.postForm("/courses/MEME-420/discussions", url.Values{"title": {"   "}, "content": {"Much draft"}})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantHTML: []string{"this field is required", "Much draft"}}, rec)
		assert.Equal(t, hits, app.api.Hits("POST /courses/MEME-420/discussions"))
	})

	t.Run("api failure keeps the input", func(t *testing.T) {
		app.api.Fail("POST /courses/MEME-420/discussions", http.StatusInternalServerError)
		defer app.api.Heal("POST /courses/MEME-420/discussions")

		rec := app.postForm("/courses/MEME-420/discussions", url.Values{"title": {"Loss"}, "content": {"Is it?"}})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadGateway, wantHTML: []string{"could not be published", "Loss", "Is it?"}}, rec)
	})

	t.Run("reply", func(t *testing.T) {
		rec := app.postForm("/courses/MEME-420/discussions/disc3/replies", url.Values{"content": {"First!"}})
		require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
		assert.Equal(t, "/courses/MEME-420/discussions?post=disc3", rec.Header().Get(echo.HeaderLocation))

		rec = app.get("/courses/MEME-420/discussions?post=disc3")
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantHTML: []string{"First!", "1 replies"}}, rec)
	})

	t.Run("empty reply", func(t *testing.T) {
		rec := app.postForm("/courses/MEME-420/discussions/disc3/replies", url.Values{"content": {""}})
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantHTML: []string{"this field is required"}}, rec)
	})

	t.Run("unknown course", func(t *testing.T) {
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound}, app.get("/courses/NOPE-000/discussions"))
	})
}

func TestAPIUnavailableCourse(t *testing.T) {
	app := setup(t)
	app.api.Fail("GET /courses/GHOST-1", http.StatusInternalServerError)

	rec := app.get("/courses/GHOST-1")
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadGateway, wantHTML: []string{tryAgainLater}}, rec)
	assert.NotEmpty(t, app.logs.Messages("ERROR"))
}

func TestCacheServesRepeatedPages(t *testing.T) {
	app := setup(t)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, app.get("/courses/MEME-420/grades").Code)
	}
	assert.Equal(t, 1, app.api.Hits("GET /assignments"))

	app.Store.InvalidateAll()
	require.Equal(t, http.StatusOK, app.get("/courses/MEME-420/grades").Code)
	assert.Equal(t, 2, app.api.Hits("GET /assignments"))
}
