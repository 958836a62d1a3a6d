package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nicolascodet/canvas-remake/core/lms"
)

// SessionCookieName is set by a FakeAPI on every response.
const SessionCookieName = "lms_session"

// zone-less layout the LMS backend emits
const isoLocal = "2006-01-02T15:04:05.999999"

type detail struct {
	Detail string `json:"detail"`
}

// FakeAPI is an in-memory LMS backend served over httptest.
// Requests are tracked by "METHOD /path" keys, e.g. "GET /courses/MEME-420".
type FakeAPI struct {
	srv *httptest.Server

	mu       sync.Mutex
	data     Fixtures
	hits     map[string]int
	bodies   map[string][]byte
	headers  map[string]http.Header
	failures map[string]int
	holds    map[string]chan struct{}
}

func NewFakeAPI(t *testing.T) *FakeAPI {
	f := &FakeAPI{
		data:     NewFixtures(),
		hits:     make(map[string]int),
		bodies:   make(map[string][]byte),
		headers:  make(map[string]http.Header),
		failures: make(map[string]int),
		holds:    make(map[string]chan struct{}),
	}

	app := echo.New()
	app.HideBanner = true
	app.Use(f.track)
	app.GET("/courses", f.listCourses)
	app.GET("/courses/:id", f.getCourse)
	app.GET("/assignments", f.listAssignments)
	app.GET("/assignments/:id", f.getAssignment)
	app.GET("/events", f.listEvents)
	app.GET("/announcements", f.listAnnouncements)
	app.GET("/dashboard", f.dashboard)
	app.GET("/courses/:id/discussions", f.listDiscussions)
	app.POST("/courses/:id/discussions", f.createDiscussion)
	app.GET("/discussions/:id/replies", f.listReplies)
	app.POST("/discussions/:id/replies", f.createReply)
	app.GET("/courses/:id/quizzes", f.listQuizzes)
	app.GET("/quizzes/:id", f.getQuiz)
	app.POST("/quizzes/:id/submit", f.submitQuiz)

	f.srv = httptest.NewServer(app)
	t.Cleanup(f.Close)
	return f
}

func (f *FakeAPI) URL() string { return f.srv.URL }

// Close releases held requests and shuts the server down.
func (f *FakeAPI) Close() {
	f.mu.Lock()
	for key, ch := range f.holds {
		close(ch)
		delete(f.holds, key)
	}
	f.mu.Unlock()
	f.srv.Close()
}

func (f *FakeAPI) Hits(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func (f *FakeAPI) TotalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, h := range f.hits {
		n += h
	}
	return n
}

// Fail makes every request to key answer with status until Heal is called.
func (f *FakeAPI) Fail(key string, status int) {
	f.mu.Lock()
	f.failures[key] = status
	f.mu.Unlock()
}

func (f *FakeAPI) Heal(key string) {
	f.mu.Lock()
	delete(f.failures, key)
	f.mu.Unlock()
}

// Hold blocks requests to key until the returned func is called.
func (f *FakeAPI) Hold(key string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.holds[key] = ch
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.holds[key] == ch {
				close(ch)
				delete(f.holds, key)
			}
			f.mu.Unlock()
		})
	}
}

// LastBody returns the body of the last request to key.
func (f *FakeAPI) LastBody(key string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func (f *FakeAPI) LastHeader(key, name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, ok := f.headers[key]; ok {
		return h.Get(name)
	}
	return ""
}

// Update mutates the served data.
func (f *FakeAPI) Update(fn func(*Fixtures)) {
	f.mu.Lock()
	fn(&f.data)
	f.mu.Unlock()
}

func (f *FakeAPI) track(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		key := req.Method + " " + req.URL.Path
		body, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(body))

		f.mu.Lock()
		f.hits[key]++
		f.bodies[key] = body
		f.headers[key] = req.Header.Clone()
		hold := f.holds[key]
		status := f.failures[key]
		f.mu.Unlock()

		if hold != nil {
			<-hold
		}

		c.SetCookie(&http.Cookie{Name: SessionCookieName, Value: "fake", Path: "/"})
		if status != 0 {
			return c.JSON(status, detail{http.StatusText(status)})
		}
		return next(c)
	}
}

func notFound(c echo.Context, what string) error {
	return c.JSON(http.StatusNotFound, detail{what + " not found"})
}

func (f *FakeAPI) listCourses(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return c.JSON(http.StatusOK, f.data.Courses)
}

func (f *FakeAPI) getCourse(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, course := range f.data.Courses {
		if course.ID == c.Param("id") {
			return c.JSON(http.StatusOK, course)
		}
	}
	return notFound(c, "Course")
}

func (f *FakeAPI) listAssignments(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return c.JSON(http.StatusOK, f.data.Assignments)
}

func (f *FakeAPI) getAssignment(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.data.Assignments {
		if a.ID == c.Param("id") {
			return c.JSON(http.StatusOK, a)
		}
	}
	return notFound(c, "Assignment")
}

func (f *FakeAPI) listEvents(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return c.JSON(http.StatusOK, f.data.Events)
}

func (f *FakeAPI) listAnnouncements(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return c.JSON(http.StatusOK, f.data.Announcements)
}

func iso(t lms.Time) string { return t.Format(isoLocal) }

// dashboard mimics the reference backend: flat, type-tagged items with zone-less timestamps, sorted by date.
func (f *FakeAPI) dashboard(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	type item struct {
		when time.Time
		body map[string]interface{}
	}
	items := make([]item, 0, len(f.data.Assignments)+len(f.data.Events)+len(f.data.Announcements))
	for _, a := range f.data.Assignments {
		items = append(items, item{a.DueDate.Time, map[string]interface{}{
			"type": "assignment", "id": a.ID, "course_id": a.CourseID, "title": a.Title,
			"due_date": iso(a.DueDate), "points": a.Points, "status": a.Status,
		}})
	}
	for _, e := range f.data.Events {
		items = append(items, item{e.StartTime.Time, map[string]interface{}{
			"type": "event", "id": e.ID, "title": e.Title, "start_time": iso(e.StartTime),
			"end_time": iso(e.EndTime), "location": e.Location, "course_id": e.CourseID,
		}})
	}
	for _, a := range f.data.Announcements {
		items = append(items, item{a.Date.Time, map[string]interface{}{
			"type": "announcement", "id": a.ID, "source": a.Source, "title": a.Title,
			"content": a.Content, "date": iso(a.Date),
		}})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].when.Before(items[j].when) })

	upcoming := make([]map[string]interface{}, 0, len(items))
	for _, it := range items {
		upcoming = append(upcoming, it.body)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"courses": f.data.Courses, "upcoming": upcoming})
}

func (f *FakeAPI) listDiscussions(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	posts := make([]lms.DiscussionPost, 0)
	for _, p := range f.data.Discussions {
		if p.CourseID == c.Param("id") {
			posts = append(posts, p)
		}
	}
	return c.JSON(http.StatusOK, posts)
}

func (f *FakeAPI) createDiscussion(c echo.Context) error {
	in := new(struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	})
	if err := c.Bind(in); err != nil || in.Title == "" || in.Content == "" {
		return c.JSON(http.StatusUnprocessableEntity, detail{"title and content are required"})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	post := lms.DiscussionPost{
		ID:        fmt.Sprintf("disc%d", len(f.data.Discussions)+1),
		CourseID:  c.Param("id"),
		Title:     in.Title,
		Content:   in.Content,
		Author:    "Current User",
		CreatedAt: lms.NewTime(time.Now().In(lms.Location())),
	}
	f.data.Discussions = append(f.data.Discussions, post)
	return c.JSON(http.StatusOK, post)
}

func (f *FakeAPI) listReplies(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	replies := make([]lms.DiscussionReply, 0)
	for _, r := range f.data.Replies {
		if r.PostID == c.Param("id") {
			replies = append(replies, r)
		}
	}
	return c.JSON(http.StatusOK, replies)
}

func (f *FakeAPI) createReply(c echo.Context) error {
	in := new(struct {
		Content string `json:"content"`
	})
	if err := c.Bind(in); err != nil || in.Content == "" {
		return c.JSON(http.StatusUnprocessableEntity, detail{"content is required"})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	reply := lms.DiscussionReply{
		ID:        fmt.Sprintf("reply%d", len(f.data.Replies)+1),
		PostID:    c.Param("id"),
		Content:   in.Content,
		Author:    "Current User",
		CreatedAt: lms.NewTime(time.Now().In(lms.Location())),
	}
	f.data.Replies = append(f.data.Replies, reply)
	for i := range f.data.Discussions {
		if f.data.Discussions[i].ID == reply.PostID {
			f.data.Discussions[i].RepliesCount++
			break
		}
	}
	return c.JSON(http.StatusOK, reply)
}

func (f *FakeAPI) listQuizzes(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	quizzes := make([]lms.Quiz, 0)
	for _, q := range f.data.Quizzes {
		if q.CourseID == c.Param("id") {
			quizzes = append(quizzes, q)
		}
	}
	return c.JSON(http.StatusOK, quizzes)
}

func (f *FakeAPI) findQuiz(id string) (lms.Quiz, bool) {
	for _, q := range f.data.Quizzes {
		if q.ID == id {
			return q, true
		}
	}
	return lms.Quiz{}, false
}

func (f *FakeAPI) getQuiz(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q, ok := f.findQuiz(c.Param("id")); ok {
		return c.JSON(http.StatusOK, q)
	}
	return notFound(c, "Quiz")
}

func (f *FakeAPI) submitQuiz(c echo.Context) error {
	in := new(struct {
		Answers []int `json:"answers"`
	})
	if err := c.Bind(in); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, detail{"answers are required"})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.findQuiz(c.Param("id"))
	if !ok {
		return notFound(c, "Quiz")
	}
	if len(in.Answers) != len(q.Questions) {
		return c.JSON(http.StatusBadRequest, detail{"Invalid number of answers"})
	}

	correct := 0
	for i, a := range in.Answers {
		if a == q.Questions[i].CorrectOption {
			correct++
		}
	}
	score := 0.0
	if len(q.Questions) > 0 {
		score = float64(correct) / float64(len(q.Questions)) * float64(q.TotalPoints)
	}
	return c.JSON(http.StatusOK, lms.QuizSubmission{
		QuizID:      q.ID,
		StudentID:   "current_user",
		Answers:     in.Answers,
		Score:       &score,
		SubmittedAt: lms.NewTime(time.Now().In(lms.Location())),
	})
}
