package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nicolascodet/canvas-remake/core/lms"
	"github.com/nicolascodet/canvas-remake/core/quiz"
	"github.com/nicolascodet/canvas-remake/services/lmsapi"
)

func registerAPI(g *echo.Group, s *Server) {
	g.GET("/dashboard", s.apiDashboard)
	g.GET("/courses", s.apiCourses)
	g.POST("/courses/refresh", s.apiRefreshCourses)
	g.GET("/courses/:courseID/grades", s.apiGrades)

	g.GET("/quiz-session", s.apiQuizSession)
	g.POST("/quiz-session", s.apiStartQuiz)
	g.PUT("/quiz-session/answers", s.apiAnswerQuiz)
	g.POST("/quiz-session/submit", s.apiSubmitQuiz)
	g.DELETE("/quiz-session", s.apiCloseQuiz)
}

type dashboardResp struct {
	Courses []lms.Course    `json:"courses"`
	Days    []lms.DayBucket `json:"days"`
}

func (s *Server) apiDashboard(ctx echo.Context) error {
	dash, err := s.Store.Dashboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading dashboard")
	}
	days := lms.GroupByDay(dash.Upcoming, s.loc())
	if days == nil {
		days = []lms.DayBucket{}
	}
	return ctx.JSON(http.StatusOK, dashboardResp{Courses: dash.Courses, Days: days})
}

func (s *Server) apiCourses(ctx echo.Context) error {
	if s.Courses.Loaded() {
		return ctx.JSON(http.StatusOK, s.Courses.List())
	}
	list, err := s.Store.Courses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading courses")
	}
	return ctx.JSON(http.StatusOK, list)
}

func (s *Server) apiRefreshCourses(ctx echo.Context) error {
	list, err := s.Courses.Refresh(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "refreshing courses")
	}
	return ctx.JSON(http.StatusOK, list)
}

type gradesResp struct {
	CourseID    string           `json:"course_id"`
	Grade       lms.Grade        `json:"grade"`
	Assignments []lms.Assignment `json:"assignments"`
}

func (s *Server) apiGrades(ctx echo.Context) error {
	course, err := s.course(ctx)
	if err != nil {
		return err
	}
	list, err := s.Store.CourseAssignments(ctx.Request().Context(), course.ID)
	if err != nil {
		return errors.Wrapf(err, "loading assignments of %s", course.ID)
	}
	return ctx.JSON(http.StatusOK, gradesResp{
		CourseID:    course.ID,
		Grade:       lms.ComputeGrade(list),
		Assignments: list,
	})
}

// existingSession returns the quiz session of the browser without registering one.
// A browser without a session gets a throwaway one in Browsing.
func (s *Server) existingSession(ctx echo.Context) *quiz.Session {
	if sess, ok := s.Quizzes.Lookup(sessionID(ctx)); ok {
		return sess
	}
	return quiz.NewSession(s.Store)
}

func (s *Server) apiQuizSession(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.existingSession(ctx).Snapshot())
}

func (s *Server) apiStartQuiz(ctx echo.Context) error {
	var req startQuizRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	if err := s.validate(req); err != nil {
		return err
	}

	q, err := s.Store.Quiz(ctx.Request().Context(), req.QuizID)
	if err != nil {
		if lmsapi.IsNotFound(err) {
			return errQuizNotFound
		}
		return errors.Wrapf(err, "loading quiz %s", req.QuizID)
	}

	sess := s.Quizzes.Session(sessionID(ctx))
	if err := sess.Start(q); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sess.Snapshot())
}

func (s *Server) apiAnswerQuiz(ctx echo.Context) error {
	var req answerRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	if err := s.validate(req); err != nil {
		return err
	}
	sess := s.existingSession(ctx)
	if err := sess.SelectAnswer(*req.Question, *req.Option); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) apiSubmitQuiz(ctx echo.Context) error {
	sub, err := s.existingSession(ctx).Submit(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (s *Server) apiCloseQuiz(ctx echo.Context) error {
	if err := s.existingSession(ctx).Close(); err != nil && errors.Cause(err) != quiz.ErrNothingToClose {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
