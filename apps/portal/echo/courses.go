package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nicolascodet/canvas-remake/core/lms"
	"github.com/nicolascodet/canvas-remake/services/lmsapi"
)

func registerCoursePages(g *echo.Group, s *Server) {
	g.GET("", s.courseHome)
	g.GET("/assignments", s.courseAssignments)
	g.GET("/grades", s.courseGrades)

	g.GET("/discussions", s.discussions)
	g.POST("/discussions", s.createDiscussion)
	g.POST("/discussions/:postID/replies", s.createReply)

	g.GET("/quizzes", s.quizzes)
	g.POST("/quizzes/:quizID/start", s.startQuiz)
	g.POST("/quizzes/answer", s.answerQuiz)
	g.POST("/quizzes/submit", s.submitQuiz)
	g.POST("/quizzes/close", s.closeQuiz)
}

// course resolves the :courseID of the route, from the registry first.
func (s *Server) course(ctx echo.Context) (lms.Course, error) {
	id := ctx.Param("courseID")
	if c, ok := s.Courses.Find(id); ok {
		return c, nil
	}
	c, err := s.Store.Course(ctx.Request().Context(), id)
	if err != nil {
		if lmsapi.IsNotFound(err) {
			return lms.Course{}, errCourseNotFound
		}
		return lms.Course{}, errors.Wrapf(err, "loading course %s", id)
	}
	return c, nil
}

// loadAssignments returns the assignments of course; on failure the page gets an empty list and a notice.
func (s *Server) loadAssignments(ctx echo.Context, course lms.Course, p *page) []lms.Assignment {
	list, err := s.Store.CourseAssignments(ctx.Request().Context(), course.ID)
	if err != nil {
		s.logFetch(ctx, "loading assignments of "+course.ID, err)
		p.Notice = tryAgainLater
		return []lms.Assignment{}
	}
	return list
}

type courseHomeData struct {
	page
	Assignments []lms.Assignment
	ToDo        []lms.Assignment
	Feedback    []lms.Assignment
}

func (s *Server) courseHome(ctx echo.Context) error {
	course, err := s.course(ctx)
	if err != nil {
		return err
	}
	data := courseHomeData{page: s.coursePage(course, "home")}
	data.Assignments = s.loadAssignments(ctx, course, &data.page)
	data.ToDo = lms.AssignmentsWithStatus(data.Assignments, lms.StatusNotSubmitted)
	data.Feedback = lms.AssignmentsWithStatus(data.Assignments, lms.StatusGraded)
	return ctx.Render(http.StatusOK, "course", data)
}

type assignmentsData struct {
	page
	Assignments []lms.Assignment
}

func (s *Server) courseAssignments(ctx echo.Context) error {
	course, err := s.course(ctx)
	if err != nil {
		return err
	}
	data := assignmentsData{page: s.coursePage(course, "assignments")}
	data.Assignments = s.loadAssignments(ctx, course, &data.page)
	return ctx.Render(http.StatusOK, "assignments", data)
}

type gradesData struct {
	page
	Assignments []lms.Assignment
	Grade       lms.Grade
}

func (s *Server) courseGrades(ctx echo.Context) error {
	course, err := s.course(ctx)
	if err != nil {
		return err
	}
	data := gradesData{page: s.coursePage(course, "grades")}
	data.Assignments = s.loadAssignments(ctx, course, &data.page)
	data.Grade = lms.ComputeGrade(data.Assignments)
	return ctx.Render(http.StatusOK, "grades", data)
}
