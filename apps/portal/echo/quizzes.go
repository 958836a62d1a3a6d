package echoportal

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nicolascodet/canvas-remake/core/lms"
	"github.com/nicolascodet/canvas-remake/core/quiz"
	"github.com/nicolascodet/canvas-remake/services/lmsapi"
)

type quizzesData struct {
	page
	Quizzes []lms.Quiz
	// Session is set while this course's quiz is in progress or just submitted.
	Session   *quiz.View
	FormError string
}

func quizzesURL(courseID string) string {
	return "/courses/" + url.PathEscape(courseID) + "/quizzes"
}

func (s *Server) quizzesPage(ctx echo.Context, course lms.Course) quizzesData {
	data := quizzesData{page: s.coursePage(course, "quizzes")}

	if sess, ok := s.Quizzes.Lookup(sessionID(ctx)); ok {
		v := sess.Snapshot()
		switch {
		case v.Quiz == nil:
		case v.Quiz.CourseID == course.ID:
			data.Session = &v
			if v.Err != nil {
				data.FormError = "Your answers could not be submitted. " + tryAgainLater
			}
			return data
		default:
			data.Notice = "You have a quiz in progress in another course: " + v.Quiz.Title
		}
	}

	list, err := s.Store.CourseQuizzes(ctx.Request().Context(), course.ID)
	if err != nil {
		s.logFetch(ctx, "loading quizzes of "+course.ID, err)
		data.Notice = tryAgainLater
		list = []lms.Quiz{}
	}
	data.Quizzes = list
	return data
}

// activeSession returns the session of the browser, refusing it when its quiz belongs to another course.
func (s *Server) activeSession(ctx echo.Context, course lms.Course) (*quiz.Session, error) {
	sess := s.Quizzes.Session(sessionID(ctx))
	if v := sess.Snapshot(); v.Quiz != nil && v.Quiz.CourseID != course.ID {
		return nil, errQuizOtherCourse
	}
	return sess, nil
}

// quizFailed re-renders the quizzes page after a failed action.
// State errors are 409s, anything else came from the API.
func (s *Server) quizFailed(ctx echo.Context, course lms.Course, err error) error {
	data := s.quizzesPage(ctx, course)
	if quiz.IsStateError(err) {
		data.FormError = errors.Cause(err).Error()
		return ctx.Render(http.StatusConflict, "quizzes", data)
	}
	s.logFetch(ctx, "quiz action in "+course.ID, err)
	if data.FormError == "" {
		data.FormError = tryAgainLater
	}
	return ctx.Render(http.StatusBadGateway, "quizzes", data)
}

func (s *Server) quizzes(ctx echo.Context) error {
	course, err := s.course(ctx)
	if err != nil {
		return err
	}
	return ctx.Render(http.StatusOK, "quizzes", s.quizzesPage(ctx, course))
}

// loadQuiz fetches the quiz of id, which must belong to course.
func (s *Server) loadQuiz(ctx echo.Context, course lms.Course, id string) (lms.Quiz, error) {
	q, err := s.Store.Quiz(ctx.Request().Context(), id)
	if err != nil {
		if lmsapi.IsNotFound(err) {
			return lms.Quiz{}, errQuizNotFound
		}
		return lms.Quiz{}, errors.Wrapf(err, "loading quiz %s", id)
	}
	if q.CourseID != course.ID {
		return lms.Quiz{}, errQuizNotFound
	}
	return q, nil
}

func (s *Server) startQuiz(ctx echo.Context) error {
	course, err := s.course(ctx)
	if err != nil {
		return err
	}
	q, err := s.loadQuiz(ctx, course, ctx.Param("quizID"))
	if err != nil {
		if errors.Cause(err) == errQuizNotFound {
			return err
		}
		return s.quizFailed(ctx, course, err)
	}
	sess, err := s.activeSession(ctx, course)
	if err != nil {
		return err
	}
	if err := sess.Start(q); err != nil {
		return s.quizFailed(ctx, course, err)
	}
	return ctx.Redirect(http.StatusSeeOther, quizzesURL(course.ID))
}

func (s *Server) answerQuiz(ctx echo.Context) error {
	course, err := s.course(ctx)
	if err != nil {
		return err
	}
	var form answerForm
	if err := bind(ctx, &form); err != nil {
		return err
	}
	if err := s.validate(form); err != nil {
		return err
	}
	sess, err := s.activeSession(ctx, course)
	if err != nil {
		return err
	}
	if err := sess.SelectAnswer(form.ints()); err != nil {
		return s.quizFailed(ctx, course, err)
	}
	return ctx.Redirect(http.StatusSeeOther, quizzesURL(course.ID))
}

func (s *Server) submitQuiz(ctx echo.Context) error {
	course, err := s.course(ctx)
	if err != nil {
		return err
	}
	sess, err := s.activeSession(ctx, course)
	if err != nil {
		return err
	}
	if _, err := sess.Submit(ctx.Request().Context()); err != nil {
		return s.quizFailed(ctx, course, err)
	}
	return ctx.Redirect(http.StatusSeeOther, quizzesURL(course.ID))
}

func (s *Server) closeQuiz(ctx echo.Context) error {
	course, err := s.course(ctx)
	if err != nil {
		return err
	}
	sess, err := s.activeSession(ctx, course)
	if err != nil {
		return err
	}
	if err := sess.Close(); err != nil && errors.Cause(err) != quiz.ErrNothingToClose {
		return s.quizFailed(ctx, course, err)
	}
	return ctx.Redirect(http.StatusSeeOther, quizzesURL(course.ID))
}
