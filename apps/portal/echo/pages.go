package echoportal

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nicolascodet/canvas-remake/core/lms"
)

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func registerPages(app *echo.Echo, s *Server) {
	app.GET("/", s.dashboard)
	app.GET("/calendar", s.calendar)
	app.POST("/courses/refresh", s.refreshCourses)
}

// logFetch logs a failed read the page degrades from.
func (s *Server) logFetch(ctx echo.Context, what string, err error) {
	s.Logger.Error(fmt.Sprintf("%s: %v", what, err), err, contextPerson(ctx))
}

func (s *Server) loc() *time.Location {
	return s.Conf.Location()
}

type dashboardData struct {
	page
	Courses []lms.Course
	Days    []lms.DayBucket
}

func (s *Server) dashboard(ctx echo.Context) error {
	data := dashboardData{page: s.page("Dashboard")}

	dash, err := s.Store.Dashboard(ctx.Request().Context())
	if err != nil {
		s.logFetch(ctx, "loading dashboard", err)
		data.Notice = tryAgainLater
		data.Courses = s.Courses.List()
	} else {
		data.Courses = dash.Courses
		data.Days = lms.GroupByDay(dash.Upcoming, s.loc())
	}
	return ctx.Render(http.StatusOK, "dashboard", data)
}

type calendarData struct {
	page
	Month    lms.Month
	Weekdays []string
}

func (s *Server) calendar(ctx echo.Context) error {
	month := nowFunc()
	if param := ctx.QueryParam("month"); param != "" {
		t, err := time.ParseInLocation(monthParam, param, s.loc())
		if err != nil {
			return errInvalidMonthParam
		}
		month = t
	}

	data := calendarData{page: s.page("Calendar"), Weekdays: weekdays}
	events, err := s.Store.Events(ctx.Request().Context())
	if err != nil {
		s.logFetch(ctx, "loading events", err)
		data.Notice = tryAgainLater
	}
	data.Month = lms.MonthGrid(month, events, s.loc())
	return ctx.Render(http.StatusOK, "calendar", data)
}

// refreshCourses reloads the course registry and sends the browser back where it came from.
func (s *Server) refreshCourses(ctx echo.Context) error {
	if _, err := s.Courses.Refresh(ctx.Request().Context()); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, localReferer(ctx))
}

// localReferer returns the path of the Referer when it points at this host, "/" otherwise.
func localReferer(ctx echo.Context) string {
	ref, err := url.Parse(ctx.Request().Referer())
	if err != nil || ref.Path == "" || !strings.HasPrefix(ref.Path, "/") {
		return "/"
	}
	if ref.Host != "" && ref.Host != ctx.Request().Host {
		return "/"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
