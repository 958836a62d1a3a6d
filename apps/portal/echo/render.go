package echoportal

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nicolascodet/canvas-remake/core"
	"github.com/nicolascodet/canvas-remake/core/lms"
	"github.com/nicolascodet/canvas-remake/core/quiz"
)

var (
	//go:embed templates
	templatesFS embed.FS

	//go:embed static
	staticFS embed.FS
)

const (
	layoutTemplate = "templates/layout.gohtml"
	monthParam     = "2006-01"
	dateLayout     = "Jan 2, 2006"
)

// renderer renders a page template wrapped in the layout; every page gets its own template set.
type renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer(conf *core.Config) (*renderer, error) {
	loc := conf.Location()
	funcs := template.FuncMap{
		"day": func(t lms.Time) string { return lms.DayKey(t, loc) },
		"clock": func(t lms.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(loc).Format(lms.TimeLayout)
		},
		"date": func(t lms.Time) string {
			if t.IsZero() {
				return "Invalid date"
			}
			return t.In(loc).Format(dateLayout)
		},
		"monthParam": func(t time.Time) string { return t.Format(monthParam) },
		"points": func(a lms.Assignment) string {
			if a.Points == nil {
				return "-"
			}
			return strconv.Itoa(*a.Points)
		},
		"score": func(f *float64) string {
			if f == nil {
				return "-"
			}
			return strconv.FormatFloat(*f, 'f', -1, 64)
		},
		"timeLeft": quiz.FormatRemaining,
		"add":      func(a, b int) int { return a + b },
		"blanks":   func(n int) []struct{} { return make([]struct{}, n) },
		"isToday": func(t time.Time) bool {
			now := nowFunc().In(loc)
			t = t.In(loc)
			return t.Year() == now.Year() && t.YearDay() == now.YearDay()
		},
	}

	layout, err := template.New(path.Base(layoutTemplate)).Funcs(funcs).ParseFS(templatesFS, layoutTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "parsing layout")
	}

	files, err := fs.Glob(templatesFS, "templates/*.gohtml")
	if err != nil {
		return nil, err
	}
	r := &renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		if file == layoutTemplate {
			continue
		}
		t, err := layout.Clone()
		if err != nil {
			return nil, errors.Wrapf(err, "cloning layout for %s", file)
		}
		if t, err = t.ParseFS(templatesFS, file); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", file)
		}
		r.pages[strings.TrimSuffix(path.Base(file), ".gohtml")] = t
	}
	return r, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return errors.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	return http.FileServer(http.FS(sub))
}

// page is the part of every page's data the layout reads.
type page struct {
	AppName string
	Title   string
	Nav     []lms.Course
	Course  *lms.Course // set on course pages, drives the course tabs
	Tab     string
	Notice  string
}

func (s *Server) page(title string) page {
	return page{
		AppName: s.Conf.AppName,
		Title:   title,
		Nav:     s.Courses.List(),
	}
}

func (s *Server) coursePage(course lms.Course, tab string) page {
	p := s.page(course.Name)
	p.Course = &course
	p.Tab = tab
	return p
}

type errorData struct {
	page
	Code    int
	Status  string
	Message string
}

func (s *Server) renderError(ctx echo.Context, code int, message string) error {
	data := errorData{
		page:    s.page(http.StatusText(code)),
		Code:    code,
		Status:  http.StatusText(code),
		Message: message,
	}
	return ctx.Render(code, "error", data)
}
