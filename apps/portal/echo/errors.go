package echoportal

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nicolascodet/canvas-remake/core"
	"github.com/nicolascodet/canvas-remake/core/quiz"
	"github.com/nicolascodet/canvas-remake/services/lmsapi"
)

const tryAgainLater = "Please try again later."

var (
	errCourseNotFound    = echo.NewHTTPError(http.StatusNotFound, "course not found")
	errQuizNotFound      = echo.NewHTTPError(http.StatusNotFound, "quiz not found")
	errQuizOtherCourse   = echo.NewHTTPError(http.StatusConflict, "a quiz of another course is in progress")
	errInvalidMonthParam = core.NewValidationError(errors.New("invalid month"), core.FieldError{Field: "month", Error: "expected YYYY-MM"})
)

// errorPage renders an HTML error page.
type errorPage func(ctx echo.Context, code int, message string) error

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
// Requests under /api get JSON, every other request an HTML page.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func(), render errorPage) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case *core.ValidationError:
			if origErr.Fields != nil {
				message = origErr.FieldMap()
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *lmsapi.RequestError:
			if origErr.StatusCode == http.StatusNotFound {
				code = http.StatusNotFound
				message = "not found"
				break
			}
			code = http.StatusBadGateway
			message = tryAgainLater
			logger.Error("LMS API request failed", errors.Wrap(err, "api"), contextPerson(ctx))
		default:
			if quiz.IsStateError(err) {
				code = http.StatusConflict
				message = errors.Cause(err).Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg), contextPerson(ctx))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}

		// Send response
		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else if wantsJSON(ctx) {
			if m, ok := message.(string); ok {
				message = echo.Map{"error": m}
			}
			err = ctx.JSON(code, message)
		} else {
			err = render(ctx, code, messageText(message))
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

func wantsJSON(ctx echo.Context) bool {
	return strings.HasPrefix(ctx.Request().URL.Path, "/api/") || ctx.Request().URL.Path == "/api"
}

// messageText flattens an error message for display.
func messageText(message interface{}) string {
	switch m := message.(type) {
	case string:
		return m
	case map[string]string:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(m))
		for _, k := range keys {
			parts = append(parts, k+": "+m[k])
		}
		return strings.Join(parts, "; ")
	case error:
		return m.Error()
	}
	return http.StatusText(http.StatusInternalServerError)
}
