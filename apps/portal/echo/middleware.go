package echoportal

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nicolascodet/canvas-remake/core"
)

const (
	sessionCookie = "portal_session"
	sessionCtxKey = "sessionID"
	sessionMaxAge = 30 * 24 * time.Hour
)

// sessionMiddleware makes sure every browser carries an opaque session id.
// Quiz sessions are keyed by it; it authenticates nothing.
func sessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			var id string
			if c, err := ctx.Cookie(sessionCookie); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.New().String()
				ctx.SetCookie(&http.Cookie{
					Name:     sessionCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(sessionMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   ctx.IsTLS(),
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx.Set(sessionCtxKey, id)
			return next(ctx)
		}
	}
}

func sessionID(ctx echo.Context) string {
	id, _ := ctx.Get(sessionCtxKey).(string)
	return id
}

func contextPerson(ctx echo.Context) core.Person {
	return core.Person{ID: sessionID(ctx)}
}
