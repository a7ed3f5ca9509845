package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CookieName = "sid"
	contextKey = "session_id"
)

// Middleware makes sure every request carries a session id, issuing a new
// cookie when the browser has none or sent something that is not a uuid.
func Middleware(ttl time.Duration, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(CookieName); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					id = ck.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
			}

			c.SetCookie(&http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(contextKey, id)
			return next(c)
		}
	}
}

func ID(c echo.Context) string {
	s, _ := c.Get(contextKey).(string)
	return s
}

// Set is for tests and callers that resolve the session elsewhere.
func Set(c echo.Context, id string) {
	c.Set(contextKey, id)
}
