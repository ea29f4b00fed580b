package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "KryptoPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover returns recovery middleware. Panics become a plain
// {ok:false, error} body so no upstream quirk can leak a raw failure.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					if l != nil {
						l.Error("panic recovered",
							applogger.Error(err),
							applogger.String("stack", string(debug.Stack())),
						)
					}
					_ = c.JSON(http.StatusInternalServerError, map[string]interface{}{
						"ok":    false,
						"error": "internal error",
					})
				}
			}()
			return next(c)
		}
	}
}
