package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ErrorReporter receives recovered panics; telemetry.Reporter satisfies it.
type ErrorReporter interface {
	CaptureError(err error, tags map[string]string)
}

// Recovery turns a panic into a 500 and logs the stack. reporter may be nil.
func Recovery(logger zerolog.Logger, reporter ErrorReporter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var stack [4096]byte
					n := runtime.Stack(stack[:], false)
					rid, _ := c.Get("request_id").(string)

					logger.Error().
						Str("request_id", rid).
						Str("panic", fmt.Sprintf("%v", r)).
						Str("stack", string(stack[:n])).
						Msg("panic recovered")

					if reporter != nil {
						reporter.CaptureError(fmt.Errorf("panic: %v", r), map[string]string{
							"request_id": rid,
							"path":       c.Request().URL.Path,
						})
					}

					err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
				}
			}()
			return next(c)
		}
	}
}
