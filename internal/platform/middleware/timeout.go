package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout sets a deadline on each request context. When the
// deadline passes before the handler returns, a 504 JSON body is written.
// Paths listed in skip (exact match) are exempt.
func RequestTimeout(timeout time.Duration, skip ...string) echo.MiddlewareFunc {
	exempt := make(map[string]bool, len(skip))
	for _, p := range skip {
		exempt[p] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if exempt[c.Request().URL.Path] {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return gatewayTimeout(c)
				}
				return ctx.Err()
			}
		}
	}
}

func gatewayTimeout(c echo.Context) error {
	if c.Response().Committed {
		return nil
	}
	return c.JSON(http.StatusGatewayTimeout, map[string]string{
		"message": "request processing exceeded the allowed time limit",
	})
}
