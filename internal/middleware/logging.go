package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// Logging writes one line per request with the id, route, status and latency.
// Handler errors are resolved through c.Error first so the logged status
// reflects what the client actually received.
func Logging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			log.Printf("request_id=%s method=%s path=%s status=%d latency=%s",
				RequestIDFromContext(c), req.Method, req.URL.Path, c.Response().Status, time.Since(start))

			return err
		}
	}
}
