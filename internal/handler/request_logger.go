package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_directory/internal/auth"
	"github.com/locvowork/employee_directory/internal/domain"
	"github.com/locvowork/employee_directory/internal/logger"
)

// RequestLogger attaches the request id to the context logger and writes one
// line per request once the response is known.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = req.Header.Get(echo.HeaderXRequestID)
			}
			c.SetRequest(req.WithContext(logger.WithLogger(req.Context(), map[string]interface{}{
				"request_id": id,
			})))

			if err := next(c); err != nil {
				c.Error(err)
			}

			res := c.Response()
			l := logger.FromContext(c.Request().Context())
			ev := l.Info()
			if res.Status >= 500 {
				ev = l.Error()
			} else if res.Status >= 400 {
				ev = l.Warn()
			}
			ev = ev.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start))
			if op, ok := c.Get(ctxKeyOperation).(string); ok {
				ev = ev.Str("operation", op)
			}
			if caller, ok := c.Get(ctxKeyCaller).(auth.Caller); ok {
				ev = ev.Str("user_id", caller.UserID).Str("role", caller.Role)
			}
			if code, ok := c.Get(ctxKeyErrorCode).(domain.Code); ok {
				ev = ev.Str("error_code", string(code))
			}
			ev.Msg("request completed")
			return nil
		}
	}
}
