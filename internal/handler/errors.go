package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_directory/internal/gql"
	"github.com/locvowork/employee_directory/internal/logger"
)

// ErrorHandler renders errors that escape a handler (unknown routes, wrong
// methods, recovered panics) in the same envelope as operation failures.
func ErrorHandler(statuses StatusMapper) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			body   gql.Response
		)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok && s != "" {
				msg = s
			}
			body = gql.Response{Errors: []gql.ErrorMessage{{Message: msg}}}
		} else {
			body = gql.Failure(err)
			status = statuses.Status(body.Code())
			c.Set(ctxKeyErrorCode, body.Code())
			logger.ErrorLog(c.Request().Context(), "unhandled error", err)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.WarnLog(c.Request().Context(), "write error response: %v", writeErr)
		}
	}
}
