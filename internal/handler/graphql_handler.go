package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_directory/internal/auth"
	"github.com/locvowork/employee_directory/internal/domain"
	"github.com/locvowork/employee_directory/internal/gql"
	"github.com/locvowork/employee_directory/internal/logger"
)

// echo context keys read by RequestLogger
const (
	ctxKeyCaller    = "caller"
	ctxKeyOperation = "operation"
	ctxKeyErrorCode = "error_code"
)

type CallerResolver interface {
	Resolve(ctx context.Context, authorization string) (auth.Caller, error)
}

type OperationDispatcher interface {
	Dispatch(ctx context.Context, caller auth.Caller, req gql.Request) gql.Response
}

// GraphQLHandler serves the single RPC endpoint.
type GraphQLHandler struct {
	resolver   CallerResolver
	dispatcher OperationDispatcher
	statuses   StatusMapper
}

func NewGraphQLHandler(resolver CallerResolver, dispatcher OperationDispatcher, statuses StatusMapper) *GraphQLHandler {
	return &GraphQLHandler{resolver: resolver, dispatcher: dispatcher, statuses: statuses}
}

// ServeGraphQL resolves the caller, decodes the body and dispatches, in that order.
func (h *GraphQLHandler) ServeGraphQL(c echo.Context) error {
	r := c.Request()
	ctx := r.Context()

	caller, err := h.resolver.Resolve(ctx, r.Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return h.respond(c, gql.Failure(err))
	}
	c.Set(ctxKeyCaller, caller)
	ctx = auth.WithCaller(ctx, caller)
	ctx = logger.WithLogger(ctx, map[string]interface{}{
		"user_id": caller.UserID,
		"role":    caller.Role,
	})
	c.SetRequest(r.WithContext(ctx))

	req, err := decodeRequest(r.Body)
	if err != nil {
		return h.respond(c, gql.Failure(err))
	}

	return h.respond(c, h.dispatcher.Dispatch(ctx, caller, req))
}

func decodeRequest(body io.Reader) (gql.Request, error) {
	var req gql.Request
	if body == nil {
		return req, domain.InvalidDocument("Invalid request body: empty")
	}
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, domain.InvalidDocument("Invalid request body: empty")
		}
		return req, domain.InvalidDocument("Invalid request body: %v", err)
	}
	return req, nil
}

func (h *GraphQLHandler) respond(c echo.Context, resp gql.Response) error {
	if resp.Operation != "" {
		c.Set(ctxKeyOperation, resp.Operation)
	}
	if code := resp.Code(); code != "" {
		c.Set(ctxKeyErrorCode, code)
		if code == domain.CodeStoreError {
			logger.ErrorLog(c.Request().Context(), "operation %s failed", resp.Err, resp.Operation)
		}
	}
	return c.JSON(h.statuses.Status(resp.Code()), resp)
}
