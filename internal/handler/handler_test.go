package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_directory/internal/auth"
	"github.com/locvowork/employee_directory/internal/domain"
	"github.com/locvowork/employee_directory/internal/gql"
)

type stubResolver struct {
	caller auth.Caller
	err    error
}

func (s stubResolver) Resolve(context.Context, string) (auth.Caller, error) {
	return s.caller, s.err
}

type recordingDispatcher struct {
	calls int
	got   gql.Request
	resp  gql.Response
}

func (d *recordingDispatcher) Dispatch(_ context.Context, _ auth.Caller, req gql.Request) gql.Response {
	d.calls++
	d.got = req
	return d.resp
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func newEcho(statuses StatusMapper) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(statuses)
	e.Pre(RequestLogger(), CORS())
	return e
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestStatusMapper(t *testing.T) {
	tests := []struct {
		code   domain.Code
		status int
		legacy int
	}{
		{"", http.StatusOK, http.StatusOK},
		{domain.CodeUnauthenticated, http.StatusUnauthorized, http.StatusUnauthorized},
		{domain.CodeUnauthorized, http.StatusUnauthorized, http.StatusUnauthorized},
		{domain.CodeForbidden, http.StatusForbidden, http.StatusInternalServerError},
		{domain.CodeNotFound, http.StatusNotFound, http.StatusInternalServerError},
		{domain.CodeInvalidDocument, http.StatusBadRequest, http.StatusInternalServerError},
		{domain.CodeUnknownOperation, http.StatusBadRequest, http.StatusInternalServerError},
		{domain.CodeStoreError, http.StatusInternalServerError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, StatusMapper{}.Status(tt.code))
			assert.Equal(t, tt.legacy, StatusMapper{Legacy: true}.Status(tt.code))
		})
	}
}

func TestServeGraphQL(t *testing.T) {
	d := &recordingDispatcher{resp: gql.Success(map[string]bool{"ok": true})}
	h := NewGraphQLHandler(stubResolver{caller: auth.Caller{UserID: "u1", Role: domain.RoleEmployee}}, d, StatusMapper{})
	e := newEcho(StatusMapper{})
	e.POST("/graphql", h.ServeGraphQL)

	body := `{"query":"query GetEmployees { employees { id } }","variables":{"class":"Sales"}}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, d.calls)
	assert.Equal(t, "query GetEmployees { employees { id } }", d.got.Query)
	assert.JSONEq(t, `{"class":"Sales"}`, string(d.got.Variables))
	assert.JSONEq(t, `{"data":{"ok":true}}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestServeGraphQLAuthFailsBeforeBody(t *testing.T) {
	d := &recordingDispatcher{}
	h := NewGraphQLHandler(stubResolver{err: domain.Unauthenticated("Authorization header required")}, d, StatusMapper{Legacy: true})
	e := newEcho(StatusMapper{Legacy: true})
	e.POST("/graphql", h.ServeGraphQL)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, d.calls)
	assert.JSONEq(t, `{"errors":[{"message":"Authorization header required"}]}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderAccessControlAllowHeaders))
}

func TestServeGraphQLBadBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"empty", "", "Invalid request body: empty"},
		{"malformed", `{"query":`, "Invalid request body"},
		{"wrong type", `{"query":42}`, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &recordingDispatcher{}
			h := NewGraphQLHandler(stubResolver{caller: auth.Caller{UserID: "u1", Role: domain.RoleAdmin}}, d, StatusMapper{})
			e := newEcho(StatusMapper{})
			e.POST("/graphql", h.ServeGraphQL)

			req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 0, d.calls)
			out := decodeBody(t, rec)
			errs := out["errors"].([]interface{})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].(map[string]interface{})["message"], tt.msg)
		})
	}
}

func TestServeGraphQLStoreError(t *testing.T) {
	d := &recordingDispatcher{resp: gql.Failure(domain.StoreError(errors.New("connection refused")))}
	h := NewGraphQLHandler(stubResolver{caller: auth.Caller{UserID: "u1", Role: domain.RoleEmployee}}, d, StatusMapper{})
	e := newEcho(StatusMapper{})
	e.POST("/graphql", h.ServeGraphQL)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ employees { id } }"}`))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"errors":[{"message":"connection refused"}]}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	e := newEcho(StatusMapper{})

	for _, path := range []string{"/graphql", "/anything/else"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		assert.Equal(t, corsAllowMethods, rec.Header().Get(echo.HeaderAccessControlAllowMethods))
		assert.Equal(t, corsAllowHeaders, rec.Header().Get(echo.HeaderAccessControlAllowHeaders))
		assert.Empty(t, rec.Body.String())
	}
}

func TestErrorHandlerUsesEnvelope(t *testing.T) {
	e := newEcho(StatusMapper{})
	e.POST("/graphql", func(c echo.Context) error { return nil })
	e.GET("/boom", func(c echo.Context) error { return domain.NotFound("Employee not found") })

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"errors":[{"message":"Not Found"}]}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"errors":[{"message":"Employee not found"}]}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"ok", nil, http.StatusOK, `{"status":"ok"}`},
		{"down", errors.New("dial tcp: refused"), http.StatusServiceUnavailable, `{"status":"unavailable"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			require.NoError(t, NewHealthHandler(stubPinger{err: tt.err}).Health(c))
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

type stubLister struct {
	got       domain.EmployeeFilter
	employees []domain.Employee
	err       error
}

func (s *stubLister) ListEmployees(_ context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	s.got = filter
	return s.employees, s.err
}

func TestExportEmployees(t *testing.T) {
	lister := &stubLister{employees: []domain.Employee{{ID: "a", Name: "Jordan Lee"}}}
	h := NewExportHandler(stubResolver{caller: auth.Caller{UserID: "u1", Role: domain.RoleAdmin}}, lister, StatusMapper{})
	e := newEcho(StatusMapper{})
	e.GET("/export/employees.xlsx", h.ExportEmployees)

	req := httptest.NewRequest(http.MethodGet, "/export/employees.xlsx?class=Sales&isActive=true&sortBy=name&ascending=false", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "employees.xlsx")
	assert.NotZero(t, rec.Body.Len())

	require.NotNil(t, lister.got.Class)
	assert.Equal(t, "Sales", *lister.got.Class)
	require.NotNil(t, lister.got.IsActive)
	assert.True(t, *lister.got.IsActive)
	assert.Nil(t, lister.got.Flagged)
	assert.Equal(t, &domain.SortOrder{Column: "name", Ascending: false}, lister.got.Sort)
}

func TestExportEmployeesRejects(t *testing.T) {
	tests := []struct {
		name     string
		resolver stubResolver
		query    string
		status   int
		msg      string
	}{
		{"no token", stubResolver{err: domain.Unauthenticated("Authorization header required")}, "", http.StatusUnauthorized, "Authorization header required"},
		{"employee", stubResolver{caller: auth.Caller{UserID: "u1", Role: domain.RoleEmployee}}, "", http.StatusForbidden, "Unauthorized: Admin access required"},
		{"bad flag", stubResolver{caller: auth.Caller{UserID: "u1", Role: domain.RoleAdmin}}, "?flagged=maybe", http.StatusBadRequest, "Invalid variables: flagged must be a boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &stubLister{}
			h := NewExportHandler(tt.resolver, lister, StatusMapper{})
			e := newEcho(StatusMapper{})
			e.GET("/export/employees.xlsx", h.ExportEmployees)

			req := httptest.NewRequest(http.MethodGet, "/export/employees.xlsx"+tt.query, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, `{"errors":[{"message":"`+tt.msg+`"}]}`, rec.Body.String())
		})
	}
}
