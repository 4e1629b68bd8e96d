package gql

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_directory/internal/auth"
	"github.com/locvowork/employee_directory/internal/domain"
	"github.com/locvowork/employee_directory/internal/repository/memory"
	"github.com/locvowork/employee_directory/internal/service"
)

const knownID = "7a0c9f4e-3b1d-4c55-9a6e-2f8b1c0d9e11"

var (
	admin    = auth.Caller{UserID: "u-admin", Role: domain.RoleAdmin}
	employee = auth.Caller{UserID: "u-emp", Role: domain.RoleEmployee}
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *memory.EmployeeRepository) {
	t.Helper()
	repo := memory.NewEmployeeRepository()
	repo.Put(domain.Employee{ID: knownID, Name: "Jordan Lee", Email: "jordan@example.com", Class: "Engineering", IsActive: true})
	d, err := NewDispatcher(Catalog(service.NewEmployeeService(repo, 100))...)
	require.NoError(t, err)
	return d, repo
}

func encode(t *testing.T, resp Response) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestNewDispatcherValidatesCatalog(t *testing.T) {
	h := func(context.Context, json.RawMessage) (interface{}, error) { return nil, nil }

	_, err := NewDispatcher(Operation{Name: "", Kind: KindQuery, Handler: h})
	assert.Error(t, err)
	_, err = NewDispatcher(Operation{Name: "A", Kind: "subscription", Handler: h})
	assert.Error(t, err)
	_, err = NewDispatcher(Operation{Name: "A", Kind: KindQuery})
	assert.Error(t, err)
	_, err = NewDispatcher(
		Operation{Name: "A", Kind: KindQuery, Handler: h},
		Operation{Name: "A", Kind: KindMutation, Handler: h},
	)
	assert.Error(t, err)

	d, err := NewDispatcher(Catalog(nil)...)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"GetEmployees", "GetEmployee", "GetEmployeesPaginated"}, d.Operations(KindQuery))
	assert.ElementsMatch(t, []string{"CreateEmployee", "UpdateEmployee", "DeleteEmployee", "ToggleFlagEmployee"}, d.Operations(KindMutation))
}

func TestDispatchQueries(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	resp := d.Dispatch(ctx, employee, Request{
		Query:     `query GetEmployees($class: String) { employees }`,
		Variables: json.RawMessage(`{"class":"Engineering","sortBy":"name"}`),
	})
	require.NoError(t, resp.Err)
	assert.Equal(t, "GetEmployees", resp.Operation)
	body := encode(t, resp)
	assert.NotContains(t, body, "errors")
	employees := body["data"].(map[string]interface{})["employees"].([]interface{})
	require.Len(t, employees, 1)
	assert.Equal(t, "Jordan Lee", employees[0].(map[string]interface{})["name"])

	resp = d.Dispatch(ctx, employee, Request{
		Query:     `query GetEmployee($id: String!) { employee }`,
		Variables: json.RawMessage(`{"id":"` + knownID + `"}`),
	})
	require.NoError(t, resp.Err)
	emp := encode(t, resp)["data"].(map[string]interface{})["employee"].(map[string]interface{})
	assert.Equal(t, knownID, emp["id"])
	assert.Equal(t, []interface{}{}, emp["subjects"])

	resp = d.Dispatch(ctx, employee, Request{
		Query:     `query GetEmployeesPaginated { employees pagination }`,
		Variables: json.RawMessage(`{"search":"JORDAN","limit":5}`),
	})
	require.NoError(t, resp.Err)
	data := encode(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"total": 1.0, "page": 1.0, "limit": 5.0, "totalPages": 1.0}, data["pagination"])
}

func TestDispatchGetEmployeeNotFound(t *testing.T) {
	d, _ := newTestDispatcher(t)
	resp := d.Dispatch(context.Background(), employee, Request{
		Query:     `query GetEmployee($id: String!) { employee }`,
		Variables: json.RawMessage(`{"id":"11111111-2222-4333-8444-555555555555"}`),
	})
	assert.Equal(t, domain.CodeNotFound, resp.Code())
	body := encode(t, resp)
	assert.NotContains(t, body, "data")
	assert.Equal(t, []interface{}{map[string]interface{}{"message": "Employee not found"}}, body["errors"])
}

func TestDispatchMutationRequiresAdmin(t *testing.T) {
	d, repo := newTestDispatcher(t)
	ctx := context.Background()

	for _, q := range []string{
		`mutation CreateEmployee($input: EmployeeInput!) { employee }`,
		`mutation UpdateEmployee($id: String!, $input: EmployeeInput!) { employee }`,
		`mutation DeleteEmployee($id: String!) { success }`,
		`mutation ToggleFlagEmployee($id: String!) { employee }`,
		`mutation DropEverything { success }`,
	} {
		resp := d.Dispatch(ctx, employee, Request{
			Query:     q,
			Variables: json.RawMessage(`{"id":"` + knownID + `","input":{"name":"X"}}`),
		})
		assert.Equal(t, domain.CodeForbidden, resp.Code(), q)
		assert.Equal(t, "Unauthorized: Admin access required", resp.Errors[0].Message)
	}

	assert.Zero(t, repo.MutationCount())
	got, err := repo.GetByID(ctx, knownID)
	require.NoError(t, err)
	assert.Equal(t, "Jordan Lee", got.Name)
	assert.False(t, got.Flagged)
}

func TestDispatchMutations(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	resp := d.Dispatch(ctx, admin, Request{
		Query:     `mutation CreateEmployee($input: EmployeeInput!) { employee }`,
		Variables: json.RawMessage(`{"input":{"name":"Ada","email":"ada@example.com","subjects":["go"],"hire_date":"2022-02-01"}}`),
	})
	require.NoError(t, resp.Err)
	created := encode(t, resp)["data"].(map[string]interface{})["employee"].(map[string]interface{})
	id := created["id"].(string)
	assert.Equal(t, "2022-02-01", created["hire_date"])
	assert.Equal(t, true, created["is_active"])

	resp = d.Dispatch(ctx, admin, Request{
		Query:     `mutation UpdateEmployee { employee }`,
		Variables: json.RawMessage(`{"id":"` + id + `","input":{"position":"Lead","phone":null}}`),
	})
	require.NoError(t, resp.Err)
	updated := encode(t, resp)["data"].(map[string]interface{})["employee"].(map[string]interface{})
	assert.Equal(t, "Lead", updated["position"])
	assert.Equal(t, "Ada", updated["name"])

	resp = d.Dispatch(ctx, admin, Request{
		Query:     `mutation ToggleFlagEmployee { employee }`,
		Variables: json.RawMessage(`{"id":"` + id + `"}`),
	})
	require.NoError(t, resp.Err)
	assert.Equal(t, true, encode(t, resp)["data"].(map[string]interface{})["employee"].(map[string]interface{})["flagged"])

	for i := 0; i < 2; i++ {
		resp = d.Dispatch(ctx, admin, Request{
			Query:     `mutation DeleteEmployee { success }`,
			Variables: json.RawMessage(`{"id":"` + id + `"}`),
		})
		require.NoError(t, resp.Err)
		assert.Equal(t, map[string]interface{}{"success": true}, encode(t, resp)["data"])
	}
}

func TestDispatchErrors(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  auth.Caller
		req     Request
		code    domain.Code
		message string
	}{
		{"empty query", employee, Request{}, domain.CodeInvalidDocument, "Invalid GraphQL query"},
		{"garbage", employee, Request{Query: "hello"}, domain.CodeInvalidDocument, ""},
		{"unknown query", employee, Request{Query: "query GetSalaries { x }"}, domain.CodeUnknownOperation, "Unknown query: GetSalaries"},
		{"unknown mutation", admin, Request{Query: "mutation Drop { x }"}, domain.CodeUnknownOperation, "Unknown mutation: Drop"},
		{"mutation name as query", employee, Request{Query: "query DeleteEmployee { success }"}, domain.CodeUnknownOperation, "Unknown query: DeleteEmployee"},
		{"bad id", employee, Request{Query: "query GetEmployee { employee }", Variables: json.RawMessage(`{"id":"42"}`)}, domain.CodeInvalidDocument, ""},
		{"missing id", employee, Request{Query: "query GetEmployee { employee }"}, domain.CodeInvalidDocument, "Invalid variables: id is required"},
		{"wrong type", employee, Request{Query: "query GetEmployeesPaginated { employees }", Variables: json.RawMessage(`{"page":"two"}`)}, domain.CodeInvalidDocument, ""},
		{"fractional int", employee, Request{Query: "query GetEmployeesPaginated { employees }", Variables: json.RawMessage(`{"limit":2.5}`)}, domain.CodeInvalidDocument, ""},
		{"variables not object", employee, Request{Query: "query GetEmployees { employees }", Variables: json.RawMessage(`[1]`)}, domain.CodeInvalidDocument, ""},
		{"zero limit uses default", employee, Request{Query: "query GetEmployeesPaginated { employees }", Variables: json.RawMessage(`{"limit":0}`)}, "", ""},
		{"negative limit", employee, Request{Query: "query GetEmployeesPaginated { employees }", Variables: json.RawMessage(`{"limit":-1}`)}, domain.CodeInvalidDocument, ""},
		{"unknown sort", employee, Request{Query: "query GetEmployees { employees }", Variables: json.RawMessage(`{"sortBy":"secret"}`)}, domain.CodeInvalidDocument, "unsupported sort key: secret"},
		{"unknown input field", admin, Request{Query: "mutation CreateEmployee { employee }", Variables: json.RawMessage(`{"input":{"name":"A","email":"a@b.c","id":"x"}}`)}, domain.CodeInvalidDocument, ""},
		{"missing input", admin, Request{Query: "mutation CreateEmployee { employee }"}, domain.CodeInvalidDocument, "Invalid variables: input is required"},
		{"update missing row", admin, Request{Query: "mutation UpdateEmployee { employee }", Variables: json.RawMessage(`{"id":"11111111-2222-4333-8444-555555555555","input":{"name":"A"}}`)}, domain.CodeNotFound, "Employee not found"},
		{"null variables", employee, Request{Query: "query GetEmployees { employees }", Variables: json.RawMessage(`null`)}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := d.Dispatch(ctx, tt.caller, tt.req)
			assert.Equal(t, tt.code, resp.Code())
			if tt.code == "" {
				assert.NotNil(t, resp.Data)
				assert.Empty(t, resp.Errors)
				return
			}
			assert.Nil(t, resp.Data)
			require.Len(t, resp.Errors, 1)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Errors[0].Message)
			}
		})
	}
}

func TestDispatchRecoversPanics(t *testing.T) {
	d, err := NewDispatcher(Operation{
		Name: "Boom",
		Kind: KindQuery,
		Handler: func(context.Context, json.RawMessage) (interface{}, error) {
			panic("nil map")
		},
	})
	require.NoError(t, err)

	resp := d.Dispatch(context.Background(), employee, Request{Query: "query Boom { x }"})
	assert.Equal(t, domain.CodeStoreError, resp.Code())
	assert.Equal(t, "internal error", resp.Errors[0].Message)
	assert.Equal(t, "Boom", resp.Operation)
}
