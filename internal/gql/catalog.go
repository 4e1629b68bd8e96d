package gql

import (
	"context"

	"github.com/locvowork/employee_directory/internal/domain"
)

// EmployeeService is the business layer behind the catalog.
type EmployeeService interface {
	ListEmployees(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error)
	GetEmployee(ctx context.Context, id string) (*domain.Employee, error)
	ListEmployeesPaginated(ctx context.Context, q domain.PageQuery) ([]domain.Employee, domain.Pagination, error)
	CreateEmployee(ctx context.Context, input domain.EmployeeInput) (*domain.Employee, error)
	UpdateEmployee(ctx context.Context, id string, input domain.EmployeeInput) (*domain.Employee, error)
	DeleteEmployee(ctx context.Context, id string) (bool, error)
	ToggleFlagEmployee(ctx context.Context, id string) (*domain.Employee, error)
}

// Catalog returns the employee directory operations.
func Catalog(svc EmployeeService) []Operation {
	return []Operation{
		{Name: "GetEmployees", Kind: KindQuery, Handler: Bind(func(ctx context.Context, v listVars) (interface{}, error) {
			employees, err := svc.ListEmployees(ctx, domain.EmployeeFilter{
				Class:    nonEmpty(v.Class),
				IsActive: v.IsActive,
				Flagged:  v.Flagged,
				Sort:     sortOrder(v.SortBy, v.Ascending),
			})
			if err != nil {
				return nil, err
			}
			return employeesPayload{Employees: employees}, nil
		})},
		{Name: "GetEmployee", Kind: KindQuery, Handler: Bind(func(ctx context.Context, v idVars) (interface{}, error) {
			id, err := parseID(v.ID)
			if err != nil {
				return nil, err
			}
			e, err := svc.GetEmployee(ctx, id)
			if err != nil {
				return nil, err
			}
			return employeePayload{Employee: e}, nil
		})},
		{Name: "GetEmployeesPaginated", Kind: KindQuery, Handler: Bind(func(ctx context.Context, v pageVars) (interface{}, error) {
			q := domain.PageQuery{
				Class: nonEmpty(v.Class),
				Sort:  sortOrder(v.SortBy, v.Ascending),
			}
			if v.Page != nil {
				q.Page = *v.Page
			}
			if v.Limit != nil {
				q.Limit = *v.Limit
			}
			if v.Search != nil {
				q.Search = *v.Search
			}
			employees, page, err := svc.ListEmployeesPaginated(ctx, q)
			if err != nil {
				return nil, err
			}
			return paginatedPayload{Employees: employees, Pagination: page}, nil
		})},
		{Name: "CreateEmployee", Kind: KindMutation, Handler: Bind(func(ctx context.Context, v createVars) (interface{}, error) {
			input, err := requireInput(v.Input)
			if err != nil {
				return nil, err
			}
			e, err := svc.CreateEmployee(ctx, input)
			if err != nil {
				return nil, err
			}
			return employeePayload{Employee: e}, nil
		})},
		{Name: "UpdateEmployee", Kind: KindMutation, Handler: Bind(func(ctx context.Context, v updateVars) (interface{}, error) {
			id, err := parseID(v.ID)
			if err != nil {
				return nil, err
			}
			input, err := requireInput(v.Input)
			if err != nil {
				return nil, err
			}
			e, err := svc.UpdateEmployee(ctx, id, input)
			if err != nil {
				return nil, err
			}
			return employeePayload{Employee: e}, nil
		})},
		{Name: "DeleteEmployee", Kind: KindMutation, Handler: Bind(func(ctx context.Context, v idVars) (interface{}, error) {
			id, err := parseID(v.ID)
			if err != nil {
				return nil, err
			}
			if _, err := svc.DeleteEmployee(ctx, id); err != nil {
				return nil, err
			}
			return successPayload{Success: true}, nil
		})},
		{Name: "ToggleFlagEmployee", Kind: KindMutation, Handler: Bind(func(ctx context.Context, v idVars) (interface{}, error) {
			id, err := parseID(v.ID)
			if err != nil {
				return nil, err
			}
			e, err := svc.ToggleFlagEmployee(ctx, id)
			if err != nil {
				return nil, err
			}
			return employeePayload{Employee: e}, nil
		})},
	}
}
