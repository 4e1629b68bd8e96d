package domain

import "context"

// EmployeeRepository defines the interface for employee data access.
// Lookups that match no row return an error whose code is CodeNotFound.
type EmployeeRepository interface {
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	GetByID(ctx context.Context, id string) (*Employee, error)
	// ListPage returns the requested slice and the total count of the filtered set.
	ListPage(ctx context.Context, filter PageFilter) ([]Employee, int, error)
	Create(ctx context.Context, id string, input EmployeeInput) (*Employee, error)
	Update(ctx context.Context, id string, input EmployeeInput) (*Employee, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
	ToggleFlag(ctx context.Context, id string) (*Employee, error)
}

// RoleRepository resolves the role attached to a user identity.
type RoleRepository interface {
	GetRole(ctx context.Context, userID string) (role string, found bool, err error)
}
