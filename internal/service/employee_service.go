package service

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/locvowork/employee_directory/internal/domain"
	"github.com/locvowork/employee_directory/internal/logger"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// EmployeeService handles business logic for employees
type EmployeeService struct {
	repo         domain.EmployeeRepository
	maxPageLimit int
	newID        func() string
}

// NewEmployeeService creates a new EmployeeService instance
func NewEmployeeService(repo domain.EmployeeRepository, maxPageLimit int) *EmployeeService {
	return &EmployeeService{
		repo:         repo,
		maxPageLimit: maxPageLimit,
		newID:        uuid.NewString,
	}
}

// ==================== Queries ====================

// ListEmployees returns every employee matching filter
func (s *EmployeeService) ListEmployees(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	if err := filter.Sort.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

// GetEmployee retrieves one employee
func (s *EmployeeService) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

// ListEmployeesPaginated returns one page of employees plus the pagination summary
func (s *EmployeeService) ListEmployeesPaginated(ctx context.Context, q domain.PageQuery) ([]domain.Employee, domain.Pagination, error) {
	page, limit := q.Page, q.Limit
	if page == 0 {
		page = defaultPage
	}
	if limit == 0 {
		limit = defaultLimit
	}
	if page < 0 {
		return nil, domain.Pagination{}, domain.InvalidDocument("Invalid variables: page must be positive, got %d", page)
	}
	if limit < 0 {
		return nil, domain.Pagination{}, domain.InvalidDocument("Invalid variables: limit must be positive, got %d", limit)
	}
	if s.maxPageLimit > 0 && limit > s.maxPageLimit {
		return nil, domain.Pagination{}, domain.InvalidDocument("Invalid variables: limit must not exceed %d", s.maxPageLimit)
	}
	// (page-1)*limit must fit in an int
	if page-1 > math.MaxInt/limit {
		return nil, domain.Pagination{}, domain.InvalidDocument("Invalid variables: page %d is out of range", page)
	}
	if err := q.Sort.Validate(); err != nil {
		return nil, domain.Pagination{}, err
	}

	employees, total, err := s.repo.ListPage(ctx, domain.PageFilter{
		Class:  q.Class,
		Search: q.Search,
		Sort:   q.Sort,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	return employees, domain.Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func totalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// ==================== Mutations ====================

// CreateEmployee inserts a new employee; name and email are required
func (s *EmployeeService) CreateEmployee(ctx context.Context, input domain.EmployeeInput) (*domain.Employee, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if !input.Name.Set {
		return nil, domain.InvalidDocument("Invalid variables: input.name is required")
	}
	if !input.Email.Set {
		return nil, domain.InvalidDocument("Invalid variables: input.email is required")
	}

	e, err := s.repo.Create(ctx, s.newID(), input)
	if err != nil {
		return nil, err
	}
	logger.InfoLog(ctx, "employee %s created", e.ID)
	return e, nil
}

// UpdateEmployee replaces the fields present in input
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id string, input domain.EmployeeInput) (*domain.Employee, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.IsEmpty() {
		return nil, domain.InvalidDocument("Invalid variables: input has no fields to update")
	}
	return s.repo.Update(ctx, id, input)
}

// DeleteEmployee removes an employee. Deleting a missing employee succeeds.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		logger.DebugLog(ctx, "delete of missing employee %s", id)
	}
	return deleted, nil
}

// ToggleFlagEmployee flips the flagged marker
func (s *EmployeeService) ToggleFlagEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	return s.repo.ToggleFlag(ctx, id)
}
