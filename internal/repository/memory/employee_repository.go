// Package memory keeps employees and roles in process memory. It mirrors the
// PostgreSQL repositories closely enough to drive service and HTTP tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/locvowork/employee_directory/internal/domain"
)

type EmployeeRepository struct {
	mu   sync.RWMutex
	rows map[string]domain.Employee
	seq  int
	now  func() time.Time

	mutations int
}

func NewEmployeeRepository() *EmployeeRepository {
	return &EmployeeRepository{rows: map[string]domain.Employee{}, now: time.Now}
}

// MutationCount reports how many writes changed the store.
func (r *EmployeeRepository) MutationCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mutations
}

// Put stores e as is, assigning timestamps when they are zero.
func (r *EmployeeRepository) Put(e domain.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now().Add(time.Duration(r.seq) * time.Millisecond)
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
	if e.Subjects == nil {
		e.Subjects = []string{}
	}
	r.rows[e.ID] = e
}

func (r *EmployeeRepository) List(_ context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	if err := filter.Sort.Validate(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Employee{}
	for _, e := range r.rows {
		if filter.Class != nil && e.Class != *filter.Class {
			continue
		}
		if filter.IsActive != nil && e.IsActive != *filter.IsActive {
			continue
		}
		if filter.Flagged != nil && e.Flagged != *filter.Flagged {
			continue
		}
		out = append(out, clone(e))
	}
	sortEmployees(out, filter.Sort)
	return out, nil
}

func (r *EmployeeRepository) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rows[id]
	if !ok {
		return nil, domain.NotFound("Employee not found")
	}
	c := clone(e)
	return &c, nil
}

func (r *EmployeeRepository) ListPage(_ context.Context, filter domain.PageFilter) ([]domain.Employee, int, error) {
	if err := filter.Sort.Validate(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(filter.Search)
	matched := []domain.Employee{}
	for _, e := range r.rows {
		if filter.Class != nil && e.Class != *filter.Class {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(e.Name), needle) &&
			!strings.Contains(strings.ToLower(e.Email), needle) {
			continue
		}
		matched = append(matched, clone(e))
	}
	sortEmployees(matched, filter.Sort)

	total := len(matched)
	if filter.Offset < 0 {
		return nil, 0, domain.InvalidDocument("Invalid variables: negative offset %d", filter.Offset)
	}
	if filter.Offset >= total {
		return []domain.Employee{}, total, nil
	}
	end := total
	if filter.Limit > 0 && filter.Offset+filter.Limit < total {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}

func (r *EmployeeRepository) Create(_ context.Context, id string, input domain.EmployeeInput) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rows[id]; exists {
		return nil, domain.StoreError(errDuplicateKey)
	}

	r.seq++
	now := r.now().Add(time.Duration(r.seq) * time.Millisecond)
	e := domain.Employee{ID: id, Subjects: []string{}, IsActive: true, CreatedAt: now, UpdatedAt: now}
	input.ApplyTo(&e)
	r.rows[id] = e
	r.mutations++
	c := clone(e)
	return &c, nil
}

func (r *EmployeeRepository) Update(_ context.Context, id string, input domain.EmployeeInput) (*domain.Employee, error) {
	return r.modify(id, func(e *domain.Employee) { input.ApplyTo(e) })
}

func (r *EmployeeRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	r.mutations++
	return true, nil
}

func (r *EmployeeRepository) ToggleFlag(_ context.Context, id string) (*domain.Employee, error) {
	return r.modify(id, func(e *domain.Employee) { e.Flagged = !e.Flagged })
}

func (r *EmployeeRepository) modify(id string, fn func(e *domain.Employee)) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok {
		return nil, domain.NotFound("Employee not found")
	}
	fn(&e)
	e.UpdatedAt = r.now()
	r.rows[id] = e
	r.mutations++
	c := clone(e)
	return &c, nil
}

func clone(e domain.Employee) domain.Employee {
	e.Subjects = append([]string{}, e.Subjects...)
	return e
}

func sortEmployees(rows []domain.Employee, order *domain.SortOrder) {
	if order == nil {
		slices.SortFunc(rows, func(a, b domain.Employee) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
		return
	}
	slices.SortFunc(rows, func(a, b domain.Employee) int {
		c := compareColumn(order.Column, a, b)
		if !order.Ascending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func compareColumn(column string, a, b domain.Employee) int {
	switch column {
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "name":
		return cmp.Compare(a.Name, b.Name)
	case "email":
		return cmp.Compare(a.Email, b.Email)
	case "age":
		return cmp.Compare(a.Age, b.Age)
	case "class":
		return cmp.Compare(a.Class, b.Class)
	case "attendance":
		return cmp.Compare(a.Attendance, b.Attendance)
	case "position":
		return cmp.Compare(a.Position, b.Position)
	case "salary":
		return cmp.Compare(a.Salary, b.Salary)
	case "hire_date":
		return a.HireDate.Compare(b.HireDate.Time)
	case "is_active":
		return compareBool(a.IsActive, b.IsActive)
	case "flagged":
		return compareBool(a.Flagged, b.Flagged)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
