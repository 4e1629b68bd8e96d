package domain

import (
	"time"
)

// Role values stored in user_roles.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// Employee represents one row of the employees relation.
type Employee struct {
	ID         string    `json:"id" db:"id"`
	UserID     *string   `json:"user_id" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	Age        int       `json:"age" db:"age"`
	Class      string    `json:"class" db:"class"`
	Subjects   []string  `json:"subjects" db:"subjects"`
	Attendance int       `json:"attendance" db:"attendance"`
	Position   string    `json:"position" db:"position"`
	Salary     float64   `json:"salary" db:"salary"`
	Phone      *string   `json:"phone" db:"phone"`
	Address    *string   `json:"address" db:"address"`
	HireDate   Date      `json:"hire_date" db:"hire_date"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	Flagged    bool      `json:"flagged" db:"flagged"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// UserRole maps an identity to its role string.
type UserRole struct {
	UserID string `json:"user_id" db:"user_id"`
	Role   string `json:"role" db:"role"`
}

// SortOrder is a column plus direction.
type SortOrder struct {
	Column    string
	Ascending bool
}

// Validate rejects columns outside SortableColumns.
func (s *SortOrder) Validate() error {
	if s == nil {
		return nil
	}
	if !SortableColumns[s.Column] {
		return InvalidDocument("unsupported sort key: %s", s.Column)
	}
	return nil
}

// EmployeeFilter defines criteria for listing employees.
// Nil fields do not restrict the result.
type EmployeeFilter struct {
	Class    *string
	IsActive *bool
	Flagged  *bool
	Sort     *SortOrder
}

// PageFilter defines criteria for one page of a searchable listing.
type PageFilter struct {
	Class  *string
	Search string
	Sort   *SortOrder
	Limit  int
	Offset int
}

// PageQuery is a paginated listing request as the client states it.
// Zero Page or Limit means the default.
type PageQuery struct {
	Page   int
	Limit  int
	Class  *string
	Search string
	Sort   *SortOrder
}

// Pagination summarises a paginated listing.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// SortableColumns lists the employee columns a listing may be ordered by.
var SortableColumns = map[string]bool{
	"id":         true,
	"name":       true,
	"email":      true,
	"age":        true,
	"class":      true,
	"attendance": true,
	"position":   true,
	"salary":     true,
	"hire_date":  true,
	"is_active":  true,
	"flagged":    true,
	"created_at": true,
	"updated_at": true,
}
