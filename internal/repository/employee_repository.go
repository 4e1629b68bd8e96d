package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/locvowork/employee_directory/internal/domain"
	"github.com/locvowork/employee_directory/internal/logger"
	"github.com/locvowork/employee_directory/internal/repository/builder"
)

const employeeTable = "employees"

// employeeColumns is the select and RETURNING list; scanEmployee follows this order.
var employeeColumns = []string{
	"id", "user_id", "name", "email", "age", "class", "subjects", "attendance",
	"position", "salary", "phone", "address", "hire_date", "is_active", "flagged",
	"created_at", "updated_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type employeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository
func NewEmployeeRepository(db *sql.DB) domain.EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	b := builder.NewSQLBuilder().Select(employeeColumns...).From(employeeTable)

	if filter.Class != nil {
		b.Where("class = ?", *filter.Class)
	}
	if filter.IsActive != nil {
		b.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Flagged != nil {
		b.Where("flagged = ?", *filter.Flagged)
	}
	if err := applySort(b, filter.Sort); err != nil {
		return nil, err
	}

	query, args := b.Build()
	return r.queryEmployees(ctx, "list employees", query, args)
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	query, args := builder.NewSQLBuilder().
		Select(employeeColumns...).
		From(employeeTable).
		Where("id = ?", id).
		Build()

	return r.queryOne(ctx, "get employee", query, args)
}

func (r *employeeRepository) ListPage(ctx context.Context, filter domain.PageFilter) ([]domain.Employee, int, error) {
	if filter.Offset < 0 {
		return nil, 0, domain.InvalidDocument("Invalid variables: negative offset %d", filter.Offset)
	}
	b := builder.NewSQLBuilder().Select(employeeColumns...).From(employeeTable)

	if filter.Class != nil {
		b.Where("class = ?", *filter.Class)
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		b.WhereGroup(func(g *builder.SQLBuilder) *builder.SQLBuilder {
			return g.Where("name ILIKE ?", pattern).Or("email ILIKE ?", pattern)
		})
	}

	countQuery, countArgs := b.Count().Build()
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, storeErr(ctx, "count employees", err)
	}

	if total == 0 || filter.Offset >= total {
		return []domain.Employee{}, total, nil
	}

	if err := applySort(b, filter.Sort); err != nil {
		return nil, 0, err
	}
	b.Limit(filter.Limit).Offset(filter.Offset)

	query, args := b.Build()
	employees, err := r.queryEmployees(ctx, "page employees", query, args)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func (r *employeeRepository) Create(ctx context.Context, id string, input domain.EmployeeInput) (*domain.Employee, error) {
	cols := []string{"id"}
	vals := []interface{}{id}
	for _, cv := range input.Columns() {
		cols = append(cols, cv.Column)
		vals = append(vals, toArg(cv.Value))
	}

	query, args := builder.NewSQLBuilder().
		Insert(employeeTable, cols...).
		Values(vals...).
		Returning(employeeColumns...).
		Build()

	return r.queryOne(ctx, "create employee", query, args)
}

func (r *employeeRepository) Update(ctx context.Context, id string, input domain.EmployeeInput) (*domain.Employee, error) {
	b := builder.NewSQLBuilder().Update(employeeTable)
	for _, cv := range input.Columns() {
		b.Set(cv.Column, toArg(cv.Value))
	}
	query, args := b.SetRaw("updated_at = now()").
		Where("id = ?", id).
		Returning(employeeColumns...).
		Build()

	return r.queryOne(ctx, "update employee", query, args)
}

func (r *employeeRepository) Delete(ctx context.Context, id string) (bool, error) {
	query, args := builder.NewSQLBuilder().
		Delete(employeeTable).
		Where("id = ?", id).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, storeErr(ctx, "delete employee", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr(ctx, "delete employee", err)
	}
	return n > 0, nil
}

// ToggleFlag flips flagged in a single statement, so concurrent toggles never collapse.
func (r *employeeRepository) ToggleFlag(ctx context.Context, id string) (*domain.Employee, error) {
	query, args := builder.NewSQLBuilder().
		Update(employeeTable).
		SetRaw("flagged = NOT flagged").
		SetRaw("updated_at = now()").
		Where("id = ?", id).
		Returning(employeeColumns...).
		Build()

	return r.queryOne(ctx, "toggle employee flag", query, args)
}

func (r *employeeRepository) queryOne(ctx context.Context, op, query string, args []interface{}) (*domain.Employee, error) {
	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("Employee not found")
		}
		return nil, storeErr(ctx, op, err)
	}
	return e, nil
}

func (r *employeeRepository) queryEmployees(ctx context.Context, op, query string, args []interface{}) ([]domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(ctx, op, err)
	}
	defer rows.Close()

	employees := []domain.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, storeErr(ctx, op, err)
		}
		employees = append(employees, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(ctx, op, err)
	}
	return employees, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var e domain.Employee
	var subjects pq.StringArray
	if err := row.Scan(
		&e.ID, &e.UserID, &e.Name, &e.Email, &e.Age, &e.Class, &subjects, &e.Attendance,
		&e.Position, &e.Salary, &e.Phone, &e.Address, &e.HireDate, &e.IsActive, &e.Flagged,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Subjects = []string(subjects)
	if e.Subjects == nil {
		e.Subjects = []string{}
	}
	return &e, nil
}

func applySort(b *builder.SQLBuilder, sort *domain.SortOrder) error {
	if sort == nil {
		b.OrderBy("created_at DESC").OrderBy("id ASC")
		return nil
	}
	if err := sort.Validate(); err != nil {
		return err
	}
	dir := "DESC"
	if sort.Ascending {
		dir = "ASC"
	}
	b.OrderBy(fmt.Sprintf("%s %s", sort.Column, dir))
	if sort.Column != "id" {
		b.OrderBy("id ASC")
	}
	return nil
}

// toArg adapts input values to driver arguments.
func toArg(v interface{}) interface{} {
	if s, ok := v.([]string); ok {
		return pq.Array(s)
	}
	return v
}

// storeErr logs driver detail and classifies err as a store error with its message intact.
func storeErr(ctx context.Context, op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		logger.WarnLog(ctx, "%s failed: code=%s detail=%s", op, pqErr.Code, pqErr.Detail)
	}
	return domain.StoreError(err)
}
