package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD as well as full RFC 3339 timestamps.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t.Year(), t.Month(), t.Day()), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected %s", s, DateLayout)
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Format(DateLayout), nil
}

// Optional records whether a JSON field was present and whether it was null.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null returns a present Optional holding JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		o.Value = zero
		o.Null = true
		return nil
	}
	o.Null = false
	return json.Unmarshal(b, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// sqlValue is the value written to the store: nil for null.
func (o Optional[T]) sqlValue() interface{} {
	if o.Null {
		return nil
	}
	return o.Value
}

// EmployeeInput is the partial field set accepted by create and update.
type EmployeeInput struct {
	UserID     Optional[string]   `json:"user_id"`
	Name       Optional[string]   `json:"name"`
	Email      Optional[string]   `json:"email"`
	Age        Optional[int]      `json:"age"`
	Class      Optional[string]   `json:"class"`
	Subjects   Optional[[]string] `json:"subjects"`
	Attendance Optional[int]      `json:"attendance"`
	Position   Optional[string]   `json:"position"`
	Salary     Optional[float64]  `json:"salary"`
	Phone      Optional[string]   `json:"phone"`
	Address    Optional[string]   `json:"address"`
	HireDate   Optional[Date]     `json:"hire_date"`
	IsActive   Optional[bool]     `json:"is_active"`
	Flagged    Optional[bool]     `json:"flagged"`
}

// UnmarshalJSON rejects fields that are not part of the input type.
func (in *EmployeeInput) UnmarshalJSON(b []byte) error {
	type plain EmployeeInput
	var out plain
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return err
	}
	*in = EmployeeInput(out)
	return nil
}

// ColumnValue is one column assignment derived from an input.
type ColumnValue struct {
	Column string
	Value  interface{}
}

// Columns lists the present fields in table column order.
// Null values are reported as nil.
func (in EmployeeInput) Columns() []ColumnValue {
	var cols []ColumnValue
	add := func(set bool, col string, val interface{}) {
		if set {
			cols = append(cols, ColumnValue{Column: col, Value: val})
		}
	}
	add(in.UserID.Set, "user_id", in.UserID.sqlValue())
	add(in.Name.Set, "name", in.Name.sqlValue())
	add(in.Email.Set, "email", in.Email.sqlValue())
	add(in.Age.Set, "age", in.Age.sqlValue())
	add(in.Class.Set, "class", in.Class.sqlValue())
	subjects := in.Subjects.Value
	if subjects == nil {
		subjects = []string{}
	}
	add(in.Subjects.Set, "subjects", subjects)
	add(in.Attendance.Set, "attendance", in.Attendance.sqlValue())
	add(in.Position.Set, "position", in.Position.sqlValue())
	add(in.Salary.Set, "salary", in.Salary.sqlValue())
	add(in.Phone.Set, "phone", in.Phone.sqlValue())
	add(in.Address.Set, "address", in.Address.sqlValue())
	add(in.HireDate.Set, "hire_date", in.HireDate.sqlValue())
	add(in.IsActive.Set, "is_active", in.IsActive.sqlValue())
	add(in.Flagged.Set, "flagged", in.Flagged.sqlValue())
	return cols
}

// IsEmpty reports whether no field is present.
func (in EmployeeInput) IsEmpty() bool {
	return len(in.Columns()) == 0
}

// Validate checks nullability and value domains of the present fields.
func (in EmployeeInput) Validate() error {
	nonNullable := []struct {
		name string
		null bool
	}{
		{"name", in.Name.Null},
		{"email", in.Email.Null},
		{"age", in.Age.Null},
		{"class", in.Class.Null},
		{"attendance", in.Attendance.Null},
		{"position", in.Position.Null},
		{"salary", in.Salary.Null},
		{"hire_date", in.HireDate.Null},
		{"is_active", in.IsActive.Null},
		{"flagged", in.Flagged.Null},
	}
	for _, f := range nonNullable {
		if f.null {
			return InvalidDocument("input.%s cannot be null", f.name)
		}
	}
	if in.Age.Set && in.Age.Value < 0 {
		return InvalidDocument("input.age must be non-negative")
	}
	if in.Salary.Set {
		if err := validateSalary(in.Salary.Value); err != nil {
			return err
		}
	}
	if in.Name.Set && strings.TrimSpace(in.Name.Value) == "" {
		return InvalidDocument("input.name cannot be empty")
	}
	if in.Email.Set && strings.TrimSpace(in.Email.Value) == "" {
		return InvalidDocument("input.email cannot be empty")
	}
	return nil
}

// maxSalary is the largest value the numeric(12,2) salary column holds.
const maxSalary = 9999999999.99

func validateSalary(v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return InvalidDocument("input.salary must be a finite number")
	case v < 0:
		return InvalidDocument("input.salary must be non-negative")
	case v > maxSalary:
		return InvalidDocument("input.salary must not exceed %.2f", maxSalary)
	}
	text := strconv.FormatFloat(v, 'f', -1, 64)
	if dot := strings.IndexByte(text, '.'); dot >= 0 && len(text)-dot-1 > 2 {
		return InvalidDocument("input.salary must have at most two decimal places")
	}
	return nil
}

// ApplyTo copies the present fields of in onto e.
func (in EmployeeInput) ApplyTo(e *Employee) {
	if in.UserID.Set {
		e.UserID = stringPtr(in.UserID)
	}
	if in.Name.Set {
		e.Name = in.Name.Value
	}
	if in.Email.Set {
		e.Email = in.Email.Value
	}
	if in.Age.Set {
		e.Age = in.Age.Value
	}
	if in.Class.Set {
		e.Class = in.Class.Value
	}
	if in.Subjects.Set {
		e.Subjects = append([]string{}, in.Subjects.Value...)
	}
	if in.Attendance.Set {
		e.Attendance = in.Attendance.Value
	}
	if in.Position.Set {
		e.Position = in.Position.Value
	}
	if in.Salary.Set {
		e.Salary = in.Salary.Value
	}
	if in.Phone.Set {
		e.Phone = stringPtr(in.Phone)
	}
	if in.Address.Set {
		e.Address = stringPtr(in.Address)
	}
	if in.HireDate.Set {
		e.HireDate = in.HireDate.Value
	}
	if in.IsActive.Set {
		e.IsActive = in.IsActive.Value
	}
	if in.Flagged.Set {
		e.Flagged = in.Flagged.Value
	}
}

func stringPtr(o Optional[string]) *string {
	if o.Null {
		return nil
	}
	v := o.Value
	return &v
}
