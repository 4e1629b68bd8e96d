package gql

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/locvowork/employee_directory/internal/domain"
)

var nullJSON = []byte("null")

// decodeVariables fills v from the variables object. Absent and null
// variables leave v at its zero value. Unknown variables are ignored.
func decodeVariables(raw json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, nullJSON) {
		return nil
	}
	if trimmed[0] != '{' {
		return domain.InvalidDocument("Invalid variables: expected an object")
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return variableError(err)
	}
	return nil
}

func variableError(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return domain.InvalidDocument("Invalid variable %s: cannot use %s as %s", te.Field, te.Value, te.Type)
	}
	return domain.InvalidDocument("Invalid variables: %v", err)
}

// parseID validates an employee identifier and returns its canonical form.
func parseID(id string) (string, error) {
	if id == "" {
		return "", domain.InvalidDocument("Invalid variables: id is required")
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return "", domain.InvalidDocument("Invalid variables: id %q is not a valid UUID", id)
	}
	return u.String(), nil
}

// sortOrder builds the requested ordering; ascending defaults to true.
func sortOrder(sortBy *string, ascending *bool) *domain.SortOrder {
	if sortBy == nil || *sortBy == "" {
		return nil
	}
	return &domain.SortOrder{Column: *sortBy, Ascending: ascending == nil || *ascending}
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

type listVars struct {
	Class     *string `json:"class"`
	IsActive  *bool   `json:"isActive"`
	Flagged   *bool   `json:"flagged"`
	SortBy    *string `json:"sortBy"`
	Ascending *bool   `json:"ascending"`
}

type idVars struct {
	ID string `json:"id"`
}

type pageVars struct {
	Page      *int    `json:"page"`
	Limit     *int    `json:"limit"`
	Class     *string `json:"class"`
	Search    *string `json:"search"`
	SortBy    *string `json:"sortBy"`
	Ascending *bool   `json:"ascending"`
}

type createVars struct {
	Input *domain.EmployeeInput `json:"input"`
}

type updateVars struct {
	ID    string                `json:"id"`
	Input *domain.EmployeeInput `json:"input"`
}

func requireInput(in *domain.EmployeeInput) (domain.EmployeeInput, error) {
	if in == nil {
		return domain.EmployeeInput{}, domain.InvalidDocument("Invalid variables: input is required")
	}
	return *in, nil
}
