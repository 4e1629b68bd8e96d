package gql

import (
	"encoding/json"

	"github.com/locvowork/employee_directory/internal/domain"
)

// Request is the POST body of the endpoint.
type Request struct {
	Query     string          `json:"query"`
	Variables json.RawMessage `json:"variables,omitempty"`
}

// ErrorMessage is one entry of the errors array.
type ErrorMessage struct {
	Message string `json:"message"`
}

// Response is the uniform envelope. Exactly one of Data and Errors is set.
type Response struct {
	Data   interface{}    `json:"data,omitempty"`
	Errors []ErrorMessage `json:"errors,omitempty"`

	// Operation and Err are kept for the transport layer and never serialized.
	Operation string `json:"-"`
	Err       error  `json:"-"`
}

// Success wraps a handler payload.
func Success(data interface{}) Response {
	return Response{Data: data}
}

// Failure wraps err; a nil err is reported as a store error.
func Failure(err error) Response {
	if err == nil {
		err = domain.StoreError(errInternal)
	}
	return Response{
		Errors: []ErrorMessage{{Message: domain.MessageOf(err)}},
		Err:    err,
	}
}

// Code is the error classification, or "" on success.
func (r Response) Code() domain.Code {
	if r.Err == nil {
		return ""
	}
	return domain.CodeOf(r.Err)
}

// result payloads

type employeesPayload struct {
	Employees []domain.Employee `json:"employees"`
}

type employeePayload struct {
	Employee *domain.Employee `json:"employee"`
}

type paginatedPayload struct {
	Employees  []domain.Employee `json:"employees"`
	Pagination domain.Pagination `json:"pagination"`
}

type successPayload struct {
	Success bool `json:"success"`
}
