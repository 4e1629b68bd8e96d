package gql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/locvowork/employee_directory/internal/auth"
	"github.com/locvowork/employee_directory/internal/domain"
	"github.com/locvowork/employee_directory/internal/logger"
)

var errInternal = errors.New("internal error")

// Handler runs one operation with its raw variables object.
type Handler func(ctx context.Context, vars json.RawMessage) (interface{}, error)

// Bind adapts a handler taking typed variables.
func Bind[V any](fn func(ctx context.Context, vars V) (interface{}, error)) Handler {
	return func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
		var vars V
		if err := decodeVariables(raw, &vars); err != nil {
			return nil, err
		}
		return fn(ctx, vars)
	}
}

// Operation is one catalog entry.
type Operation struct {
	Name    string
	Kind    Kind
	Handler Handler
}

// Dispatcher routes documents to operations by kind and name.
// It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	ops map[Kind]map[string]Operation
}

// NewDispatcher validates the catalog.
func NewDispatcher(ops ...Operation) (*Dispatcher, error) {
	d := &Dispatcher{ops: map[Kind]map[string]Operation{
		KindQuery:    {},
		KindMutation: {},
	}}
	seen := make(map[string]Kind, len(ops))
	for _, op := range ops {
		if op.Name == "" {
			return nil, errors.New("gql: operation with empty name")
		}
		if !op.Kind.valid() {
			return nil, fmt.Errorf("gql: operation %s has unknown kind %q", op.Name, op.Kind)
		}
		if op.Handler == nil {
			return nil, fmt.Errorf("gql: operation %s has no handler", op.Name)
		}
		if k, dup := seen[op.Name]; dup {
			return nil, fmt.Errorf("gql: operation %s registered twice (%s, %s)", op.Name, k, op.Kind)
		}
		seen[op.Name] = op.Kind
		d.ops[op.Kind][op.Name] = op
	}
	return d, nil
}

// Operations returns the registered names per kind.
func (d *Dispatcher) Operations(kind Kind) []string {
	names := make([]string, 0, len(d.ops[kind]))
	for name := range d.ops[kind] {
		names = append(names, name)
	}
	return names
}

// Dispatch runs req for caller and always returns an envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, caller auth.Caller, req Request) (resp Response) {
	var opName string
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorLog(ctx, "panic in operation %s: %v\n%s", opName, r, debug.Stack())
			resp = Failure(domain.StoreError(errInternal))
			resp.Operation = opName
		}
	}()

	data, err := d.run(ctx, caller, req, &opName)
	if err != nil {
		resp = Failure(err)
	} else {
		resp = Success(data)
	}
	resp.Operation = opName
	return resp
}

func (d *Dispatcher) run(ctx context.Context, caller auth.Caller, req Request, opName *string) (interface{}, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, domain.InvalidDocument("Invalid GraphQL query")
	}
	doc, err := ParseDocument(req.Query)
	if err != nil {
		return nil, err
	}
	*opName = doc.Name

	if doc.Kind == KindMutation && !caller.IsAdmin() {
		return nil, domain.Forbidden("Unauthorized: Admin access required")
	}

	op, ok := d.ops[doc.Kind][doc.Name]
	if !ok {
		return nil, domain.UnknownOperation("Unknown %s: %s", doc.Kind, doc.Name)
	}

	ctx = logger.WithLogger(ctx, map[string]interface{}{"operation": doc.Name})
	data, err := op.Handler(ctx, req.Variables)
	if err != nil {
		return nil, err
	}
	return data, nil
}
