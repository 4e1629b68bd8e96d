package gql

import (
	"github.com/dgraph-io/gqlparser/v2/ast"
	"github.com/dgraph-io/gqlparser/v2/parser"

	"github.com/locvowork/employee_directory/internal/domain"
)

// Kind separates reads from writes.
type Kind string

const (
	KindQuery    Kind = "query"
	KindMutation Kind = "mutation"
)

func (k Kind) valid() bool {
	return k == KindQuery || k == KindMutation
}

// Document is the routing information extracted from a query string.
type Document struct {
	Kind Kind
	Name string
}

// ParseDocument parses query and returns the kind and name of its first operation.
// Selection sets are syntax-checked and otherwise ignored.
func ParseDocument(query string) (Document, error) {
	doc, gqlErr := parser.ParseQuery(&ast.Source{Input: query})
	if gqlErr != nil {
		return Document{}, domain.InvalidDocument("Invalid GraphQL query: %s", gqlErr.Message)
	}
	if len(doc.Operations) == 0 {
		return Document{}, domain.InvalidDocument("Invalid GraphQL query")
	}

	op := doc.Operations[0]
	var kind Kind
	switch op.Operation {
	case ast.Query:
		kind = KindQuery
	case ast.Mutation:
		kind = KindMutation
	default:
		return Document{}, domain.InvalidDocument("Invalid GraphQL query: %s operations are not supported", op.Operation)
	}
	if op.Name == "" {
		return Document{}, domain.InvalidDocument("Invalid GraphQL query: operation name is required")
	}
	return Document{Kind: kind, Name: op.Name}, nil
}
