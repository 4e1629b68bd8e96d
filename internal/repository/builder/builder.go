package builder

import (
	"fmt"
	"strings"
)

type statement int

const (
	stmtNone statement = iota
	stmtSelect
	stmtInsert
	stmtUpdate
	stmtDelete
)

// SQLBuilder helps construct SQL queries dynamically.
// Conditions are written with "?" placeholders and rebound to $1, $2, ...
// in the order they appear in the final statement.
type SQLBuilder struct {
	stmt       statement
	table      string
	columns    []string
	values     []interface{}
	sets       []setClause
	conds      []condition
	joins      []string
	orderBy    []string
	returning  []string
	onConflict string
	limit      int
	offset     int
}

type setClause struct {
	expr string
	args []interface{}
}

// condition is one WHERE term joined to the previous one by conj.
type condition struct {
	conj  string
	sql   string
	args  []interface{}
	group *SQLBuilder
}

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.stmt = stmtSelect
	b.columns = cols
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.stmt = stmtInsert
	b.table = table
	b.columns = cols
	return b
}

// Update specifies the table to update.
func (b *SQLBuilder) Update(table string) *SQLBuilder {
	b.stmt = stmtUpdate
	b.table = table
	return b
}

// Delete specifies the table to delete from.
func (b *SQLBuilder) Delete(table string) *SQLBuilder {
	b.stmt = stmtDelete
	b.table = table
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Set assigns a value to a column in an UPDATE.
func (b *SQLBuilder) Set(col string, val interface{}) *SQLBuilder {
	b.sets = append(b.sets, setClause{expr: col + " = ?", args: []interface{}{val}})
	return b
}

// SetRaw adds a raw assignment such as "flagged = NOT flagged".
func (b *SQLBuilder) SetRaw(expr string, args ...interface{}) *SQLBuilder {
	b.sets = append(b.sets, setClause{expr: expr, args: args})
	return b
}

// Values specifies the values for insertion.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.values = vals
	return b
}

// Where adds a condition joined with AND.
func (b *SQLBuilder) Where(cond string, args ...interface{}) *SQLBuilder {
	b.conds = append(b.conds, condition{conj: "AND", sql: cond, args: args})
	return b
}

// Or adds a condition joined with OR. Standard SQL precedence applies,
// so use WhereGroup to keep an OR from escaping a preceding AND.
func (b *SQLBuilder) Or(cond string, args ...interface{}) *SQLBuilder {
	b.conds = append(b.conds, condition{conj: "OR", sql: cond, args: args})
	return b
}

// WhereGroup adds a parenthesized group joined with AND.
// The provided function receives a new SQLBuilder for building the grouped conditions.
func (b *SQLBuilder) WhereGroup(fn func(*SQLBuilder) *SQLBuilder) *SQLBuilder {
	g := fn(NewSQLBuilder())
	if g == nil || len(g.conds) == 0 {
		return b
	}
	b.conds = append(b.conds, condition{conj: "AND", group: g})
	return b
}

// WhereRaw adds a raw SQL condition joined with AND. The text is emitted as is.
func (b *SQLBuilder) WhereRaw(sql string, args ...interface{}) *SQLBuilder {
	return b.Where(sql, args...)
}

// Join adds a JOIN clause.
func (b *SQLBuilder) Join(joinType, table, on string) *SQLBuilder {
	b.joins = append(b.joins, fmt.Sprintf("%s JOIN %s ON %s", joinType, table, on))
	return b
}

// OrderBy adds an ORDER BY term.
func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

// Limit adds a LIMIT clause.
func (b *SQLBuilder) Limit(limit int) *SQLBuilder {
	b.limit = limit
	return b
}

// Offset adds an OFFSET clause.
func (b *SQLBuilder) Offset(offset int) *SQLBuilder {
	b.offset = offset
	return b
}

// Returning adds a RETURNING clause to INSERT, UPDATE and DELETE.
func (b *SQLBuilder) Returning(cols ...string) *SQLBuilder {
	b.returning = cols
	return b
}

// OnConflict adds an ON CONFLICT clause to an INSERT.
func (b *SQLBuilder) OnConflict(clause string) *SQLBuilder {
	b.onConflict = clause
	return b
}

// Count derives a SELECT COUNT(*) over the same table, joins and conditions.
// Ordering and paging are dropped.
func (b *SQLBuilder) Count() *SQLBuilder {
	return &SQLBuilder{
		stmt:    stmtSelect,
		table:   b.table,
		columns: []string{"COUNT(*)"},
		joins:   b.joins,
		conds:   b.conds,
	}
}

// BuildSafe constructs the final SQL string and arguments with safety validation.
// Returns an error if the number of placeholders doesn't match the number of arguments.
func (b *SQLBuilder) BuildSafe() (string, []interface{}, error) {
	raw, args := b.build()
	if n := strings.Count(raw, "?"); n != len(args) {
		return "", nil, fmt.Errorf("placeholder count (%d) does not match argument count (%d)", n, len(args))
	}
	if b.stmt == stmtNone {
		return "", nil, fmt.Errorf("no statement type set")
	}
	return rebind(raw), args, nil
}

// Build constructs the final SQL string and arguments.
// It does not modify the builder and may be called repeatedly.
func (b *SQLBuilder) Build() (string, []interface{}) {
	raw, args := b.build()
	return rebind(raw), args
}

func (b *SQLBuilder) build() (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}

	switch b.stmt {
	case stmtSelect:
		sb.WriteString("SELECT ")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(" FROM ")
		sb.WriteString(b.table)
		for _, join := range b.joins {
			sb.WriteString(" ")
			sb.WriteString(join)
		}
	case stmtInsert:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(b.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(") VALUES (")
		placeholders := make([]string, len(b.values))
		for i := range b.values {
			placeholders[i] = "?"
		}
		sb.WriteString(strings.Join(placeholders, ", "))
		sb.WriteString(")")
		args = append(args, b.values...)
		if b.onConflict != "" {
			sb.WriteString(" ON CONFLICT ")
			sb.WriteString(b.onConflict)
		}
		b.writeReturning(&sb)
		return sb.String(), args
	case stmtUpdate:
		sb.WriteString("UPDATE ")
		sb.WriteString(b.table)
		sb.WriteString(" SET ")
		exprs := make([]string, len(b.sets))
		for i, s := range b.sets {
			exprs[i] = s.expr
			args = append(args, s.args...)
		}
		sb.WriteString(strings.Join(exprs, ", "))
	case stmtDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(b.table)
	}

	if len(b.conds) > 0 {
		where, whereArgs := renderConditions(b.conds)
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
		args = append(args, whereArgs...)
	}

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}

	if b.limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", b.limit))
	}

	if b.offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET %d", b.offset))
	}

	b.writeReturning(&sb)
	return sb.String(), args
}

func (b *SQLBuilder) writeReturning(sb *strings.Builder) {
	if len(b.returning) == 0 || b.stmt == stmtSelect {
		return
	}
	sb.WriteString(" RETURNING ")
	sb.WriteString(strings.Join(b.returning, ", "))
}

func renderConditions(conds []condition) (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}
	for i, c := range conds {
		if i > 0 {
			sb.WriteString(" ")
			sb.WriteString(c.conj)
			sb.WriteString(" ")
		}
		if c.group != nil {
			inner, innerArgs := renderConditions(c.group.conds)
			sb.WriteString("(")
			sb.WriteString(inner)
			sb.WriteString(")")
			args = append(args, innerArgs...)
			continue
		}
		sb.WriteString(c.sql)
		args = append(args, c.args...)
	}
	return sb.String(), args
}

// rebind replaces each "?" with a positional $n placeholder.
func rebind(query string) string {
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString(fmt.Sprintf("$%d", n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
