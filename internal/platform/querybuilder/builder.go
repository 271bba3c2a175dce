// Package querybuilder renders the small set of PostgreSQL statements the
// repositories need, with $n placeholders numbered in argument order.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// binder collects arguments and hands out their placeholders.
type binder struct {
	args []any
}

func (b *binder) bind(value any) string {
	b.args = append(b.args, value)
	return "$" + strconv.Itoa(len(b.args))
}

// expand replaces each ? in expr with the placeholder of the matching arg.
// Surplus ? marks are kept as written.
func (b *binder) expand(expr string, values []any) string {
	if len(values) == 0 {
		return expr
	}
	var out strings.Builder
	next := 0
	for _, r := range expr {
		if r == '?' && next < len(values) {
			out.WriteString(b.bind(values[next]))
			next++
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

type Condition interface {
	render(b *binder) string
}

type conditionFunc func(b *binder) string

func (f conditionFunc) render(b *binder) string { return f(b) }

func Eq(column string, value any) Condition {
	return conditionFunc(func(b *binder) string {
		return column + " = " + b.bind(value)
	})
}

// EqFold compares case-insensitively after trimming the value.
func EqFold(column, value string) Condition {
	return conditionFunc(func(b *binder) string {
		return "LOWER(" + column + ") = LOWER(" + b.bind(strings.TrimSpace(value)) + ")"
	})
}

// In with no values matches nothing.
func In(column string, values []any) Condition {
	return conditionFunc(func(b *binder) string {
		if len(values) == 0 {
			return "1=0"
		}
		marks := make([]string, len(values))
		for i, v := range values {
			marks[i] = b.bind(v)
		}
		return column + " IN (" + strings.Join(marks, ", ") + ")"
	})
}

// Range matches the half-open interval from <= column < to.
func Range(column string, from, to any) Condition {
	return conditionFunc(func(b *binder) string {
		return column + " >= " + b.bind(from) + " AND " + column + " < " + b.bind(to)
	})
}

// Expr is a raw predicate using ? for its arguments.
func Expr(expr string, args ...any) Condition {
	return conditionFunc(func(b *binder) string {
		return b.expand(expr, args)
	})
}

func where(b *binder, conditions []Condition) string {
	if len(conditions) == 0 {
		return ""
	}
	parts := make([]string, len(conditions))
	for i, c := range conditions {
		parts[i] = c.render(b)
	}
	return " WHERE " + strings.Join(parts, " AND ")
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (s *SelectBuilder) From(table string) *SelectBuilder {
	s.table = table
	return s
}

func (s *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	s.where = append(s.where, conditions...)
	return s
}

func (s *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	s.orderBy = append(s.orderBy, parts...)
	return s
}

func (s *SelectBuilder) ToSQL() (string, []any, error) {
	if len(s.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(s.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var b binder
	query := "SELECT " + strings.Join(s.columns, ", ") + " FROM " + s.table + where(&b, s.where)
	if len(s.orderBy) > 0 {
		query += " ORDER BY " + strings.Join(s.orderBy, ", ")
	}
	return query, b.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append([]string(nil), columns...)
	return i
}

// Values adds one row; call it repeatedly for a multi-row insert.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.rows = append(i.rows, append([]any(nil), values...))
	return i
}

// Suffix appends a trailing clause such as ON CONFLICT or RETURNING.
func (i *InsertBuilder) Suffix(sql string) *InsertBuilder {
	i.suffix = strings.TrimSpace(sql)
	return i
}

func (i *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(i.table) == "":
		return "", nil, fmt.Errorf("insert table is required")
	case len(i.columns) == 0:
		return "", nil, fmt.Errorf("insert columns are required")
	case len(i.rows) == 0:
		return "", nil, fmt.Errorf("insert values are required")
	}

	var b binder
	tuples := make([]string, len(i.rows))
	for idx, row := range i.rows {
		if len(row) != len(i.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", idx, len(row), len(i.columns))
		}
		marks := make([]string, len(row))
		for col, value := range row {
			marks[col] = b.bind(value)
		}
		tuples[idx] = "(" + strings.Join(marks, ", ") + ")"
	}

	query := "INSERT INTO " + i.table + " (" + strings.Join(i.columns, ", ") + ") VALUES " + strings.Join(tuples, ", ")
	if i.suffix != "" {
		query += " " + i.suffix
	}
	return query, b.args, nil
}

type assignment struct {
	column string
	value  any
	raw    string
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (u *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, value: value})
	return u
}

// SetNow assigns the statement timestamp.
func (u *UpdateBuilder) SetNow(column string) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, raw: "NOW()"})
	return u
}

func (u *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	u.where = append(u.where, conditions...)
	return u
}

// ToSQL refuses to build an unconditioned UPDATE.
func (u *UpdateBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(u.table) == "":
		return "", nil, fmt.Errorf("update table is required")
	case len(u.sets) == 0:
		return "", nil, fmt.Errorf("update sets are required")
	case len(u.where) == 0:
		return "", nil, fmt.Errorf("update requires at least one condition")
	}

	var b binder
	parts := make([]string, len(u.sets))
	for idx, set := range u.sets {
		if set.raw != "" {
			parts[idx] = set.column + " = " + set.raw
			continue
		}
		parts[idx] = set.column + " = " + b.bind(set.value)
	}
	return "UPDATE " + u.table + " SET " + strings.Join(parts, ", ") + where(&b, u.where), b.args, nil
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (d *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	d.where = append(d.where, conditions...)
	return d
}

// ToSQL refuses to build an unconditioned DELETE.
func (d *DeleteBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(d.table) == "":
		return "", nil, fmt.Errorf("delete table is required")
	case len(d.where) == 0:
		return "", nil, fmt.Errorf("delete requires at least one condition")
	}

	var b binder
	return "DELETE FROM " + d.table + where(&b, d.where), b.args, nil
}
