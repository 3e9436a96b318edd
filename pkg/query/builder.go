package query

import (
	"fmt"
	"reflect"
	"strings"
)

type condition struct {
	clause string
	arg    any
}

// SortField is one ORDER BY term. Field is a logical name from the projection.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses "sample,-f1" into sort fields. A leading "-" sorts
// descending. Empty input yields nil.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if after, ok := strings.CutPrefix(part, "-"); ok {
			fields = append(fields, SortField{Field: after, Descending: true})
		} else {
			fields = append(fields, SortField{Field: part})
		}
	}
	return fields
}

// Builder accumulates conditions and ordering for a projection.
type Builder struct {
	projection  *ProjectionMap
	conditions  []condition
	orderBy     []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder over projection. defaultSort applies when no
// valid sort fields are set with OrderByFields.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// WhereEquals adds `field = ?`. Zero values (nil, "", uuid.Nil, 0) are
// ignored so optional filters can be passed through unconditionally.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isZero(value) {
		return b
	}
	col, ok := b.projection.Column(field)
	if !ok {
		panic(fmt.Sprintf("query: unknown field %q", field))
	}
	b.conditions = append(b.conditions, condition{clause: col + " = ?", arg: value})
	return b
}

// OrderByFields replaces the default ordering. Fields that are not part of
// the projection are dropped.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.orderBy = fields
	return b
}

// Build returns the SELECT statement and its arguments.
func (b *Builder) Build() (string, []any) {
	where, args := b.where()
	return fmt.Sprintf("SELECT %s FROM %s%s%s",
		b.projection.Columns(), b.projection.Table(), where, b.order()), args
}

// BuildCount returns a COUNT(*) over the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.where()
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.Table(), where), args
}

// BuildPage returns the SELECT statement limited to limit rows after
// skipping offset rows.
func (b *Builder) BuildPage(limit, offset int) (string, []any) {
	sql, args := b.Build()
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, limit, offset), args
}

func (b *Builder) where() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, len(b.conditions))
	args := make([]any, len(b.conditions))
	for i, c := range b.conditions {
		clauses[i] = c.clause
		args[i] = c.arg
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (b *Builder) order() string {
	parts := b.orderTerms(b.orderBy)
	if len(parts) == 0 {
		parts = b.orderTerms(b.defaultSort)
	}
	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (b *Builder) orderTerms(fields []SortField) []string {
	var parts []string
	for _, f := range fields {
		col, ok := b.projection.Column(f.Field)
		if !ok {
			continue
		}
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	return parts
}

func isZero(value any) bool {
	if value == nil {
		return true
	}
	return reflect.ValueOf(value).IsZero()
}
