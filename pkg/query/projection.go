// Package query builds driver-neutral SELECT statements from a projection of
// logical field names onto table columns. Statements use `?` placeholders;
// rebind them for the target driver before execution.
package query

import "strings"

// ProjectionMap maps logical field names to the columns of one table.
type ProjectionMap struct {
	table      string
	columns    map[string]string
	columnList []string
}

// NewProjectionMap creates an empty projection over table.
func NewProjectionMap(table string) *ProjectionMap {
	return &ProjectionMap{
		table:   table,
		columns: make(map[string]string),
	}
}

// Project maps field to column and appends column to the select list.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	p.columns[field] = column
	p.columnList = append(p.columnList, column)
	return p
}

// Table returns the projected table name.
func (p *ProjectionMap) Table() string {
	return p.table
}

// Column returns the column mapped to field.
func (p *ProjectionMap) Column(field string) (string, bool) {
	col, ok := p.columns[field]
	return col, ok
}

// Columns returns the select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}
