// Package query provides SQL query building utilities with projection mapping.
package query

import "strings"

// ProjectionMap maps view field names to columns of a single aliased table.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	fields  map[string]string
	columns []string
}

// NewProjectionMap creates a ProjectionMap for schema.table under alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		fields: make(map[string]string),
	}
}

// Project maps column to the view field name. Projection order is the
// SELECT and RETURNING order.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	p.fields[field] = column
	p.columns = append(p.columns, column)
	return p
}

// Table returns "schema.table alias".
func (p *ProjectionMap) Table() string {
	return p.schema + "." + p.table + " " + p.alias
}

// Column returns the alias-qualified column for field, or field unchanged
// when it is not projected.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.fields[field]; ok {
		return p.alias + "." + col
	}
	return field
}

// Columns returns the alias-qualified projected columns for a SELECT list.
func (p *ProjectionMap) Columns() string {
	qualified := make([]string, len(p.columns))
	for i, col := range p.columns {
		qualified[i] = p.alias + "." + col
	}
	return strings.Join(qualified, ", ")
}

// Returning returns the bare projected columns for a RETURNING clause,
// where the table alias is out of scope.
func (p *ProjectionMap) Returning() string {
	return strings.Join(p.columns, ", ")
}
