// Package models defines the tabular data model shared by the reconciliation
// engine and its collaborators.
//
// Tables are flat: an ordered list of column names plus rows mapping column
// name to a tagged Value. Rows may carry heterogeneous column sets because
// reference joins extend base rows with per-reference columns. Cell values
// keep their original display strings; numeric and date interpretation is
// done on demand so that output preserves input formatting.
package models

// Row maps a column name to its cell value. Columns absent from the map are
// treated as null.
type Row map[string]Value

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns the value for a column, or a null value when the column is not
// present in the row.
func (r Row) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Null()
}

// Table is an ordered collection of named columns and rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given column order.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// AddRow appends a row to the table.
func (t *Table) AddRow(row Row) {
	t.Rows = append(t.Rows, row)
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// AddColumn appends a column name to the table's column order. Existing rows
// are left untouched; absent cells read as null.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// InsertColumnAt inserts a column name at the given position, clamped to the
// column range.
func (t *Table) InsertColumnAt(pos int, name string) {
	if t.HasColumn(name) {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(t.Columns) {
		pos = len(t.Columns)
	}
	t.Columns = append(t.Columns, "")
	copy(t.Columns[pos+1:], t.Columns[pos:])
	t.Columns[pos] = name
}

// RemoveColumn drops a column from the column order and from every row.
func (t *Table) RemoveColumn(name string) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return
	}
	t.Columns = append(t.Columns[:idx], t.Columns[idx+1:]...)
	for _, row := range t.Rows {
		delete(row, name)
	}
}

// Value returns the cell at the given row index and column, or null when the
// index is out of range or the cell is absent.
func (t *Table) Value(rowIdx int, column string) Value {
	if rowIdx < 0 || rowIdx >= len(t.Rows) {
		return Null()
	}
	return t.Rows[rowIdx].Get(column)
}

// SetValue sets the cell at the given row index and column.
func (t *Table) SetValue(rowIdx int, column string, v Value) {
	if rowIdx < 0 || rowIdx >= len(t.Rows) {
		return
	}
	t.Rows[rowIdx][column] = v
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Clone returns a deep copy of the table. Input tables are never mutated by
// the engine; all work happens on clones.
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns...)
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, row.Clone())
	}
	return out
}

// MatchType selects the join strategy for a reference dataset.
type MatchType string

const (
	// MatchExact joins on normalized key equality.
	MatchExact MatchType = "exact"
	// MatchFuzzy joins on the best-scoring fuzzy key above the cutoff.
	MatchFuzzy MatchType = "fuzzy"
)

// IsValid reports whether the match type is one of the supported strategies.
func (m MatchType) IsValid() bool {
	return m == MatchExact || m == MatchFuzzy
}

// ReferenceSpec describes one reference dataset and its match rule.
type ReferenceSpec struct {
	// Table is the reference data. It is never mutated by the engine.
	Table *Table
	// MatchColumn is the reference column joined against the base match key.
	MatchColumn string
	// ReturnColumns are the reference columns extracted into the detailed
	// output, in order. The match column is always extracted even when
	// omitted here.
	ReturnColumns []string
	// MatchType selects exact or fuzzy joining. Empty means exact.
	MatchType MatchType
	// Name prefixes the extracted columns ("{Name}_{col}"). When empty the
	// engine assigns Ref1, Ref2, ... in processing order. Names must be
	// unique within a run.
	Name string
}
