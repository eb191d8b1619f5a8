package table

import (
	"fmt"
	"strconv"
	"strings"
)

// ============================================================================
// TABLE - Generic in-memory rows for rule evaluation and file loading
// ============================================================================
// Column names are runtime parameters here. Typed entities (materials,
// workflow requests, audit records) live in models and are converted at the
// storage boundary.
// ============================================================================

// Kind tells which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
)

// Value is a single nullable cell.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps s. Use Null for missing cells; an empty string is kept as is.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps f.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Of converts a Go value into a Value. nil becomes Null; unsupported types
// are formatted with %v.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return String(x)
	case *string:
		if x == nil {
			return Null()
		}
		return String(*x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	default:
		return String(fmt.Sprintf("%v", x))
	}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// String renders the value. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns the numeric reading of the value. Strings are parsed on
// demand; null and unparseable strings report false.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Table is an ordered set of rows sharing one column list. Each row carries
// an identifier used when reporting findings; by default it is the 0-based
// row position.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
	ids     []string
}

// New creates an empty table with the given columns. Duplicate column names
// keep their first position.
func New(columns ...string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if _, dup := t.index[c]; dup {
			continue
		}
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t
}

// FromMaps builds a table from map rows; keys missing from a row are null.
func FromMaps(columns []string, rows []map[string]any) *Table {
	t := New(columns...)
	for _, r := range rows {
		values := make([]Value, len(t.columns))
		for i, c := range t.columns {
			values[i] = Of(r[c])
		}
		t.rows = append(t.rows, values)
		t.ids = append(t.ids, strconv.Itoa(len(t.ids)))
	}
	return t
}

// AppendRow adds a row identified by its position.
func (t *Table) AppendRow(values ...Value) error {
	return t.AppendRowWithID(strconv.Itoa(len(t.rows)), values...)
}

// AppendRowWithID adds a row with an explicit identifier. Short rows are
// padded with nulls; long rows are rejected.
func (t *Table) AppendRowWithID(id string, values ...Value) error {
	if len(values) > len(t.columns) {
		return fmt.Errorf("row %s has %d values for %d columns", id, len(values), len(t.columns))
	}
	row := make([]Value, len(t.columns))
	copy(row, values)
	t.rows = append(t.rows, row)
	t.ids = append(t.ids, id)
	return nil
}

func (t *Table) Len() int { return len(t.rows) }

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Value returns the cell at row/column. ok is false when the column does not
// exist or the row is out of range.
func (t *Table) Value(row int, column string) (Value, bool) {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return Null(), false
	}
	return t.rows[row][i], true
}

// RowID returns the identifier of row.
func (t *Table) RowID(row int) string {
	return t.ids[row]
}

// Row returns a copy of the row's values in column order.
func (t *Table) Row(row int) []Value {
	return append([]Value(nil), t.rows[row]...)
}
