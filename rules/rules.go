// Package rules evaluates declarative data-quality checks against a table.
//
// Every rule is pure: it reads the table, never mutates it, and reports at
// most one Issue. A rule whose column is absent from the table reports
// nothing; callers that care can check Missing before evaluating.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"material-master/table"
)

// Issue is a data-quality finding. It is never an error and never blocks the
// pipeline.
type Issue struct {
	Rule         string   `json:"rule" yaml:"rule"`
	Column       string   `json:"column" yaml:"column"`
	AffectedKeys []string `json:"affected_keys" yaml:"affected_keys"`
	Message      string   `json:"message" yaml:"message"`
}

// Rule checks one column of a table.
type Rule interface {
	Name() string
	Column() string
	Evaluate(t *table.Table) *Issue
}

const (
	TypeDuplicateKey = "duplicate_key"
	TypeRequired     = "required"
	TypeEnum         = "enum"
	TypePositive     = "positive"
)

// Evaluate runs every rule and collects all issues in rule order. An empty
// result is a clean pass.
func Evaluate(t *table.Table, rs ...Rule) []Issue {
	issues := make([]Issue, 0)
	for _, r := range rs {
		if issue := r.Evaluate(t); issue != nil {
			issues = append(issues, *issue)
		}
	}
	return issues
}

// Missing returns the rules whose column the table does not have.
func Missing(t *table.Table, rs ...Rule) []Rule {
	var out []Rule
	for _, r := range rs {
		if !t.HasColumn(r.Column()) {
			out = append(out, r)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Duplicate key
// ---------------------------------------------------------------------------

type duplicateKey struct{ column string }

// DuplicateKey flags values of column that occur more than once. Affected
// keys are the distinct duplicated values in first-occurrence order. Null
// keys are left to the Required rule.
func DuplicateKey(column string) Rule { return duplicateKey{column: column} }

func (r duplicateKey) Name() string   { return TypeDuplicateKey }
func (r duplicateKey) Column() string { return r.column }

func (r duplicateKey) Evaluate(t *table.Table) *Issue {
	if !t.HasColumn(r.column) {
		return nil
	}
	counts := make(map[string]int)
	var order []string
	for i := 0; i < t.Len(); i++ {
		v, _ := t.Value(i, r.column)
		if v.IsNull() {
			continue
		}
		key := v.String()
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}

	var dups []string
	for _, key := range order {
		if counts[key] > 1 {
			dups = append(dups, key)
		}
	}
	if len(dups) == 0 {
		return nil
	}
	return &Issue{
		Rule:         r.Name(),
		Column:       r.column,
		AffectedKeys: dups,
		Message:      fmt.Sprintf("Duplicate %ss found: %s", r.column, formatList(dups)),
	}
}

// ---------------------------------------------------------------------------
// Required field
// ---------------------------------------------------------------------------

type required struct{ column string }

// Required flags rows whose column is null or blank after trimming.
func Required(column string) Rule { return required{column: column} }

func (r required) Name() string   { return TypeRequired }
func (r required) Column() string { return r.column }

func (r required) Evaluate(t *table.Table) *Issue {
	rows := matchingRows(t, r.column, func(v table.Value) bool {
		return v.IsNull() || strings.TrimSpace(v.String()) == ""
	})
	if len(rows) == 0 {
		return nil
	}
	return &Issue{
		Rule:         r.Name(),
		Column:       r.column,
		AffectedKeys: rows,
		Message:      fmt.Sprintf("Missing %s in rows: %s", r.column, formatList(rows)),
	}
}

// ---------------------------------------------------------------------------
// Enumerated value
// ---------------------------------------------------------------------------

type enumerated struct {
	column  string
	allowed map[string]struct{}
}

// Enumerated flags rows whose column value is not one of allowed. Matching
// is exact; null is never a member.
func Enumerated(column string, allowed ...string) Rule {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return enumerated{column: column, allowed: set}
}

func (r enumerated) Name() string   { return TypeEnum }
func (r enumerated) Column() string { return r.column }

// Allowed returns the allowed values sorted.
func (r enumerated) Allowed() []string {
	out := make([]string, 0, len(r.allowed))
	for a := range r.allowed {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func (r enumerated) Evaluate(t *table.Table) *Issue {
	rows := matchingRows(t, r.column, func(v table.Value) bool {
		if v.IsNull() {
			return true
		}
		_, ok := r.allowed[v.String()]
		return !ok
	})
	if len(rows) == 0 {
		return nil
	}
	return &Issue{
		Rule:         r.Name(),
		Column:       r.column,
		AffectedKeys: rows,
		Message:      fmt.Sprintf("Invalid %s values in rows: %s", r.column, formatList(rows)),
	}
}

// ---------------------------------------------------------------------------
// Positive numeric
// ---------------------------------------------------------------------------

type positive struct{ column string }

// Positive flags rows whose column is a number <= 0. Null and unparseable
// cells are excluded.
func Positive(column string) Rule { return positive{column: column} }

func (r positive) Name() string   { return TypePositive }
func (r positive) Column() string { return r.column }

func (r positive) Evaluate(t *table.Table) *Issue {
	rows := matchingRows(t, r.column, func(v table.Value) bool {
		f, ok := v.Float()
		return ok && f <= 0
	})
	if len(rows) == 0 {
		return nil
	}
	return &Issue{
		Rule:         r.Name(),
		Column:       r.column,
		AffectedKeys: rows,
		Message:      fmt.Sprintf("Invalid %s (<=0) in rows: %s", r.column, formatList(rows)),
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func matchingRows(t *table.Table, column string, match func(table.Value) bool) []string {
	if !t.HasColumn(column) {
		return nil
	}
	var ids []string
	for i := 0; i < t.Len(); i++ {
		v, _ := t.Value(i, column)
		if match(v) {
			ids = append(ids, t.RowID(i))
		}
	}
	return ids
}

func formatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
