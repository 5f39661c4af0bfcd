package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

type ColumnType string

const (
	TypeInt      ColumnType = "int"
	TypeFloat    ColumnType = "float"
	TypeDate     ColumnType = "date"      // string timestamps, mixed layouts
	TypeUnixDate ColumnType = "unix_date" // numeric epoch seconds
)

// ColumnSpec declares a target type for one column of a Table.
type ColumnSpec struct {
	Name string
	Type ColumnType
}

// CoercionIssue reports a column that could not be converted. The column's
// values are left untouched; other columns are unaffected.
type CoercionIssue struct {
	Column string
	Type   ColumnType
	Err    error
}

func (i CoercionIssue) String() string {
	return fmt.Sprintf("column %q could not be converted to %s: %v", i.Column, i.Type, i.Err)
}

// Table is a column-ordered tabular extract. Cell values hold whatever the
// JSON decoder produced until CoerceColumns converts them.
type Table struct {
	Columns []string
	Rows    [][]any
}

func (t Table) Empty() bool {
	return len(t.Columns) == 0 && len(t.Rows) == 0
}

func (t Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// TableFromRecords builds a Table from decoded JSON objects. JSON maps carry
// no key order, so columns are the sorted union of keys across all records;
// a record without a key yields a nil cell.
func TableFromRecords(records []map[string]any) Table {
	if len(records) == 0 {
		return Table{}
	}

	seen := map[string]struct{}{}
	for _, record := range records {
		for key := range record {
			seen[key] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}
	sort.Strings(columns)

	rows := make([][]any, 0, len(records))
	for _, record := range records {
		row := make([]any, len(columns))
		for i, col := range columns {
			row[i] = record[col]
		}
		rows = append(rows, row)
	}

	return Table{Columns: columns, Rows: rows}
}

// CoerceColumns converts the named columns to their declared types, best
// effort per column: a value that fails to convert leaves that whole column
// unconverted and reports an issue, without touching the other columns.
// Coercing a column already of the target type is a no-op. A column missing
// from the table entirely is an error, not an issue.
func CoerceColumns(t Table, specs []ColumnSpec) (Table, []CoercionIssue, error) {
	var issues []CoercionIssue

	for _, spec := range specs {
		idx := t.ColumnIndex(spec.Name)
		if idx < 0 {
			return Table{}, nil, &MissingKeyError{Path: spec.Name}
		}

		converted := make([]any, len(t.Rows))
		var convErr error
		for i, row := range t.Rows {
			value, err := coerceValue(row[idx], spec.Type)
			if err != nil {
				convErr = err
				break
			}
			converted[i] = value
		}
		if convErr != nil {
			issues = append(issues, CoercionIssue{Column: spec.Name, Type: spec.Type, Err: convErr})
			continue
		}

		for i := range t.Rows {
			t.Rows[i][idx] = converted[i]
		}
	}

	return t, issues, nil
}

// SortRowsBy stably sorts rows ascending by the named column.
func SortRowsBy(t Table, column string) Table {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return t
	}

	sort.SliceStable(t.Rows, func(i, j int) bool {
		return lessValue(t.Rows[i][idx], t.Rows[j][idx])
	})

	return t
}

// mixedDateLayouts are tried in order when coercing string timestamps. The
// API mixes full RFC 3339 stamps with date-only and space-separated forms.
var mixedDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func coerceValue(v any, typ ColumnType) (any, error) {
	switch typ {
	case TypeInt:
		return coerceInt(v)
	case TypeFloat:
		return coerceFloat(v)
	case TypeDate:
		return coerceDate(v)
	case TypeUnixDate:
		return coerceUnixDate(v)
	default:
		return nil, fmt.Errorf("unsupported column type %q", typ)
	}
}

func coerceInt(v any) (any, error) {
	switch value := v.(type) {
	case int64:
		return value, nil
	case int:
		return int64(value), nil
	case float64:
		return int64(value), nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as int: %w", value, err)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to int", v)
	}
}

func coerceFloat(v any) (any, error) {
	switch value := v.(type) {
	case float64:
		return value, nil
	case int64:
		return float64(value), nil
	case int:
		return float64(value), nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as float: %w", value, err)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to float", v)
	}
}

func coerceDate(v any) (any, error) {
	switch value := v.(type) {
	case time.Time:
		return value, nil
	case string:
		trimmed := strings.TrimSpace(value)
		for _, layout := range mixedDateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed, nil
			}
		}
		return nil, fmt.Errorf("parse %q as date: no layout matched", value)
	default:
		return nil, fmt.Errorf("cannot convert %T to date", v)
	}
}

func coerceUnixDate(v any) (any, error) {
	switch value := v.(type) {
	case time.Time:
		return value, nil
	case float64:
		return time.Unix(int64(value), 0).UTC(), nil
	case int64:
		return time.Unix(value, 0).UTC(), nil
	case int:
		return time.Unix(int64(value), 0).UTC(), nil
	case string:
		seconds, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as epoch seconds: %w", value, err)
		}
		return time.Unix(seconds, 0).UTC(), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to epoch seconds", v)
	}
}

// FormatCell renders one cell value for display or text export.
func FormatCell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case time.Time:
		return value.Format(time.RFC3339)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprint(value)
	}
}

func lessValue(a, b any) bool {
	switch left := a.(type) {
	case int64:
		if right, ok := b.(int64); ok {
			return left < right
		}
	case float64:
		if right, ok := b.(float64); ok {
			return left < right
		}
	case string:
		if right, ok := b.(string); ok {
			return left < right
		}
	case time.Time:
		if right, ok := b.(time.Time); ok {
			return left.Before(right)
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}
