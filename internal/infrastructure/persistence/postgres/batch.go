package postgres

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gradebook/importer/internal/domain/gradebook"
)

// table describes where one entity kind is stored.
type table struct {
	name    string
	columns map[string]bool
	// integer columns receive JSON numbers, which decode as float64
	integers map[string]bool
}

func newTable(name string, columns []string, integers ...string) table {
	t := table{name: name, columns: make(map[string]bool), integers: make(map[string]bool)}
	for _, c := range columns {
		t.columns[c] = true
	}
	for _, c := range integers {
		t.integers[c] = true
	}
	return t
}

var tables = map[gradebook.EntityKind]table{
	gradebook.KindUser: newTable("users",
		[]string{"id", "gid", "first_name", "last_name", "email", "settings", "is_new", "created_at", "updated_at"}),
	gradebook.KindCourse: newTable("courses",
		[]string{"id", "user_id", "semester", "name", "credit_hours", "cutoffs"},
		"credit_hours"),
	gradebook.KindCategory: newTable("categories",
		[]string{"id", "user_id", "course_id", "name", "weight", "position", "dropped_grades"},
		"position", "dropped_grades"),
	gradebook.KindGrade: newTable("grades",
		[]string{"id", "user_id", "course_id", "category_id", "name", "grade"}),
}

// Statement renders q as a parameterized INSERT. Columns appear in sorted
// order so the same query always yields the same SQL.
func Statement(q gradebook.Query) (string, []any, error) {
	t, ok := tables[q.Kind]
	if !ok {
		return "", nil, fmt.Errorf("unknown entity kind %q", q.Kind)
	}
	if q.ID() == "" {
		return "", nil, fmt.Errorf("%s: id is required", q.Kind)
	}

	columns := make([]string, 0, len(q.Attributes))
	for column := range q.Attributes {
		if !t.columns[column] {
			return "", nil, fmt.Errorf("%s: unknown column %q", q.Kind, column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		value, err := columnValue(q.Attributes[column], t.integers[column])
		if err != nil {
			return "", nil, fmt.Errorf("%s %s: %w", q.Kind, column, err)
		}
		quoted[i] = pgx.Identifier{column}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = value
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{t.name}.Sanitize(),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)
	return sql, args, nil
}

// columnValue converts a decoded JSON value into a driver argument.
func columnValue(value any, integer bool) (any, error) {
	switch v := value.(type) {
	case nil, string, bool:
		return v, nil
	case float64:
		if !integer {
			return v, nil
		}
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%v is not an integer", v)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		// objects and arrays are stored as JSON text
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}
}

// BuildBatch queues one INSERT per query, preserving query order so parents
// are written before their children.
func BuildBatch(queries []gradebook.Query) (*pgx.Batch, error) {
	batch := &pgx.Batch{}
	for i, q := range queries {
		sql, args, err := Statement(q)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
		batch.Queue(sql, args...)
	}
	return batch, nil
}
