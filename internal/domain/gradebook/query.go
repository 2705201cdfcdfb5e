package gradebook

import (
	"encoding/json"
	"fmt"
)

// EntityKind tags the table a Query writes to.
type EntityKind string

const (
	KindUser     EntityKind = "user"
	KindCourse   EntityKind = "course"
	KindCategory EntityKind = "category"
	KindGrade    EntityKind = "grade"
)

// IsValid checks if the kind is one the importer emits.
func (k EntityKind) IsValid() bool {
	switch k {
	case KindUser, KindCourse, KindCategory, KindGrade:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k EntityKind) String() string {
	return string(k)
}

// Query is one write instruction. Queries are not modified after they are
// emitted; the caller owns them once GenerateQueries returns.
type Query struct {
	Kind       EntityKind
	Attributes map[string]any
}

// NewQuery creates a Query.
func NewQuery(kind EntityKind, attributes map[string]any) Query {
	return Query{Kind: kind, Attributes: attributes}
}

// ID returns the "id" attribute, or "" if it is missing.
func (q Query) ID() string {
	id, _ := q.Attributes["id"].(string)
	return id
}

// MarshalJSON encodes the query as the pair ["kind", {attributes}].
func (q Query) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{q.Kind, q.Attributes})
}

// UnmarshalJSON decodes the pair form written by MarshalJSON.
func (q *Query) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("query: expected [kind, attributes], got %d elements", len(pair))
	}

	var kind EntityKind
	if err := json.Unmarshal(pair[0], &kind); err != nil {
		return fmt.Errorf("query kind: %w", err)
	}
	if !kind.IsValid() {
		return fmt.Errorf("query kind: unknown %q", kind)
	}

	var attributes map[string]any
	if err := json.Unmarshal(pair[1], &attributes); err != nil {
		return fmt.Errorf("query attributes: %w", err)
	}

	q.Kind = kind
	q.Attributes = attributes
	return nil
}

// CountByKind tallies queries per entity kind.
func CountByKind(queries []Query) map[EntityKind]int {
	counts := make(map[EntityKind]int, 4)
	for _, q := range queries {
		counts[q.Kind]++
	}
	return counts
}
