package gradebook

import (
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENT & EXPORT
// ══════════════════════════════════════════════════════════════════════════════

// Document is a decoded export payload whose shape is still unknown.
type Document struct {
	value any
}

// NewDocument wraps an already decoded value.
func NewDocument(value any) Document {
	return Document{value: value}
}

// Value returns the wrapped tree.
func (d Document) Value() any {
	return d.value
}

// Export is a Document known to conform to the export schema. It shares the
// underlying maps with the Document it was narrowed from.
type Export struct {
	root map[string]any
}

// User returns the export's user section. Mutations are visible through the
// Export since no copy is made.
func (e *Export) User() User {
	user, _ := e.root["user"].(map[string]any)
	return User(user)
}

// Courses returns the export's courses in document order. The second result
// is false when the field is absent or is not an array.
func (e *Export) Courses() ([]Course, bool) {
	raw, ok := e.root["courses"].([]any)
	if !ok {
		return nil, false
	}

	courses := make([]Course, 0, len(raw))
	for _, item := range raw {
		course, _ := item.(map[string]any)
		courses = append(courses, Course(course))
	}
	return courses, true
}

// ══════════════════════════════════════════════════════════════════════════════
// VIEWS
// ══════════════════════════════════════════════════════════════════════════════

// User is the user section of an export.
type User map[string]any

// Settings returns the raw settings value, which may still be a JSON string.
func (u User) Settings() any {
	return u["settings"]
}

// HasValue reports whether key is present with a non-empty value.
// nil and "" count as absent.
func (u User) HasValue(key string) bool {
	v, ok := u[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString && s == "" {
		return false
	}
	return true
}

// Course is one element of the export's courses array.
type Course map[string]any

// Semester returns the grouping key used for the per-semester limit.
func (c Course) Semester() string {
	return stringify(c["semester"])
}

// Categories returns the course's categories. The second result is false
// when the field is absent or is not an array.
func (c Course) Categories() ([]Category, bool) {
	raw, ok := c["categories"].([]any)
	if !ok {
		return nil, false
	}

	categories := make([]Category, 0, len(raw))
	for _, item := range raw {
		category, _ := item.(map[string]any)
		categories = append(categories, Category(category))
	}
	return categories, true
}

// Category groups grades inside a course.
type Category map[string]any

// Grades returns the category's grades; absent means none.
func (c Category) Grades() []Grade {
	raw, _ := c["grades"].([]any)

	grades := make([]Grade, 0, len(raw))
	for _, item := range raw {
		grade, _ := item.(map[string]any)
		grades = append(grades, Grade(grade))
	}
	return grades
}

// Grade is a single scored item inside a category.
type Grade map[string]any

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
