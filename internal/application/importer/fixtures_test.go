package importer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gradebook/importer/internal/domain/gradebook"
	"github.com/gradebook/importer/internal/infrastructure/schema"
)

// sequence hands out predictable ids: <prefix>1, <prefix>2, ...
type sequence struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func (s *sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s%d", s.prefix, s.n)
}

// acceptAll is a registry that never reports violations.
type acceptAll struct{}

func (acceptAll) Validate(string, any) ([]gradebook.Violation, error) {
	return nil, nil
}

func loadRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.Load()
	require.NoError(t, err)
	return reg
}

func newTestImporter(t *testing.T, opts ...Option) (*Importer, *sequence) {
	t.Helper()
	ids := &sequence{prefix: "id-"}
	return New(loadRegistry(t), ids, opts...), ids
}

func testUser() map[string]any {
	return map[string]any{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
		"settings":   `{"tour":true}`,
	}
}

func testExport(courses ...map[string]any) map[string]any {
	root := map[string]any{
		"version": "0",
		"user":    testUser(),
	}
	if len(courses) > 0 {
		list := make([]any, 0, len(courses))
		for _, c := range courses {
			list = append(list, c)
		}
		root["courses"] = list
	}
	return root
}

func testCourse(name, semester string, categories ...map[string]any) map[string]any {
	list := make([]any, 0, len(categories))
	for _, c := range categories {
		list = append(list, c)
	}
	return map[string]any{
		"name":         name,
		"semester":     semester,
		"credit_hours": float64(3),
		"cut":          `{"A":90,"B":80}`,
		"categories":   list,
	}
}

func testCategory(name string, grades ...map[string]any) map[string]any {
	list := make([]any, 0, len(grades))
	for _, g := range grades {
		list = append(list, g)
	}
	return map[string]any{
		"name":     name,
		"weight":   float64(50),
		"position": float64(100),
		"grades":   list,
	}
}

func testGrade(name string, value float64) map[string]any {
	return map[string]any{"name": name, "grade": value}
}

func kinds(queries []gradebook.Query) []gradebook.EntityKind {
	out := make([]gradebook.EntityKind, 0, len(queries))
	for _, q := range queries {
		out = append(out, q.Kind)
	}
	return out
}
