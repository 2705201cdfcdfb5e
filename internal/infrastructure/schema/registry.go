// Package schema implements gradebook.SchemaRegistry on top of gojsonschema.
// Schemas are compiled once when the registry is built and never change
// afterwards, so one Registry can serve concurrent imports.
package schema

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/gradebook/importer/internal/domain/gradebook"
	"github.com/gradebook/importer/internal/domain/shared"
)

//go:embed schemas/*.json
var builtin embed.FS

// Ensure Registry implements the interface.
var _ gradebook.SchemaRegistry = (*Registry)(nil)

// Registry holds precompiled schemas by name.
type Registry struct {
	schemas map[string]*gojsonschema.Schema
}

// NewRegistry compiles every definition. Keys are the names passed to
// Validate.
func NewRegistry(definitions map[string][]byte) (*Registry, error) {
	r := &Registry{schemas: make(map[string]*gojsonschema.Schema, len(definitions))}

	for name, def := range definitions {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(def))
		if err != nil {
			return nil, fmt.Errorf("schema: compile %s: %w", name, err)
		}
		r.schemas[name] = compiled
	}

	return r, nil
}

// Load builds a registry from the schemas embedded in the binary.
func Load() (*Registry, error) {
	return LoadFS(builtin, "schemas")
}

// LoadFS builds a registry from every *.json file in dir. A file's name
// without its extension becomes the schema name.
func LoadFS(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", dir, err)
	}

	definitions := make(map[string][]byte, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("schema: read %s: %w", entry.Name(), err)
		}
		definitions[strings.TrimSuffix(entry.Name(), ".json")] = data
	}

	if len(definitions) == 0 {
		return nil, fmt.Errorf("schema: no definitions found in %s", dir)
	}

	return NewRegistry(definitions)
}

// Validate checks doc against the named schema and returns every violation.
func (r *Registry) Validate(schemaName string, doc any) ([]gradebook.Violation, error) {
	compiled, ok := r.schemas[schemaName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownSchema, schemaName)
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema: validate %s: %w", schemaName, err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]gradebook.Violation, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		violations = append(violations, gradebook.Violation{
			Path:    resultErr.Context().String(),
			Message: resultErr.Description(),
		})
	}

	return violations, nil
}

// Has reports whether a schema is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.schemas[name]
	return ok
}

// Names returns the registered schema names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
