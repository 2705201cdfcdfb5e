package gradebook

import (
	"fmt"
	"strings"

	"github.com/gradebook/importer/internal/domain/shared"
)

// ExportSchema is the registry name of the export document schema.
const ExportSchema = "gradebook-v0-import"

// Violation is a single schema failure reported by a SchemaRegistry.
type Violation struct {
	// Path locates the offending value, e.g. "(root).courses.0".
	Path string

	// Message is the schema engine's description of the failure.
	Message string
}

// SchemaRegistry validates documents against precompiled, named schemas.
// Implementations are built once at startup and must be safe for concurrent
// use; Validate must not mutate the registry.
type SchemaRegistry interface {
	// Validate returns every violation of doc against the named schema, in
	// the order the engine found them. An empty result means doc is valid.
	// The error is reserved for registry problems such as an unknown name.
	Validate(schemaName string, doc any) ([]Violation, error)
}

// ValidateDocument narrows a Document into an Export. It is the only way to
// obtain an Export; on failure every distinct violation path is reported
// once, in the order first seen.
func ValidateDocument(registry SchemaRegistry, schemaName string, doc Document) (*Export, error) {
	violations, err := registry.Validate(schemaName, doc.Value())
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", schemaName, err)
	}

	root, isObject := doc.Value().(map[string]any)
	if len(violations) == 0 && !isObject {
		violations = []Violation{{Path: "(root)", Message: "Invalid type. Expected: object"}}
	}

	if len(violations) > 0 {
		return nil, shared.NewValidationError(formatViolations(violations))
	}

	return &Export{root: root}, nil
}

func formatViolations(violations []Violation) string {
	var b strings.Builder
	b.WriteString("Export is invalid:")

	seen := make(map[string]struct{}, len(violations))
	for _, v := range violations {
		if _, dup := seen[v.Path]; dup {
			continue
		}
		seen[v.Path] = struct{}{}
		fmt.Fprintf(&b, "\n\t%s %s", v.Path, v.Message)
	}

	return b.String()
}
