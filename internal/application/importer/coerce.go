// Package importer lowers Gradebook exports into ordered write queries.
//
// The pipeline is coerce → schema validation → user validation → course
// walk. It performs no I/O, keeps all traversal state on the stack of a
// single call, and either returns every query of an import or an error.
package importer

import (
	"encoding/json"

	"github.com/gradebook/importer/internal/domain/gradebook"
	"github.com/gradebook/importer/internal/domain/shared"
)

// Coerce normalizes raw input into a Document. Text and bytes are decoded as
// JSON; any other value is assumed to be already structured and is returned
// unchanged. name identifies the input in error messages.
func Coerce(input any, name string) (gradebook.Document, error) {
	if name == "" {
		name = "input"
	}

	var data []byte
	switch v := input.(type) {
	case gradebook.Document:
		return v, nil
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return gradebook.NewDocument(input), nil
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return gradebook.Document{}, shared.WrapValidationError("Unable to parse "+name, err)
	}

	return gradebook.NewDocument(decoded), nil
}
