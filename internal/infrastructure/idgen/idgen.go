// Package idgen generates primary keys for imported entities.
package idgen

import (
	"github.com/google/uuid"

	"github.com/gradebook/importer/internal/domain/gradebook"
)

// Ensure Generator implements the interface.
var _ gradebook.IDGenerator = (*Generator)(nil)

// Generator produces time-ordered random identifiers (UUIDv7). It has no
// state of its own and is safe for concurrent use.
type Generator struct{}

// New creates a Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a new UUIDv7 in its canonical string form.
func (g *Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
