// Package gradebook contains the domain model of a Gradebook export import.
//
// The package defines:
//
//   - Document: a decoded export payload that has not been validated yet
//   - Export: a Document that passed schema validation (see ValidateDocument)
//   - User, Course, Category, Grade: typed views over the export's maps
//   - Query: one (entity kind, attributes) write instruction
//   - ImportOptions: per-import limits and the caller-supplied group id
//
// # Architectural Position
//
// Like every domain package it may only import the standard library and
// internal/domain/shared. Schema engines, id generators and datastores are
// described here as interfaces and implemented in internal/infrastructure.
//
// # Narrowing
//
// ValidateDocument is the only way to obtain an *Export:
//
//	doc, err := importer.Coerce(payload, "input")
//	if err != nil {
//	    return err
//	}
//	export, err := gradebook.ValidateDocument(registry, gradebook.ExportSchema, doc)
//	if err != nil {
//	    return err // *shared.ValidationError listing every bad path
//	}
//	user := export.User()
package gradebook
