package gradebook

// IDGenerator produces primary keys for emitted queries. Every call must
// return a new value; values have one fixed, serializable shape.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

// NewID calls f.
func (f IDGeneratorFunc) NewID() string {
	return f()
}
