package gradebook

import "github.com/gradebook/importer/internal/domain/shared"

// Default per-import limits.
const (
	DefaultMaxCoursesPerSemester  = 7
	DefaultMaxCategoriesPerCourse = 25
	DefaultMaxGradesPerCategory   = 40
)

// ImportOptions configures a single import. A zero limit selects the default.
type ImportOptions struct {
	// MaxCoursesPerSemester caps courses sharing one semester value.
	MaxCoursesPerSemester int

	// MaxCategoriesPerCourse caps categories inside one course.
	MaxCategoriesPerCourse int

	// MaxGradesPerCategory caps grades inside one category.
	MaxGradesPerCategory int

	// GID is the caller's group id, merged into the user query. Required.
	GID string
}

// WithDefaults returns a copy with every unset limit replaced by its default.
func (o ImportOptions) WithDefaults() ImportOptions {
	if o.MaxCoursesPerSemester == 0 {
		o.MaxCoursesPerSemester = DefaultMaxCoursesPerSemester
	}
	if o.MaxCategoriesPerCourse == 0 {
		o.MaxCategoriesPerCourse = DefaultMaxCategoriesPerCourse
	}
	if o.MaxGradesPerCategory == 0 {
		o.MaxGradesPerCategory = DefaultMaxGradesPerCategory
	}
	return o
}

// Validate checks the options.
func (o ImportOptions) Validate() error {
	if o.GID == "" {
		return shared.ErrMissingGID
	}
	if o.MaxCoursesPerSemester < 0 || o.MaxCategoriesPerCourse < 0 || o.MaxGradesPerCategory < 0 {
		return shared.ErrNegativeLimit
	}
	return nil
}
