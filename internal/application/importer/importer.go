package importer

import (
	"time"

	"github.com/gradebook/importer/internal/domain/gradebook"
	"github.com/gradebook/importer/internal/domain/shared"
	"github.com/gradebook/importer/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// IMPORTER
// ══════════════════════════════════════════════════════════════════════════════

// Importer runs the lowering pipeline. It only holds read-only collaborators,
// so one Importer may serve any number of concurrent calls.
type Importer struct {
	schemas    gradebook.SchemaRegistry
	schemaName string
	ids        gradebook.IDGenerator
	courses    CourseLowerer
	clock      timeutil.Clock
}

// Option configures an Importer.
type Option func(*Importer)

// WithClock sets the clock used for timestamp backfilling.
func WithClock(clock timeutil.Clock) Option {
	return func(im *Importer) {
		if clock != nil {
			im.clock = clock
		}
	}
}

// WithCourseLowerer replaces the default course lowering.
func WithCourseLowerer(lowerer CourseLowerer) Option {
	return func(im *Importer) {
		if lowerer != nil {
			im.courses = lowerer
		}
	}
}

// WithSchemaName validates exports against a schema other than
// gradebook.ExportSchema.
func WithSchemaName(name string) Option {
	return func(im *Importer) {
		if name != "" {
			im.schemaName = name
		}
	}
}

// New creates an Importer.
func New(schemas gradebook.SchemaRegistry, ids gradebook.IDGenerator, opts ...Option) *Importer {
	im := &Importer{
		schemas:    schemas,
		schemaName: gradebook.ExportSchema,
		ids:        ids,
		clock:      timeutil.SystemClock,
	}

	for _, opt := range opts {
		opt(im)
	}

	if im.courses == nil {
		im.courses = NewCourseLowerer(ids)
	}

	return im
}

// SchemaName returns the schema exports are validated against.
func (im *Importer) SchemaName() string {
	return im.schemaName
}

// Validate coerces input and narrows it into an Export. It does not touch
// the user section.
func (im *Importer) Validate(input any) (*gradebook.Export, error) {
	doc, err := Coerce(input, "input")
	if err != nil {
		return nil, err
	}

	return gradebook.ValidateDocument(im.schemas, im.schemaName, doc)
}

// GenerateQueries lowers an export into its write queries: the user first,
// then every course followed by its categories and their grades, in document
// order. Any violation fails the whole call and no queries are returned.
func (im *Importer) GenerateQueries(input any, opts gradebook.ImportOptions) ([]gradebook.Query, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()

	export, err := im.Validate(input)
	if err != nil {
		return nil, err
	}

	user := export.User()
	if err := ValidateUser(user, im.clock()); err != nil {
		return nil, err
	}

	uid := im.ids.NewID()
	queries := []gradebook.Query{userQuery(uid, opts.GID, user)}

	courses, ok := export.Courses()
	if !ok {
		return queries, nil
	}

	semesters := make(map[string]int)

	for i, course := range courses {
		ref := courseRef(i)
		semester := course.Semester()

		semesters[semester]++
		if semesters[semester] > opts.MaxCoursesPerSemester {
			return nil, shared.NewValidationErrorf("Semester %s has too many courses", semester)
		}

		if categories, ok := course.Categories(); ok && len(categories) > opts.MaxCategoriesPerCourse {
			return nil, shared.NewValidationErrorf("Course %s has too many categories", ref)
		}

		lowered, err := im.courses.LowerCourse(ref, uid, course, opts.MaxGradesPerCategory)
		if err != nil {
			return nil, err
		}
		queries = append(queries, lowered...)
	}

	return queries, nil
}

// userQuery copies the user's fields and sets id and gid last so they win
// over same-named fields from the export.
func userQuery(uid, gid string, user gradebook.User) gradebook.Query {
	attributes := make(map[string]any, len(user)+2)
	for k, v := range user {
		attributes[k] = v
	}
	attributes["id"] = uid
	attributes["gid"] = gid

	return gradebook.NewQuery(gradebook.KindUser, attributes)
}

// Now returns the importer's current time; used by callers that report
// import durations against the same clock.
func (im *Importer) Now() time.Time {
	return im.clock()
}
