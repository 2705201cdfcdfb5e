package importer

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/gradebook/importer/internal/domain/gradebook"
	"github.com/gradebook/importer/internal/domain/shared"
	"github.com/gradebook/importer/pkg/timeutil"
)

var defaultOptions = gradebook.ImportOptions{GID: "group-1"}

func TestGenerateQueries_NoCourses(t *testing.T) {
	im, _ := newTestImporter(t)

	queries, err := im.GenerateQueries(testExport(), defaultOptions)
	require.NoError(t, err)

	require.Len(t, queries, 1)
	assert.Equal(t, gradebook.KindUser, queries[0].Kind)
	assert.Equal(t, "id-1", queries[0].ID())
	assert.Equal(t, "group-1", queries[0].Attributes["gid"])
	assert.Equal(t, "ada@example.com", queries[0].Attributes["email"])
}

func TestGenerateQueries_AcceptsJSONText(t *testing.T) {
	im, _ := newTestImporter(t)

	data, err := json.Marshal(testExport(testCourse("CS 101", "2020F")))
	require.NoError(t, err)

	fromBytes, err := im.GenerateQueries(data, defaultOptions)
	require.NoError(t, err)
	assert.Equal(t, []gradebook.EntityKind{gradebook.KindUser, gradebook.KindCourse}, kinds(fromBytes))

	fromString, err := im.GenerateQueries(string(data), defaultOptions)
	require.NoError(t, err)
	assert.Len(t, fromString, 2)
}

func TestGenerateQueries_ExplicitFieldsOverrideUserFields(t *testing.T) {
	im, _ := newTestImporter(t)

	export := testExport()
	user := export["user"].(map[string]any)
	user["id"] = "from-export"
	user["gid"] = "other-group"

	queries, err := im.GenerateQueries(export, defaultOptions)
	require.NoError(t, err)

	assert.Equal(t, "id-1", queries[0].Attributes["id"])
	assert.Equal(t, "group-1", queries[0].Attributes["gid"])
}

func TestGenerateQueries_BackfillsUserInPlace(t *testing.T) {
	im, _ := newTestImporter(t, WithClock(timeutil.Fixed(fixedNow)))

	export := testExport()
	queries, err := im.GenerateQueries(export, defaultOptions)
	require.NoError(t, err)

	user := export["user"].(map[string]any)
	assert.Equal(t, "2024-03-01T10:11:12.000Z", user["created_at"])
	assert.Equal(t, "2024-03-01T10:11:12.000Z", queries[0].Attributes["updated_at"])
}

func TestGenerateQueries_Order(t *testing.T) {
	im, _ := newTestImporter(t)

	export := testExport(
		testCourse("CS 101", "2020F", testCategory("Exams", testGrade("Midterm", 91))),
		testCourse("MATH 2", "2021S", testCategory("Quizzes", testGrade("Quiz 1", 80))),
	)

	queries, err := im.GenerateQueries(export, defaultOptions)
	require.NoError(t, err)

	assert.Equal(t, []gradebook.EntityKind{
		gradebook.KindUser,
		gradebook.KindCourse, gradebook.KindCategory, gradebook.KindGrade,
		gradebook.KindCourse, gradebook.KindCategory, gradebook.KindGrade,
	}, kinds(queries))

	assert.Equal(t, "CS 101", queries[1].Attributes["name"])
	assert.Equal(t, "Exams", queries[2].Attributes["name"])
	assert.Equal(t, "Midterm", queries[3].Attributes["name"])
	assert.Equal(t, "MATH 2", queries[4].Attributes["name"])
	assert.Equal(t, "Quizzes", queries[5].Attributes["name"])
	assert.Equal(t, "Quiz 1", queries[6].Attributes["name"])
}

func TestGenerateQueries_ChildrenReferenceParents(t *testing.T) {
	im, _ := newTestImporter(t)

	export := testExport(
		testCourse("CS 101", "2020F",
			testCategory("Exams", testGrade("Midterm", 91), testGrade("Final", 88)),
		),
	)

	queries, err := im.GenerateQueries(export, defaultOptions)
	require.NoError(t, err)
	require.Len(t, queries, 5)

	uid := queries[0].ID()
	courseID := queries[1].ID()
	categoryID := queries[2].ID()

	for _, q := range queries[1:] {
		assert.Equal(t, uid, q.Attributes["user_id"], "%s query must reference the user", q.Kind)
	}

	assert.Equal(t, courseID, queries[2].Attributes["course_id"])
	for _, q := range queries[3:] {
		assert.Equal(t, courseID, q.Attributes["course_id"])
		assert.Equal(t, categoryID, q.Attributes["category_id"])
	}

	assert.Equal(t, "2020F", queries[1].Attributes["semester"])
	assert.Equal(t, `{"A":90,"B":80}`, queries[1].Attributes["cutoffs"])
	assert.Equal(t, float64(91), queries[3].Attributes["grade"])
}

func TestGenerateQueries_SemesterLimit(t *testing.T) {
	build := func(n int) map[string]any {
		courses := make([]map[string]any, 0, n)
		for i := 0; i < n; i++ {
			courses = append(courses, testCourse(fmt.Sprintf("C%d", i), "2020F"))
		}
		return testExport(courses...)
	}

	t.Run("seven courses share a semester", func(t *testing.T) {
		im, _ := newTestImporter(t)

		queries, err := im.GenerateQueries(build(7), defaultOptions)
		require.NoError(t, err)
		assert.Len(t, queries, 8)
	})

	t.Run("eight courses share a semester", func(t *testing.T) {
		im, _ := newTestImporter(t)

		queries, err := im.GenerateQueries(build(8), defaultOptions)
		require.Error(t, err)
		assert.Nil(t, queries)
		assert.True(t, shared.IsValidation(err))
		assert.Equal(t, "Semester 2020F has too many courses", err.Error())
	})

	t.Run("custom limit", func(t *testing.T) {
		im, _ := newTestImporter(t)

		opts := defaultOptions
		opts.MaxCoursesPerSemester = 2

		_, err := im.GenerateQueries(build(3), opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2020F")
	})

	t.Run("distinct semesters are counted separately", func(t *testing.T) {
		im, _ := newTestImporter(t)

		opts := defaultOptions
		opts.MaxCoursesPerSemester = 1

		queries, err := im.GenerateQueries(testExport(
			testCourse("A", "2020F"),
			testCourse("B", "2021S"),
			testCourse("C", "2021U"),
		), opts)
		require.NoError(t, err)
		assert.Len(t, queries, 4)
	})
}

func TestGenerateQueries_CategoryLimit(t *testing.T) {
	categories := func(n int) []map[string]any {
		out := make([]map[string]any, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, testCategory(fmt.Sprintf("Cat %d", i)))
		}
		return out
	}

	im, _ := newTestImporter(t)

	queries, err := im.GenerateQueries(testExport(testCourse("A", "2020F", categories(25)...)), defaultOptions)
	require.NoError(t, err)
	assert.Len(t, queries, 27)

	queries, err = im.GenerateQueries(testExport(
		testCourse("A", "2020F"),
		testCourse("B", "2020F", categories(26)...),
	), defaultOptions)
	require.Error(t, err)
	assert.Nil(t, queries)
	assert.Equal(t, "Course courses[1] has too many categories", err.Error())
}

func TestGenerateQueries_GradeLimit(t *testing.T) {
	im, _ := newTestImporter(t)

	opts := defaultOptions
	opts.MaxGradesPerCategory = 2

	export := testExport(testCourse("A", "2020F",
		testCategory("Fine", testGrade("1", 1), testGrade("2", 2)),
		testCategory("Full", testGrade("1", 1), testGrade("2", 2), testGrade("3", 3)),
	))

	queries, err := im.GenerateQueries(export, opts)
	require.Error(t, err)
	assert.Nil(t, queries)
	assert.True(t, shared.IsValidation(err))
	assert.Equal(t, "Category courses[0].categories[1] has too many grades", err.Error())
}

func TestGenerateQueries_SchemaViolationsListedOncePerPath(t *testing.T) {
	im, _ := newTestImporter(t)

	broken := testCourse("A", "2020F")
	delete(broken, "name")
	delete(broken, "semester")

	_, err := im.GenerateQueries(testExport(broken), defaultOptions)
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "Export is invalid:"))
	assert.Equal(t, 1, strings.Count(msg, "\t(root).courses.0 "), msg)
	assert.Contains(t, msg, "is required")
}

func TestGenerateQueries_SchemaReportsEveryPath(t *testing.T) {
	im, _ := newTestImporter(t)

	export := testExport(testCourse("A", "bad"), testCourse("B", "2020F"))
	user := export["user"].(map[string]any)
	delete(user, "email")
	export["courses"].([]any)[1].(map[string]any)["credit_hours"] = "three"

	_, err := im.GenerateQueries(export, defaultOptions)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "(root).user ")
	assert.Contains(t, msg, "(root).courses.0.semester ")
	assert.Contains(t, msg, "(root).courses.1.credit_hours ")
}

func TestGenerateQueries_MalformedInput(t *testing.T) {
	im, _ := newTestImporter(t)

	_, err := im.GenerateQueries("{", defaultOptions)
	require.Error(t, err)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Unable to parse input", verr.Message)
	assert.NotNil(t, verr.Cause)
}

func TestGenerateQueries_RejectsUnknownSettings(t *testing.T) {
	im, ids := newTestImporter(t)

	export := testExport()
	export["user"].(map[string]any)["settings"] = map[string]any{"badKey": true}

	_, err := im.GenerateQueries(export, defaultOptions)
	require.Error(t, err)
	assert.Equal(t, "Unknown setting: badKey", err.Error())
	assert.Zero(t, ids.n, "no id is generated for a rejected user")
}

func TestGenerateQueries_RequiresGID(t *testing.T) {
	im, _ := newTestImporter(t)

	_, err := im.GenerateQueries(testExport(), gradebook.ImportOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrMissingGID)
	assert.True(t, shared.IsValidation(err))
}

func TestGenerateQueries_CoursesNotAnArray(t *testing.T) {
	im := New(acceptAll{}, &sequence{prefix: "id-"})

	export := testExport()
	export["courses"] = "nope"

	queries, err := im.GenerateQueries(export, defaultOptions)
	require.NoError(t, err)
	assert.Equal(t, []gradebook.EntityKind{gradebook.KindUser}, kinds(queries))
}

func TestGenerateQueries_DelegatesToCourseLowerer(t *testing.T) {
	type call struct {
		ref, uid  string
		semester  string
		maxGrades int
	}
	var calls []call

	lowerer := CourseLowererFunc(func(ref, uid string, course gradebook.Course, maxGrades int) ([]gradebook.Query, error) {
		calls = append(calls, call{ref: ref, uid: uid, semester: course.Semester(), maxGrades: maxGrades})
		return []gradebook.Query{gradebook.NewQuery(gradebook.KindCourse, map[string]any{"ref": ref})}, nil
	})

	im, _ := newTestImporter(t, WithCourseLowerer(lowerer))

	opts := defaultOptions
	opts.MaxGradesPerCategory = 3

	queries, err := im.GenerateQueries(testExport(testCourse("A", "2020F"), testCourse("B", "2021S")), opts)
	require.NoError(t, err)
	require.Len(t, queries, 3)

	assert.Equal(t, []call{
		{ref: "courses[0]", uid: "id-1", semester: "2020F", maxGrades: 3},
		{ref: "courses[1]", uid: "id-1", semester: "2021S", maxGrades: 3},
	}, calls)
}

func TestGenerateQueries_CourseLowererErrorAborts(t *testing.T) {
	boom := shared.NewValidationError("Category courses[0].categories[0] has too many grades")
	lowerer := CourseLowererFunc(func(string, string, gradebook.Course, int) ([]gradebook.Query, error) {
		return nil, boom
	})

	im, _ := newTestImporter(t, WithCourseLowerer(lowerer))

	queries, err := im.GenerateQueries(testExport(testCourse("A", "2020F")), defaultOptions)
	assert.Nil(t, queries)
	assert.ErrorIs(t, err, boom)
}

func TestGenerateQueries_UnknownSchema(t *testing.T) {
	im, _ := newTestImporter(t, WithSchemaName("gradebook-v9-import"))

	_, err := im.GenerateQueries(testExport(), defaultOptions)
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
	assert.False(t, shared.IsValidation(err))
}

func TestGenerateQueries_ConcurrentCallsDoNotShareCounters(t *testing.T) {
	im, _ := newTestImporter(t)

	var g errgroup.Group
	results := make([][]gradebook.Query, 16)

	for n := range results {
		n := n
		g.Go(func() error {
			courses := make([]map[string]any, 0, 7)
			for i := 0; i < 7; i++ {
				courses = append(courses, testCourse(fmt.Sprintf("C%d", i), "2020F"))
			}

			queries, err := im.GenerateQueries(testExport(courses...), gradebook.ImportOptions{GID: fmt.Sprintf("g%d", n)})
			if err != nil {
				return err
			}
			results[n] = queries
			return nil
		})
	}

	require.NoError(t, g.Wait())

	seen := make(map[string]bool)
	for n, queries := range results {
		require.Len(t, queries, 8)
		assert.Equal(t, fmt.Sprintf("g%d", n), queries[0].Attributes["gid"])

		uid := queries[0].ID()
		assert.False(t, seen[uid], "user ids must be unique per call")
		seen[uid] = true
	}
}
