package importer

import (
	"fmt"

	"github.com/gradebook/importer/internal/domain/gradebook"
	"github.com/gradebook/importer/internal/domain/shared"
)

// CourseLowerer turns one validated course into its course, category and
// grade queries, in that nesting order. ref identifies the course in error
// messages and uid is the owning user's id.
type CourseLowerer interface {
	LowerCourse(ref, uid string, course gradebook.Course, maxGradesPerCategory int) ([]gradebook.Query, error)
}

// CourseLowererFunc adapts a function to CourseLowerer.
type CourseLowererFunc func(ref, uid string, course gradebook.Course, maxGradesPerCategory int) ([]gradebook.Query, error)

// LowerCourse calls f.
func (f CourseLowererFunc) LowerCourse(ref, uid string, course gradebook.Course, maxGradesPerCategory int) ([]gradebook.Query, error) {
	return f(ref, uid, course, maxGradesPerCategory)
}

type courseLowerer struct {
	ids gradebook.IDGenerator
}

// NewCourseLowerer returns the default CourseLowerer. Every course,
// category and grade receives a fresh id from ids.
func NewCourseLowerer(ids gradebook.IDGenerator) CourseLowerer {
	return &courseLowerer{ids: ids}
}

func (l *courseLowerer) LowerCourse(ref, uid string, course gradebook.Course, maxGradesPerCategory int) ([]gradebook.Query, error) {
	categories, _ := course.Categories()

	size := 1 + len(categories)
	for j, category := range categories {
		grades := len(category.Grades())
		if grades > maxGradesPerCategory {
			return nil, shared.NewValidationErrorf("Category %s has too many grades", categoryRef(ref, j))
		}
		size += grades
	}

	courseID := l.ids.NewID()
	queries := make([]gradebook.Query, 0, size)
	queries = append(queries, gradebook.NewQuery(gradebook.KindCourse, map[string]any{
		"id":           courseID,
		"user_id":      uid,
		"semester":     course["semester"],
		"name":         course["name"],
		"credit_hours": course["credit_hours"],
		"cutoffs":      course["cut"],
	}))

	for _, category := range categories {
		categoryID := l.ids.NewID()
		queries = append(queries, gradebook.NewQuery(gradebook.KindCategory, map[string]any{
			"id":             categoryID,
			"user_id":        uid,
			"course_id":      courseID,
			"name":           category["name"],
			"weight":         category["weight"],
			"position":       category["position"],
			"dropped_grades": category["dropped"],
		}))

		for _, grade := range category.Grades() {
			queries = append(queries, gradebook.NewQuery(gradebook.KindGrade, map[string]any{
				"id":          l.ids.NewID(),
				"user_id":     uid,
				"course_id":   courseID,
				"category_id": categoryID,
				"name":        grade["name"],
				"grade":       grade["grade"],
			}))
		}
	}

	return queries, nil
}

func courseRef(i int) string {
	return fmt.Sprintf("courses[%d]", i)
}

func categoryRef(course string, j int) string {
	return fmt.Sprintf("%s.categories[%d]", course, j)
}
