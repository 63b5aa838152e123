package validation

import (
	"context"
	"fmt"

	"github.com/learnhub/progress-hub/internal/domain/course"
	"github.com/learnhub/progress-hub/internal/domain/progress"
	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// PrerequisiteChecker gates lesson access by course order: every lesson with a
// smaller order index must already carry a terminal outcome (complete or
// failed) for the user.
type PrerequisiteChecker struct {
	lessons  course.LessonRepository
	progress progress.Repository
}

// NewPrerequisiteChecker creates a new PrerequisiteChecker.
func NewPrerequisiteChecker(lessons course.LessonRepository, progressRepo progress.Repository) *PrerequisiteChecker {
	return &PrerequisiteChecker{
		lessons:  lessons,
		progress: progressRepo,
	}
}

// Check returns nil when all prerequisites of the lesson are satisfied for the
// user, or shared.PrerequisitesNotMetError naming the FIRST unsatisfied lesson
// in course order. The first lesson of a course always passes.
func (c *PrerequisiteChecker) Check(ctx context.Context, userID string, lesson *course.Lesson) error {
	if lesson.IsFirst() {
		return nil
	}

	required, err := c.lessons.ListBefore(ctx, lesson.CourseID, lesson.OrderIndex)
	if err != nil {
		return fmt.Errorf("prerequisites: list lessons: %w", err)
	}
	if len(required) == 0 {
		return nil
	}

	rows, err := c.progress.ListByUserAndCourse(ctx, userID, lesson.CourseID)
	if err != nil {
		return fmt.Errorf("prerequisites: list progress: %w", err)
	}

	byLesson := make(map[string]progress.Status, len(rows))
	for _, row := range rows {
		byLesson[row.LessonID] = row.Status
	}

	// required is ordered by order_index, so the first miss is the earliest one.
	for _, prereq := range required {
		status, ok := byLesson[prereq.ID]
		if !ok || !status.SatisfiesPrerequisite() {
			return &shared.PrerequisitesNotMetError{
				UserID:            userID,
				LessonID:          lesson.ID,
				PrerequisiteID:    prereq.ID,
				PrerequisiteTitle: prereq.Title,
			}
		}
	}

	return nil
}
