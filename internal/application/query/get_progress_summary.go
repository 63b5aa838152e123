// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/learnhub/progress-hub/internal/application/validation"
	"github.com/learnhub/progress-hub/internal/domain/progress"
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS SUMMARY QUERY
// Aggregates a user's standing in one course: completed count, total lessons,
// completion percent, and the per-lesson status list. Lessons without a
// progress row count as pending.
// ══════════════════════════════════════════════════════════════════════════════

// LessonProgress is one lesson's status within a summary, in course order.
type LessonProgress struct {
	LessonID   string `json:"lesson_id"`
	Title      string `json:"title"`
	OrderIndex int    `json:"order_index"`
	Status     string `json:"status"`
}

// ProgressSummary is the aggregated view of a user's progress in a course.
type ProgressSummary struct {
	UserID           string           `json:"user_id"`
	CourseID         string           `json:"course_id"`
	CompletedLessons int              `json:"completed_lessons"`
	TotalLessons     int              `json:"total_lessons"`
	Percent          float64          `json:"percent"`
	Lessons          []LessonProgress `json:"lessons"`
}

// SummaryCache caches computed summaries. Implementations live in the
// infrastructure layer; a nil cache disables caching entirely.
type SummaryCache interface {
	// Get returns the cached summary or shared.ErrNotFound on a miss.
	Get(ctx context.Context, userID, courseID string) (*ProgressSummary, error)

	// Set stores the summary under its user and course key.
	Set(ctx context.Context, summary *ProgressSummary) error

	// Invalidate drops the cached summary for the user and course.
	Invalidate(ctx context.Context, userID, courseID string) error
}

// GetProgressSummaryQuery contains the query parameters.
type GetProgressSummaryQuery struct {
	UserID   string
	CourseID string
}

// Validate validates the query.
func (q GetProgressSummaryQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_progress_summary: user_id is required")
	}
	if q.CourseID == "" {
		return errors.New("get_progress_summary: course_id is required")
	}
	return nil
}

// GetProgressSummaryHandler handles the GetProgressSummaryQuery.
type GetProgressSummaryHandler struct {
	validator    *validation.Service
	progressRepo progress.Repository
	cache        SummaryCache
	logger       *logger.Logger
}

// NewGetProgressSummaryHandler creates a new GetProgressSummaryHandler.
// The cache may be nil.
func NewGetProgressSummaryHandler(
	validator *validation.Service,
	progressRepo progress.Repository,
	cache SummaryCache,
	log *logger.Logger,
) *GetProgressSummaryHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetProgressSummaryHandler{
		validator:    validator,
		progressRepo: progressRepo,
		cache:        cache,
		logger:       log,
	}
}

// Handle executes the query. Cache errors degrade to a database read.
func (h *GetProgressSummaryHandler) Handle(ctx context.Context, q GetProgressSummaryQuery) (*ProgressSummary, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("progress", "Summary", shared.ErrInvalidInput, "validation failed", err)
	}

	if h.cache != nil {
		cached, err := h.cache.Get(ctx, q.UserID, q.CourseID)
		if err == nil {
			return cached, nil
		}
		if !shared.IsNotFound(err) {
			h.logger.Warn("summary cache read failed",
				logger.Err(err),
				logger.UserID(q.UserID),
				logger.CourseID(q.CourseID),
			)
		}
	}

	summary, err := h.compute(ctx, q)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, summary); err != nil {
			h.logger.Warn("summary cache write failed",
				logger.Err(err),
				logger.UserID(q.UserID),
				logger.CourseID(q.CourseID),
			)
		}
	}

	return summary, nil
}

func (h *GetProgressSummaryHandler) compute(ctx context.Context, q GetProgressSummaryQuery) (*ProgressSummary, error) {
	if _, err := h.validator.User(ctx, q.UserID); err != nil {
		return nil, err
	}
	if _, err := h.validator.Course(ctx, q.CourseID); err != nil {
		return nil, err
	}

	lessons, err := h.validator.CourseLessons(ctx, q.CourseID)
	if err != nil {
		return nil, fmt.Errorf("get_progress_summary: list lessons: %w", err)
	}

	rows, err := h.progressRepo.ListByUserAndCourse(ctx, q.UserID, q.CourseID)
	if err != nil {
		return nil, fmt.Errorf("get_progress_summary: list progress: %w", err)
	}

	byLesson := make(map[string]progress.Status, len(rows))
	for _, row := range rows {
		byLesson[row.LessonID] = row.Status
	}

	summary := &ProgressSummary{
		UserID:       q.UserID,
		CourseID:     q.CourseID,
		TotalLessons: len(lessons),
		Lessons:      make([]LessonProgress, 0, len(lessons)),
	}

	for _, l := range lessons {
		status, ok := byLesson[l.ID]
		if !ok {
			status = progress.StatusPending
		}
		if status == progress.StatusComplete {
			summary.CompletedLessons++
		}
		summary.Lessons = append(summary.Lessons, LessonProgress{
			LessonID:   l.ID,
			Title:      l.Title,
			OrderIndex: l.OrderIndex,
			Status:     string(status),
		})
	}

	if summary.TotalLessons > 0 {
		pct := float64(summary.CompletedLessons) / float64(summary.TotalLessons) * 100
		summary.Percent = math.Round(pct*100) / 100
	}

	return summary, nil
}
