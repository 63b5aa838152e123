// Package http implements the REST API for Progress Hub.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/learnhub/progress-hub/internal/application/command"
	"github.com/learnhub/progress-hub/internal/application/query"
	"github.com/learnhub/progress-hub/internal/domain/progress"
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/pkg/logger"
)

// validate checks request DTOs against their struct tags.
var validate = validator.New()

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Progress Hub API",
		"version":     "v1",
		"description": "REST API for course enrollment and lesson progress tracking",
		"endpoints": map[string]string{
			"health":   "/health",
			"progress": "/api/v1/progress",
			"courses":  "/api/v1/courses",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	}
	code := http.StatusOK

	if s.deps.DatabaseHealth != nil {
		if err := s.deps.DatabaseHealth.Ping(r.Context()); err != nil {
			status["status"] = "unhealthy"
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			status["database"] = "ok"
		}
	}

	// Cache trouble degrades performance, not correctness. Report it but
	// stay healthy.
	if s.deps.CacheHealth != nil {
		if err := s.deps.CacheHealth.Ping(r.Context()); err != nil {
			status["cache"] = err.Error()
		} else {
			status["cache"] = "ok"
		}
	}

	writeJSON(w, code, status)
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.DatabaseHealth != nil {
		if err := s.deps.DatabaseHealth.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": err.Error(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleMetrics handles the metrics endpoint.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds": s.Uptime().Seconds(),
		"running":        s.IsRunning(),
	}

	if s.deps.EventBusMetrics != nil {
		metrics["event_bus"] = s.deps.EventBusMetrics.Snapshot()
	}

	writeJSON(w, http.StatusOK, metrics)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// createProgressRequest is the POST /api/v1/progress body.
type createProgressRequest struct {
	UserID    string `json:"user_id" validate:"required,uuid4"`
	LessonID  string `json:"lesson_id" validate:"required,uuid4"`
	RequestID string `json:"request_id" validate:"required,max=128"`
	Status    string `json:"status" validate:"required,oneof=pending complete failed"`
}

// progressResponse is the wire form of a progress row.
type progressResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	LessonID    string `json:"lesson_id"`
	Status      string `json:"status"`
	RequestID   string `json:"request_id"`
	CompletedAt string `json:"completed_at,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// handleCreateProgress handles POST /api/v1/progress
func (s *Server) handleCreateProgress(w http.ResponseWriter, r *http.Request) {
	var req createProgressRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.deps.CreateProgressHandler.Handle(r.Context(), command.CreateProgressCommand{
		UserID:    req.UserID,
		LessonID:  req.LessonID,
		RequestID: req.RequestID,
		Status:    req.Status,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}

	writeJSON(w, status, map[string]interface{}{
		"progress": toProgressResponse(result.Progress),
		"created":  result.Created,
		"replayed": result.Replayed,
		"no_op":    result.NoOp,
	})
}

// handleGetProgress handles GET /api/v1/progress.
// With lesson_id it returns the single row; with course_id it returns the
// user's per-lesson rows for that course.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID := getQueryParam(r, "user_id", "")

	if courseID := getQueryParam(r, "course_id", ""); courseID != "" {
		rows, err := s.deps.ListUserProgressHandler.Handle(r.Context(), query.ListUserProgressQuery{
			UserID:   userID,
			CourseID: courseID,
		})
		if err != nil {
			s.writeDomainError(w, err)
			return
		}

		result := make([]progressResponse, 0, len(rows))
		for _, p := range rows {
			result = append(result, toProgressResponse(p))
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"progress": result})
		return
	}

	p, err := s.deps.GetProgressHandler.Handle(r.Context(), query.GetProgressQuery{
		UserID:   userID,
		LessonID: getQueryParam(r, "lesson_id", ""),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProgressResponse(p))
}

// historyEntryResponse is the wire form of one history entry.
type historyEntryResponse struct {
	ID        string  `json:"id"`
	OldStatus *string `json:"old_status"`
	NewStatus string  `json:"new_status"`
	RequestID string  `json:"request_id,omitempty"`
	ChangedAt string  `json:"changed_at"`
}

// handleGetProgressHistory handles GET /api/v1/progress/history?user_id=...&lesson_id=...
func (s *Server) handleGetProgressHistory(w http.ResponseWriter, r *http.Request) {
	q := query.GetProgressHistoryQuery{
		UserID:   getQueryParam(r, "user_id", ""),
		LessonID: getQueryParam(r, "lesson_id", ""),
	}

	entries, err := s.deps.GetProgressHistoryHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	result := make([]historyEntryResponse, 0, len(entries))
	for _, e := range entries {
		item := historyEntryResponse{
			ID:        e.ID,
			NewStatus: string(e.NewStatus),
			RequestID: e.RequestID,
			ChangedAt: e.ChangedAt.Format(timeFormat),
		}
		if e.OldStatus != nil {
			old := string(*e.OldStatus)
			item.OldStatus = &old
		}
		result = append(result, item)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"history": result})
}

// handleProbeRequest handles GET /api/v1/progress/requests/{id}
func (s *Server) handleProbeRequest(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")

	exists, err := s.deps.CreateProgressHandler.IsIdempotentRequest(r.Context(), requestID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"request_id": requestID,
		"processed":  exists,
	})
}

// resetProgressRequest is the POST /api/v1/progress/reset body.
type resetProgressRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid4"`
	LessonID string `json:"lesson_id" validate:"required,uuid4"`
}

// handleResetProgress handles POST /api/v1/progress/reset
func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	var req resetProgressRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.deps.ResetProgressHandler.Handle(r.Context(), command.ResetProgressCommand{
		UserID:   req.UserID,
		LessonID: req.LessonID,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := map[string]interface{}{
		"progress": nil,
		"reset":    result.Reset,
	}
	if result.Progress != nil {
		resp["progress"] = toProgressResponse(result.Progress)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE & ENROLLMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListCourses handles GET /api/v1/courses
func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	q := query.ListCoursesQuery{
		Pagination: shared.NewPagination(
			getQueryParamInt(r, "page", 1),
			getQueryParamInt(r, "page_size", shared.DefaultPageSize),
		),
	}

	courses, err := s.deps.ListCoursesHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	result := make([]map[string]interface{}, 0, len(courses))
	for _, c := range courses {
		result = append(result, map[string]interface{}{
			"id":              c.Course.ID,
			"title":           string(c.Course.Title),
			"description":     c.Course.Description,
			"max_seats":       c.Course.MaxSeats,
			"enrolled_count":  c.EnrolledCount,
			"remaining_seats": c.RemainingSeats,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"courses": result})
}

// enrollRequest is the POST /api/v1/courses/{id}/enroll body.
type enrollRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

// handleEnroll handles POST /api/v1/courses/{id}/enroll
func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")

	var req enrollRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.deps.EnrollUserHandler.Handle(r.Context(), command.EnrollUserCommand{
		UserID:   req.UserID,
		CourseID: courseID,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"enrollment": map[string]interface{}{
			"id":          result.Enrollment.ID,
			"user_id":     result.Enrollment.UserID,
			"course_id":   result.Enrollment.CourseID,
			"enrolled_at": result.Enrollment.EnrolledAt.Format(timeFormat),
		},
		"seats_remaining": result.SeatsRemaining,
	})
}

// handleGetUserCourses handles GET /api/v1/users/{id}/courses
func (s *Server) handleGetUserCourses(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	courses, err := s.deps.GetUserCoursesHandler.Handle(r.Context(), query.GetUserCoursesQuery{UserID: userID})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}

// handleGetSummary handles GET /api/v1/users/{id}/courses/{courseID}/summary
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	q := query.GetProgressSummaryQuery{
		UserID:   r.PathValue("id"),
		CourseID: r.PathValue("courseID"),
	}

	summary, err := s.deps.GetProgressSummaryHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DECODING & ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// decodeAndValidate decodes the JSON body into dst and validates it.
// Writes the 400 response itself and returns false on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "validation_failed", "Request validation failed", err.Error())
		return false
	}

	return true
}

// statusForError maps a domain error to an HTTP status code.
// Status machine violations and input errors are the client's fault (400),
// missing aggregates are 404, and every conflict flavor (duplicate, capacity,
// request ID reuse, missing enrollment) is 409.
func statusForError(err error) int {
	var transition *shared.StatusTransitionError
	if errors.As(err, &transition) {
		return http.StatusBadRequest
	}

	switch {
	case shared.IsValidation(err):
		return http.StatusBadRequest
	case shared.IsNotFound(err):
		return http.StatusNotFound
	case shared.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// codeForStatus returns the machine-readable error code for a status.
func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	default:
		return "internal_error"
	}
}

// writeDomainError maps and writes a domain error response.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := statusForError(err)

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", logger.Err(err))
		writeJSONError(w, status, codeForStatus(status), "An unexpected error occurred")
		return
	}

	writeJSONError(w, status, codeForStatus(status), err.Error())
}

// toProgressResponse converts a progress entity to its wire form.
func toProgressResponse(p *progress.Progress) progressResponse {
	resp := progressResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		LessonID:  p.LessonID,
		Status:    string(p.Status),
		RequestID: p.RequestID,
		CreatedAt: p.CreatedAt.Format(timeFormat),
		UpdatedAt: p.UpdatedAt.Format(timeFormat),
	}
	if p.CompletedAt != nil {
		resp.CompletedAt = p.CompletedAt.Format(timeFormat)
	}
	return resp
}
