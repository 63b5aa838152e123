package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/progress-hub/internal/domain/progress"
	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS STORE IMPLEMENTATION
// Implements progress.Repository, progress.HistoryRepository and
// progress.Atomic. The unique constraints on (user_id, lesson_id) and on
// request_id back the idempotency contract; the TxStore makes the row write
// and its history entry commit together.
// ══════════════════════════════════════════════════════════════════════════════

const progressColumns = `id, user_id, lesson_id, status, request_id, completed_at, created_at, updated_at`

// ProgressStore implements progress reads and transactional writes
// for PostgreSQL.
type ProgressStore struct {
	conn *Connection
}

var (
	_ progress.Repository        = (*ProgressStore)(nil)
	_ progress.HistoryRepository = (*ProgressStore)(nil)
	_ progress.Atomic            = (*ProgressStore)(nil)
	_ progress.TxStore           = (*progressTx)(nil)
)

// NewProgressStore creates a new ProgressStore.
func NewProgressStore(conn *Connection) *ProgressStore {
	return &ProgressStore{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// GetByID returns a progress row by ID.
func (s *ProgressStore) GetByID(ctx context.Context, id string) (*progress.Progress, error) {
	query := `SELECT ` + progressColumns + ` FROM progress WHERE id = $1`

	row := s.conn.QueryRow(ctx, query, id)
	return scanProgress(row)
}

// GetByRequestID returns the progress row created by a request ID.
func (s *ProgressStore) GetByRequestID(ctx context.Context, requestID string) (*progress.Progress, error) {
	query := `SELECT ` + progressColumns + ` FROM progress WHERE request_id = $1`

	row := s.conn.QueryRow(ctx, query, requestID)
	return scanProgress(row)
}

// GetByUserAndLesson returns the user's progress row for a lesson.
func (s *ProgressStore) GetByUserAndLesson(ctx context.Context, userID, lessonID string) (*progress.Progress, error) {
	query := `SELECT ` + progressColumns + ` FROM progress WHERE user_id = $1 AND lesson_id = $2`

	row := s.conn.QueryRow(ctx, query, userID, lessonID)
	return scanProgress(row)
}

// ListByUserAndCourse returns the user's progress rows for a course, in
// lesson order.
func (s *ProgressStore) ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]*progress.Progress, error) {
	query := `
		SELECT p.id, p.user_id, p.lesson_id, p.status, p.request_id,
			   p.completed_at, p.created_at, p.updated_at
		FROM progress p
		JOIN lessons l ON l.id = p.lesson_id
		WHERE p.user_id = $1 AND l.course_id = $2
		ORDER BY l.order_index
	`

	rows, err := s.conn.Query(ctx, query, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer rows.Close()

	result := make([]*progress.Progress, 0)
	for rows.Next() {
		p, err := scanProgressFromRows(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// ExistsByRequestID checks whether a request ID already created a row.
func (s *ProgressStore) ExistsByRequestID(ctx context.Context, requestID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM progress WHERE request_id = $1)`

	var exists bool
	if err := s.conn.QueryRow(ctx, query, requestID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check request id: %w", err)
	}
	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// History reads
// ─────────────────────────────────────────────────────────────────────────────

const historyColumns = `id, progress_id, user_id, lesson_id, old_status, new_status, request_id, changed_at`

// ListByUserAndLesson returns history entries for a user and lesson, oldest first.
func (s *ProgressStore) ListByUserAndLesson(ctx context.Context, userID, lessonID string) ([]progress.HistoryEntry, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM progress_history
		WHERE user_id = $1 AND lesson_id = $2
		ORDER BY changed_at
	`

	return s.queryHistory(ctx, query, userID, lessonID)
}

// ListByProgress returns history entries for a progress row, oldest first.
func (s *ProgressStore) ListByProgress(ctx context.Context, progressID string) ([]progress.HistoryEntry, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM progress_history
		WHERE progress_id = $1
		ORDER BY changed_at
	`

	return s.queryHistory(ctx, query, progressID)
}

func (s *ProgressStore) queryHistory(ctx context.Context, query string, args ...interface{}) ([]progress.HistoryEntry, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := make([]progress.HistoryEntry, 0)
	for rows.Next() {
		var e progress.HistoryEntry
		var oldStatus *string
		var newStatus string

		if err := rows.Scan(&e.ID, &e.ProgressID, &e.UserID, &e.LessonID,
			&oldStatus, &newStatus, &e.RequestID, &e.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		if oldStatus != nil {
			st := progress.Status(*oldStatus)
			e.OldStatus = &st
		}
		e.NewStatus = progress.Status(newStatus)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Transactional writes
// ─────────────────────────────────────────────────────────────────────────────

// WithinTx implements progress.Atomic over a single database transaction.
func (s *ProgressStore) WithinTx(ctx context.Context, fn func(tx progress.TxStore) error) error {
	return s.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		return fn(&progressTx{q: tx})
	})
}

// progressTx is the write handle bound to one open transaction.
type progressTx struct {
	q Querier
}

// Insert creates the progress row.
func (t *progressTx) Insert(ctx context.Context, p *progress.Progress) error {
	query := `
		INSERT INTO progress (id, user_id, lesson_id, status, request_id, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := t.q.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.LessonID,
		string(p.Status),
		p.RequestID,
		p.CompletedAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("progress", "Insert", shared.ErrAlreadyExists,
				"progress row already exists for this user and lesson or request id")
		}
		return fmt.Errorf("failed to insert progress: %w", err)
	}
	return nil
}

// Update persists a status transition. The original request_id is kept:
// the row always records the request that created it.
func (t *progressTx) Update(ctx context.Context, p *progress.Progress) error {
	query := `
		UPDATE progress SET
			status = $1,
			completed_at = $2,
			updated_at = $3
		WHERE id = $4
	`

	result, err := t.q.Exec(ctx, query,
		string(p.Status),
		p.CompletedAt,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrProgressNotFound
	}
	return nil
}

// AppendHistory writes one history entry.
func (t *progressTx) AppendHistory(ctx context.Context, e progress.HistoryEntry) error {
	query := `
		INSERT INTO progress_history (id, progress_id, user_id, lesson_id, old_status, new_status, request_id, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var oldStatus *string
	if e.OldStatus != nil {
		st := string(*e.OldStatus)
		oldStatus = &st
	}

	_, err := t.q.Exec(ctx, query,
		e.ID,
		e.ProgressID,
		e.UserID,
		e.LessonID,
		oldStatus,
		string(e.NewStatus),
		e.RequestID,
		e.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func scanProgress(row pgx.Row) (*progress.Progress, error) {
	var p progress.Progress
	var status string

	err := row.Scan(&p.ID, &p.UserID, &p.LessonID, &status, &p.RequestID,
		&p.CompletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to scan progress: %w", err)
	}

	p.Status = progress.Status(status)
	return &p, nil
}

func scanProgressFromRows(rows pgx.Rows) (*progress.Progress, error) {
	var p progress.Progress
	var status string

	if err := rows.Scan(&p.ID, &p.UserID, &p.LessonID, &status, &p.RequestID,
		&p.CompletedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan progress row: %w", err)
	}

	p.Status = progress.Status(status)
	return &p, nil
}
