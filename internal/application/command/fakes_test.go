package command

import (
	"context"

	"github.com/learnhub/progress-hub/internal/domain/course"
	"github.com/learnhub/progress-hub/internal/domain/enrollment"
	"github.com/learnhub/progress-hub/internal/domain/progress"
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/internal/domain/user"
)

// In-memory fakes shared by the command handler tests.

// ─────────────────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[string]*user.User
}

func newStubUserRepo(users ...*user.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*user.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUserRepo) Create(ctx context.Context, u *user.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, shared.ErrUserNotFound
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email shared.Email) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (r *stubUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := r.users[id]
	return ok, nil
}

func (r *stubUserRepo) List(ctx context.Context, p shared.Pagination) ([]*user.User, error) {
	out := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Courses and lessons
// ─────────────────────────────────────────────────────────────────────────────

type stubCourseRepo struct {
	courses map[string]*course.Course
}

func newStubCourseRepo(courses ...*course.Course) *stubCourseRepo {
	r := &stubCourseRepo{courses: make(map[string]*course.Course)}
	for _, c := range courses {
		r.courses[c.ID] = c
	}
	return r
}

func (r *stubCourseRepo) Create(ctx context.Context, c *course.Course) error {
	r.courses[c.ID] = c
	return nil
}

func (r *stubCourseRepo) GetByID(ctx context.Context, id string) (*course.Course, error) {
	if c, ok := r.courses[id]; ok {
		return c, nil
	}
	return nil, shared.ErrCourseNotFound
}

func (r *stubCourseRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := r.courses[id]
	return ok, nil
}

func (r *stubCourseRepo) ListWithRemainingSeats(ctx context.Context, p shared.Pagination) ([]*course.CourseWithSeats, error) {
	out := make([]*course.CourseWithSeats, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, &course.CourseWithSeats{Course: *c, RemainingSeats: c.MaxSeats})
	}
	return out, nil
}

type stubLessonRepo struct {
	lessons []*course.Lesson
}

func (r *stubLessonRepo) Create(ctx context.Context, l *course.Lesson) error {
	r.lessons = append(r.lessons, l)
	return nil
}

func (r *stubLessonRepo) GetByID(ctx context.Context, id string) (*course.Lesson, error) {
	for _, l := range r.lessons {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, shared.ErrLessonNotFound
}

func (r *stubLessonRepo) ListByCourse(ctx context.Context, courseID string) ([]*course.Lesson, error) {
	var out []*course.Lesson
	for _, l := range r.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *stubLessonRepo) ListBefore(ctx context.Context, courseID string, orderIndex int) ([]*course.Lesson, error) {
	var out []*course.Lesson
	for _, l := range r.lessons {
		if l.CourseID == courseID && l.OrderIndex < orderIndex {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *stubLessonRepo) CountByCourse(ctx context.Context, courseID string) (int, error) {
	list, _ := r.ListByCourse(ctx, courseID)
	return len(list), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Enrollments
// Implements enrollment.Repository, enrollment.Atomic and enrollment.TxStore.
// ─────────────────────────────────────────────────────────────────────────────

type memEnrollmentStore struct {
	courses *stubCourseRepo
	rows    []*enrollment.Enrollment
}

func newMemEnrollmentStore(courses *stubCourseRepo) *memEnrollmentStore {
	return &memEnrollmentStore{courses: courses}
}

func (s *memEnrollmentStore) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	for _, e := range s.rows {
		if e.UserID == userID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memEnrollmentStore) CountByCourse(ctx context.Context, courseID string) (int, error) {
	count := 0
	for _, e := range s.rows {
		if e.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (s *memEnrollmentStore) ListByUser(ctx context.Context, userID string) ([]*enrollment.Enrollment, error) {
	var out []*enrollment.Enrollment
	for _, e := range s.rows {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memEnrollmentStore) LockCourse(ctx context.Context, courseID string) (*course.Course, error) {
	return s.courses.GetByID(ctx, courseID)
}

func (s *memEnrollmentStore) Insert(ctx context.Context, e *enrollment.Enrollment) error {
	enrolled, _ := s.Exists(ctx, e.UserID, e.CourseID)
	if enrolled {
		return shared.ErrAlreadyEnrolled
	}
	s.rows = append(s.rows, e)
	return nil
}

func (s *memEnrollmentStore) WithinTx(ctx context.Context, fn func(tx enrollment.TxStore) error) error {
	return fn(s)
}

// ─────────────────────────────────────────────────────────────────────────────
// Progress
// Implements progress.Repository, progress.Atomic and progress.TxStore.
// ─────────────────────────────────────────────────────────────────────────────

type memProgressStore struct {
	rows    map[string]*progress.Progress
	history []progress.HistoryEntry

	// insertRace, when set, makes the next Insert behave as if a concurrent
	// request committed this row first.
	insertRace *progress.Progress
}

func newMemProgressStore() *memProgressStore {
	return &memProgressStore{rows: make(map[string]*progress.Progress)}
}

func (s *memProgressStore) put(p *progress.Progress) {
	s.rows[p.ID] = p
}

func (s *memProgressStore) GetByID(ctx context.Context, id string) (*progress.Progress, error) {
	if p, ok := s.rows[id]; ok {
		return p, nil
	}
	return nil, shared.ErrProgressNotFound
}

func (s *memProgressStore) GetByRequestID(ctx context.Context, requestID string) (*progress.Progress, error) {
	for _, p := range s.rows {
		if p.RequestID == requestID {
			return p, nil
		}
	}
	return nil, shared.ErrProgressNotFound
}

func (s *memProgressStore) GetByUserAndLesson(ctx context.Context, userID, lessonID string) (*progress.Progress, error) {
	for _, p := range s.rows {
		if p.UserID == userID && p.LessonID == lessonID {
			return p, nil
		}
	}
	return nil, shared.ErrProgressNotFound
}

func (s *memProgressStore) ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]*progress.Progress, error) {
	var out []*progress.Progress
	for _, p := range s.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memProgressStore) ExistsByRequestID(ctx context.Context, requestID string) (bool, error) {
	_, err := s.GetByRequestID(ctx, requestID)
	return err == nil, nil
}

func (s *memProgressStore) ListByUserAndLesson(ctx context.Context, userID, lessonID string) ([]progress.HistoryEntry, error) {
	var out []progress.HistoryEntry
	for _, h := range s.history {
		if h.UserID == userID && h.LessonID == lessonID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *memProgressStore) ListByProgress(ctx context.Context, progressID string) ([]progress.HistoryEntry, error) {
	var out []progress.HistoryEntry
	for _, h := range s.history {
		if h.ProgressID == progressID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *memProgressStore) Insert(ctx context.Context, p *progress.Progress) error {
	if s.insertRace != nil {
		s.put(s.insertRace)
		s.insertRace = nil
		return shared.NewDomainError("progress", "Insert", shared.ErrAlreadyExists,
			"progress row already exists for this user and lesson or request id")
	}
	for _, existing := range s.rows {
		if existing.UserID == p.UserID && existing.LessonID == p.LessonID {
			return shared.NewDomainError("progress", "Insert", shared.ErrAlreadyExists,
				"progress row already exists for this user and lesson or request id")
		}
	}
	s.put(p)
	return nil
}

func (s *memProgressStore) Update(ctx context.Context, p *progress.Progress) error {
	if _, ok := s.rows[p.ID]; !ok {
		return shared.ErrProgressNotFound
	}
	s.put(p)
	return nil
}

func (s *memProgressStore) AppendHistory(ctx context.Context, entry progress.HistoryEntry) error {
	s.history = append(s.history, entry)
	return nil
}

func (s *memProgressStore) WithinTx(ctx context.Context, fn func(tx progress.TxStore) error) error {
	return fn(s)
}

// ─────────────────────────────────────────────────────────────────────────────
// Events
// ─────────────────────────────────────────────────────────────────────────────

type capturePublisher struct {
	events []shared.Event
	err    error
}

func (p *capturePublisher) Publish(event shared.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}
