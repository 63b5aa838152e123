// Package main - утилита для наполнения базы демонстрационными данными.
//
// Запускает миграции и создаёт пользователей, курсы с уроками и записи
// на курсы. Повторный запуск безопасен: конфликты уникальных ключей
// логируются и пропускаются.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/learnhub/progress-hub/config"
	"github.com/learnhub/progress-hub/internal/domain/course"
	"github.com/learnhub/progress-hub/internal/domain/enrollment"
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/internal/domain/user"
	"github.com/learnhub/progress-hub/internal/infrastructure/persistence/postgres"
	"github.com/learnhub/progress-hub/pkg/logger"
)

type seedCourse struct {
	title       string
	description string
	maxSeats    int
	lessons     []string
}

var seedUsers = []struct {
	email string
	name  string
}{
	{"aidana@example.com", "Aidana"},
	{"timur@example.com", "Timur"},
	{"zhanel@example.com", "Zhanel"},
}

var seedCourses = []seedCourse{
	{
		title:       "Go Fundamentals",
		description: "Syntax, types, methods and interfaces.",
		maxSeats:    30,
		lessons: []string{
			"Hello, Go",
			"Types and Variables",
			"Functions and Methods",
			"Interfaces",
		},
	},
	{
		title:       "Concurrent Go",
		description: "Goroutines, channels and the sync package.",
		maxSeats:    20,
		lessons: []string{
			"Goroutines",
			"Channels",
			"Select and Timeouts",
		},
	},
	{
		title:       "PostgreSQL Workshop",
		description: "Schemas, transactions and indexes in practice.",
		maxSeats:    2,
		lessons: []string{
			"Schema Design",
			"Transactions",
		},
	},
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Default()

	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	userRepo := postgres.NewUserRepository(conn)
	courseRepo := postgres.NewCourseRepository(conn)
	lessonRepo := postgres.NewLessonRepository(conn)
	enrollmentStore := postgres.NewEnrollmentStore(conn)

	// ─────────────────────────────────────────────────────────────────────────
	// Пользователи
	// ─────────────────────────────────────────────────────────────────────────
	users := make([]*user.User, 0, len(seedUsers))
	for _, su := range seedUsers {
		u, err := user.New(su.email, su.name)
		if err != nil {
			return fmt.Errorf("invalid seed user %q: %w", su.email, err)
		}

		if err := userRepo.Create(ctx, u); err != nil {
			if shared.IsAlreadyExists(err) {
				existing, err := userRepo.GetByEmail(ctx, shared.Email(su.email))
				if err != nil {
					return fmt.Errorf("failed to load existing user %q: %w", su.email, err)
				}
				log.Info("user already exists", logger.Email(su.email))
				users = append(users, existing)
				continue
			}
			return fmt.Errorf("failed to create user %q: %w", su.email, err)
		}

		log.Info("created user", logger.Email(su.email), logger.UserID(u.ID))
		users = append(users, u)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Курсы и уроки
	// ─────────────────────────────────────────────────────────────────────────
	courses := make([]*course.Course, 0, len(seedCourses))
	for _, sc := range seedCourses {
		c, err := course.New(sc.title, sc.description, sc.maxSeats)
		if err != nil {
			return fmt.Errorf("invalid seed course %q: %w", sc.title, err)
		}

		if err := courseRepo.Create(ctx, c); err != nil {
			return fmt.Errorf("failed to create course %q: %w", sc.title, err)
		}
		log.Info("created course", logger.CourseID(c.ID), logger.String("title", string(c.Title)))

		for i, title := range sc.lessons {
			l, err := course.NewLesson(c.ID, title, "", i+1)
			if err != nil {
				return fmt.Errorf("invalid seed lesson %q: %w", title, err)
			}
			if err := lessonRepo.Create(ctx, l); err != nil {
				if shared.IsAlreadyExists(err) {
					log.Info("lesson already exists", logger.String("title", title))
					continue
				}
				return fmt.Errorf("failed to create lesson %q: %w", title, err)
			}
			log.Info("created lesson", logger.LessonID(l.ID), logger.String("title", title))
		}

		courses = append(courses, c)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Записи на курсы: каждый пользователь записан на первый курс
	// ─────────────────────────────────────────────────────────────────────────
	if len(courses) > 0 {
		first := courses[0]
		for _, u := range users {
			e, err := enrollment.New(u.ID, first.ID)
			if err != nil {
				return fmt.Errorf("invalid enrollment: %w", err)
			}

			err = enrollmentStore.WithinTx(ctx, func(tx enrollment.TxStore) error {
				c, err := tx.LockCourse(ctx, first.ID)
				if err != nil {
					return err
				}
				count, err := tx.CountByCourse(ctx, first.ID)
				if err != nil {
					return err
				}
				if c.IsFull(count) {
					return shared.ErrCourseFull
				}
				return tx.Insert(ctx, e)
			})
			if err != nil {
				if shared.IsConflict(err) {
					log.Info("enrollment skipped",
						logger.UserID(u.ID), logger.CourseID(first.ID), logger.Err(err))
					continue
				}
				return fmt.Errorf("failed to enroll user %s: %w", u.ID, err)
			}

			log.Info("enrolled user", logger.UserID(u.ID), logger.CourseID(first.ID))
		}
	}

	log.Info("seed completed",
		logger.Int("users", len(users)),
		logger.Int("courses", len(courses)),
	)
	return nil
}
