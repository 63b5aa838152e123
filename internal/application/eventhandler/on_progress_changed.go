// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"context"
	"time"

	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON PROGRESS CHANGED HANDLER
// Обрабатывает событие изменения статуса прогресса.
//
// Ключевые функции:
// 1. Инвалидация кэша сводки — сводка пользователя по курсу устарела
// 2. Структурированное логирование перехода статуса
//
// Обработчик вызывается ПОСЛЕ коммита транзакции и никогда не влияет
// на результат самой записи.
// ═══════════════════════════════════════════════════════════════════════════

// SummaryInvalidator сбрасывает закэшированную сводку пользователя по курсу.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, userID, courseID string) error
}

// ProgressChangedConfig содержит конфигурацию обработчика.
type ProgressChangedConfig struct {
	// InvalidateCache — сбрасывать ли кэш сводки при изменении статуса.
	InvalidateCache bool

	// Timeout — максимальное время на обработку одного события.
	Timeout time.Duration
}

// DefaultProgressChangedConfig возвращает конфигурацию по умолчанию.
func DefaultProgressChangedConfig() ProgressChangedConfig {
	return ProgressChangedConfig{
		InvalidateCache: true,
		Timeout:         5 * time.Second,
	}
}

// OnProgressChangedHandler обрабатывает события прогресса.
type OnProgressChangedHandler struct {
	invalidator SummaryInvalidator
	logger      *logger.Logger
	config      ProgressChangedConfig
}

// NewOnProgressChangedHandler создаёт новый обработчик.
// Invalidator может быть nil, тогда шаг инвалидации пропускается.
func NewOnProgressChangedHandler(
	invalidator SummaryInvalidator,
	log *logger.Logger,
	config ProgressChangedConfig,
) *OnProgressChangedHandler {
	if log == nil {
		log = logger.Default()
	}
	return &OnProgressChangedHandler{
		invalidator: invalidator,
		logger:      log.With(logger.Component("on_progress_changed")),
		config:      config,
	}
}

// Handle реализует shared.EventHandler.
func (h *OnProgressChangedHandler) Handle(event shared.Event) error {
	pe, ok := event.(shared.ProgressChangedEvent)
	if !ok {
		h.logger.Warn("received unexpected event type",
			logger.String("event_type", string(event.EventType())),
		)
		return nil
	}

	h.logger.Info("progress status changed",
		logger.UserID(pe.UserID),
		logger.LessonID(pe.LessonID),
		logger.String("old_status", pe.OldStatus),
		logger.String("new_status", pe.NewStatus),
	)

	if !h.config.InvalidateCache || h.invalidator == nil || pe.CourseID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if err := h.invalidator.Invalidate(ctx, pe.UserID, pe.CourseID); err != nil {
		h.logger.Warn("failed to invalidate summary cache",
			logger.Err(err),
			logger.UserID(pe.UserID),
			logger.CourseID(pe.CourseID),
		)
	}

	return nil
}
