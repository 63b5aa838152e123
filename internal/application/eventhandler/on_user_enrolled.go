package eventhandler

import (
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON USER ENROLLED HANDLER
// Логирует зачисление и предупреждает, когда на курсе заканчиваются места.
// ═══════════════════════════════════════════════════════════════════════════

// UserEnrolledConfig содержит конфигурацию обработчика.
type UserEnrolledConfig struct {
	// LowSeatsThreshold — порог свободных мест, ниже которого пишем warning.
	LowSeatsThreshold int
}

// DefaultUserEnrolledConfig возвращает конфигурацию по умолчанию.
func DefaultUserEnrolledConfig() UserEnrolledConfig {
	return UserEnrolledConfig{LowSeatsThreshold: 3}
}

// OnUserEnrolledHandler обрабатывает событие зачисления.
type OnUserEnrolledHandler struct {
	logger *logger.Logger
	config UserEnrolledConfig
}

// NewOnUserEnrolledHandler создаёт новый обработчик.
func NewOnUserEnrolledHandler(log *logger.Logger, config UserEnrolledConfig) *OnUserEnrolledHandler {
	if log == nil {
		log = logger.Default()
	}
	return &OnUserEnrolledHandler{
		logger: log.With(logger.Component("on_user_enrolled")),
		config: config,
	}
}

// Handle реализует shared.EventHandler.
func (h *OnUserEnrolledHandler) Handle(event shared.Event) error {
	ee, ok := event.(shared.UserEnrolledEvent)
	if !ok {
		h.logger.Warn("received unexpected event type",
			logger.String("event_type", string(event.EventType())),
		)
		return nil
	}

	h.logger.Info("user enrolled",
		logger.UserID(ee.UserID),
		logger.CourseID(ee.CourseID),
		logger.Int("seats_remaining", ee.SeatsRemaining),
	)

	if ee.SeatsRemaining <= h.config.LowSeatsThreshold {
		h.logger.Warn("course is almost full",
			logger.CourseID(ee.CourseID),
			logger.Int("seats_remaining", ee.SeatsRemaining),
		)
	}

	return nil
}
