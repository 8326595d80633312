package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to every
// domain event.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	if logger != nil {
		logger.Info("notification handlers registered", zap.Int("event_types", len(events.AllEventTypes)))
	}
}
