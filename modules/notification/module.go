package notification

import (
	"event-service/modules/event/repository"
	"event-service/modules/notification/service"
)

// Init builds the dispatcher used by the event module. A nil factory selects
// the SMTP transport.
func Init(newSender service.SenderFactory) *service.NotificationService {
	repo := repository.NewEventRepository()
	return service.NewNotificationService(repo, newSender)
}
