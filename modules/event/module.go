package event

import (
	"event-service/core/config"
	"event-service/core/database"
	"event-service/core/middleware"
	"event-service/modules/event/controller"
	"event-service/modules/event/repository"
	"event-service/modules/event/router"
	"event-service/modules/event/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the event module and registers routes
func Init(e *echo.Echo, db database.Pool, mw *middleware.Middleware, notifier service.Notifier, smtpCfg config.SMTPConfig) {
	repo := repository.NewEventRepository()
	svc := service.NewEventService(repo, db, notifier, smtpCfg)
	ctrl := controller.NewEventController(svc)
	rtr := router.NewEventRouter(ctrl)

	rtr.Setup(e, mw)
}
