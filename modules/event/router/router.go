package router

import (
	"event-service/core/middleware"
	"event-service/modules/event/controller"

	"github.com/labstack/echo/v4"
)

// EventRouter handles event routes
type EventRouter struct {
	EventController *controller.EventController
}

// NewEventRouter creates a new router
func NewEventRouter(eventController *controller.EventController) *EventRouter {
	return &EventRouter{
		EventController: eventController,
	}
}

// Setup registers event routes. Every route holds one store handle for the
// duration of the request.
func (r *EventRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	eventRoutes := e.Group("/events", mw.StoreHandle())

	eventRoutes.POST("", r.EventController.CreateEvent)
	eventRoutes.POST("/", r.EventController.CreateEvent)
	eventRoutes.GET("", r.EventController.ListEvents)
	eventRoutes.GET("/", r.EventController.ListEvents)
	eventRoutes.GET("/:id", r.EventController.GetEvent)
	eventRoutes.PUT("/:id", r.EventController.UpdateEvent)
	eventRoutes.DELETE("/:id", r.EventController.DeleteEvent)
	eventRoutes.GET("/:id/ics", r.EventController.ExportEvent)
}
