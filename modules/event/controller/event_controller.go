package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"event-service/core/controller"
	"event-service/modules/event/dto"
	"event-service/modules/event/service"

	"github.com/labstack/echo/v4"
)

// EventController handles event HTTP requests
type EventController struct {
	controller.BaseController
	EventService service.EventServiceInterface
}

// NewEventController creates a new controller
func NewEventController(svc service.EventServiceInterface) *EventController {
	return &EventController{
		BaseController: controller.NewBaseController(),
		EventService:   svc,
	}
}

func (c *EventController) eventID(ctx echo.Context) (int64, *echo.HTTPError) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, c.UnprocessableEntity("Invalid event id")
	}
	return id, nil
}

// CreateEvent handles POST /events
// @Summary Create an event
// @Tags Event
// @Accept json
// @Produce json
// @Param request body dto.CreateEventRequest true "Event"
// @Success 201 {object} dto.EventResponse
// @Failure 422 {object} controller.ErrorResponse
// @Failure 500 {object} controller.ErrorResponse
// @Router /events [post]
func (c *EventController) CreateEvent(ctx echo.Context) error {
	var req dto.CreateEventRequest
	if err := ctx.Bind(&req); err != nil {
		return c.UnprocessableEntity("Invalid request body")
	}
	if appErr := req.Validate(); appErr != nil {
		return c.UnprocessableEntity(appErr.Message, controller.NewValidationError("name", appErr.Message))
	}

	result, appErr := c.EventService.CreateEvent(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(appErr)
	}

	return c.SuccessResponse(ctx, http.StatusCreated, result)
}

// ListEvents handles GET /events
// @Summary List events
// @Tags Event
// @Produce json
// @Success 200 {array} dto.EventResponse
// @Failure 500 {object} controller.ErrorResponse
// @Router /events [get]
func (c *EventController) ListEvents(ctx echo.Context) error {
	result, appErr := c.EventService.ListEvents(ctx.Request().Context())
	if appErr != nil {
		return c.ErrorResponse(appErr)
	}

	return c.SuccessResponse(ctx, http.StatusOK, result)
}

// GetEvent handles GET /events/:id
// @Summary Get an event
// @Tags Event
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} dto.EventResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /events/{id} [get]
func (c *EventController) GetEvent(ctx echo.Context) error {
	id, httpErr := c.eventID(ctx)
	if httpErr != nil {
		return httpErr
	}

	result, appErr := c.EventService.GetEvent(ctx.Request().Context(), id)
	if appErr != nil {
		return c.ErrorResponse(appErr)
	}

	return c.SuccessResponse(ctx, http.StatusOK, result)
}

// UpdateEvent handles PUT /events/:id
// @Summary Update an event
// @Description Partial update. Changing the schedule, location or participants emails the participants.
// @Tags Event
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body dto.UpdateEventRequest true "Fields to change"
// @Success 200 {object} dto.EventResponse
// @Failure 404 {object} controller.ErrorResponse
// @Failure 422 {object} controller.ErrorResponse
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(ctx echo.Context) error {
	id, httpErr := c.eventID(ctx)
	if httpErr != nil {
		return httpErr
	}

	var req dto.UpdateEventRequest
	if err := ctx.Bind(&req); err != nil {
		return c.UnprocessableEntity("Invalid request body")
	}
	if appErr := req.Validate(); appErr != nil {
		return c.UnprocessableEntity(appErr.Message, controller.NewValidationError("name", appErr.Message))
	}

	result, appErr := c.EventService.UpdateEvent(ctx.Request().Context(), id, &req)
	if appErr != nil {
		return c.ErrorResponse(appErr)
	}

	return c.SuccessResponse(ctx, http.StatusOK, result)
}

// DeleteEvent handles DELETE /events/:id
// @Summary Delete an event
// @Tags Event
// @Param id path int true "Event ID"
// @Success 204
// @Failure 404 {object} controller.ErrorResponse
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(ctx echo.Context) error {
	id, httpErr := c.eventID(ctx)
	if httpErr != nil {
		return httpErr
	}

	if appErr := c.EventService.DeleteEvent(ctx.Request().Context(), id); appErr != nil {
		return c.ErrorResponse(appErr)
	}

	return c.NoContent(ctx)
}

// ExportEvent handles GET /events/:id/ics
// @Summary Download an event as iCalendar
// @Tags Event
// @Produce text/calendar
// @Param id path int true "Event ID"
// @Success 200 {file} file
// @Failure 404 {object} controller.ErrorResponse
// @Router /events/{id}/ics [get]
func (c *EventController) ExportEvent(ctx echo.Context) error {
	id, httpErr := c.eventID(ctx)
	if httpErr != nil {
		return httpErr
	}

	file, appErr := c.EventService.ExportEvent(ctx.Request().Context(), id)
	if appErr != nil {
		return c.ErrorResponse(appErr)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	return ctx.Blob(http.StatusOK, "text/calendar; charset=utf-8", file.Content)
}
