package dto

import (
	"strings"
	"time"

	"event-service/core/errors"
	"event-service/modules/event/entity"
)

// ===================== Request DTOs =====================

// CreateEventRequest is the POST /events body.
type CreateEventRequest struct {
	Name         string     `json:"name"`
	Description  *string    `json:"description"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Location     *string    `json:"location"`
	Participants []string   `json:"participants"`
}

// UpdateEventRequest is the PUT /events/{id} body. Absent or null keys leave
// the stored value unchanged.
type UpdateEventRequest struct {
	Name         entity.Optional[string]    `json:"name"`
	Description  entity.Optional[string]    `json:"description"`
	StartTime    entity.Optional[time.Time] `json:"start_time"`
	EndTime      entity.Optional[time.Time] `json:"end_time"`
	Location     entity.Optional[string]    `json:"location"`
	Participants entity.Optional[[]string]  `json:"participants"`
}

// ===================== Response DTOs =====================

type EventResponse struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Description  *string    `json:"description"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Location     *string    `json:"location"`
	Participants []string   `json:"participants"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// ===================== Validation =====================

func (r *CreateEventRequest) Validate() *errors.AppError {
	if strings.TrimSpace(r.Name) == "" {
		return errors.NewAppError(errors.ErrValidationError, "name is required", nil)
	}
	return nil
}

func (r *UpdateEventRequest) Validate() *errors.AppError {
	if r.Name.Set && strings.TrimSpace(r.Name.Value) == "" {
		return errors.NewAppError(errors.ErrValidationError, "name must not be empty", nil)
	}
	return nil
}
