package service

import (
	"context"
	stderrors "errors"

	"event-service/core/background"
	"event-service/core/config"
	"event-service/core/database"
	"event-service/core/errors"
	"event-service/core/logger"
	"event-service/modules/event/dto"
	"event-service/modules/event/repository"
)

// Notifier builds the post-response job that emails participants about an
// update. The job draws its own handle from pool when it runs.
type Notifier interface {
	EventUpdateTask(eventID int64, pool database.Pool, smtpCfg config.SMTPConfig) background.Task
}

// EventService handles event business logic
type EventService struct {
	repo     repository.EventRepositoryInterface
	pool     database.Pool
	notifier Notifier
	smtp     config.SMTPConfig
}

// EventServiceInterface defines the service contract
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, *errors.AppError)
	ListEvents(ctx context.Context) ([]dto.EventResponse, *errors.AppError)
	GetEvent(ctx context.Context, id int64) (*dto.EventResponse, *errors.AppError)
	UpdateEvent(ctx context.Context, id int64, req *dto.UpdateEventRequest) (*dto.EventResponse, *errors.AppError)
	DeleteEvent(ctx context.Context, id int64) *errors.AppError
	ExportEvent(ctx context.Context, id int64) (*CalendarFile, *errors.AppError)
}

func NewEventService(repo repository.EventRepositoryInterface, pool database.Pool, notifier Notifier, smtpCfg config.SMTPConfig) EventServiceInterface {
	return &EventService{
		repo:     repo,
		pool:     pool,
		notifier: notifier,
		smtp:     smtpCfg,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, *errors.AppError) {
	var resp *dto.EventResponse
	err := s.withHandle(ctx, func(h database.Handle) error {
		created, err := s.repo.Create(ctx, h, dto.ToEventEntity(req))
		if err != nil {
			return err
		}
		resp = dto.ToEventResponse(created)
		return nil
	})
	if err != nil {
		return nil, failure("Failed to create event", err)
	}
	return resp, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]dto.EventResponse, *errors.AppError) {
	var resp []dto.EventResponse
	err := s.withHandle(ctx, func(h database.Handle) error {
		events, err := s.repo.List(ctx, h)
		if err != nil {
			return err
		}
		resp = dto.ToEventResponses(events)
		return nil
	})
	if err != nil {
		return nil, failure("Failed to list events", err)
	}
	return resp, nil
}

func (s *EventService) GetEvent(ctx context.Context, id int64) (*dto.EventResponse, *errors.AppError) {
	var resp *dto.EventResponse
	err := s.withHandle(ctx, func(h database.Handle) error {
		event, err := s.repo.GetByID(ctx, h, id)
		if err != nil {
			return err
		}
		resp = dto.ToEventResponse(event)
		return nil
	})
	if err != nil {
		return nil, failure("Failed to retrieve event", err)
	}
	return resp, nil
}

// UpdateEvent applies the patch and, when a watched field changed and the
// event has participants, schedules the update email for after the response.
func (s *EventService) UpdateEvent(ctx context.Context, id int64, req *dto.UpdateEventRequest) (*dto.EventResponse, *errors.AppError) {
	var resp *dto.EventResponse
	err := s.withHandle(ctx, func(h database.Handle) error {
		before, after, err := s.repo.Update(ctx, h, id, dto.ToEventPatch(req))
		if err != nil {
			return err
		}
		if ShouldNotify(before.Watched(), after.Watched()) {
			s.scheduleUpdateEmail(ctx, id)
		}
		resp = dto.ToEventResponse(after)
		return nil
	})
	if err != nil {
		return nil, failure("Failed to update event", err)
	}
	return resp, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id int64) *errors.AppError {
	err := s.withHandle(ctx, func(h database.Handle) error {
		return s.repo.Delete(ctx, h, id)
	})
	if err != nil {
		return failure("Failed to delete event", err)
	}
	return nil
}

// scheduleUpdateEmail queues the job for after the response. The job never
// touches the request's handle.
func (s *EventService) scheduleUpdateEmail(ctx context.Context, id int64) {
	if s.notifier == nil {
		return
	}

	task := s.notifier.EventUpdateTask(id, s.pool, s.smtp)
	if err := background.Enqueue(ctx, task); err != nil {
		logger.ErrorStack("EventService:UpdateEvent: enqueue notification", err, "event_id", id)
		return
	}
	logger.Info("EventService:UpdateEvent: notification scheduled", "event_id", id, "task", task.Name)
}

// withHandle runs fn on the request's handle, or on a short-lived one when
// the call did not come through the HTTP stack.
func (s *EventService) withHandle(ctx context.Context, fn func(h database.Handle) error) error {
	if h, ok := database.HandleFromContext(ctx); ok {
		return fn(h)
	}
	h, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer h.Close()
	return fn(h)
}

// failure keeps NOT_FOUND as is and turns everything else into a STORE_ERROR
// carrying msg.
func failure(msg string, err error) *errors.AppError {
	var ae *errors.AppError
	if stderrors.As(err, &ae) && ae.Code == errors.ErrNotFound {
		return ae
	}
	logger.ErrorStack("EventService: "+msg, err)
	return errors.NewAppError(errors.ErrStore, msg, err)
}
