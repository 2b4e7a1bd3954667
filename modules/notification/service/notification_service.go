package service

import (
	"context"
	"time"

	"event-service/core/background"
	"event-service/core/config"
	"event-service/core/database"
	"event-service/core/errors"
	"event-service/core/logger"
	"event-service/core/mailer"
	"event-service/core/utils"
	eventEntity "event-service/modules/event/entity"
	"event-service/modules/notification/entity"
)

// acquireTimeout bounds how long a job waits for a free store connection.
const acquireTimeout = 30 * time.Second

// Sender is the mail transport used by the dispatcher.
type Sender interface {
	Send(ctx context.Context, recipients []string, subject, body string, contentType mailer.ContentType) error
}

// SenderFactory builds a Sender from the SMTP settings captured at enqueue time.
type SenderFactory func(cfg config.SMTPConfig) (Sender, error)

// EventReader loads an event through a caller-owned handle.
type EventReader interface {
	GetByID(ctx context.Context, h database.Handle, id int64) (*eventEntity.Event, error)
}

type NotificationService struct {
	events    EventReader
	newSender SenderFactory
}

func NewNotificationService(events EventReader, newSender SenderFactory) *NotificationService {
	if newSender == nil {
		newSender = SMTPSenderFactory
	}
	return &NotificationService{events: events, newSender: newSender}
}

// SMTPSenderFactory builds the real SMTP transport.
func SMTPSenderFactory(cfg config.SMTPConfig) (Sender, error) {
	m, err := mailer.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// EventUpdateTask wraps SendEventUpdateEmail for the background lane. The job
// acquires its own handle from pool once it holds a lane slot.
func (s *NotificationService) EventUpdateTask(eventID int64, pool database.Pool, smtpCfg config.SMTPConfig) background.Task {
	jobID := utils.GenerateID()
	return background.Task{
		Name: "event-update-email:" + jobID,
		Run: func(ctx context.Context) {
			s.SendEventUpdateEmail(ctx, jobID, eventID, pool, smtpCfg)
		},
	}
}

// SendEventUpdateEmail re-reads the event and mails its participants. It never
// returns an error: every failure is logged. The store handle is released
// before the SMTP session starts.
func (s *NotificationService) SendEventUpdateEmail(ctx context.Context, jobID string, eventID int64, pool database.Pool, smtpCfg config.SMTPConfig) {
	event, err := s.loadEvent(ctx, jobID, eventID, pool)
	if err != nil {
		if errors.HasCode(err, errors.ErrNotFound) {
			logger.Info("NotificationService:SendEventUpdateEmail: event no longer exists", "job_id", jobID, "event_id", eventID)
			return
		}
		logger.ErrorStack("NotificationService:SendEventUpdateEmail: load event", err, "job_id", jobID, "event_id", eventID)
		return
	}

	if len(event.Participants) == 0 {
		logger.Info("NotificationService:SendEventUpdateEmail: no participants", "job_id", jobID, "event_id", eventID)
		return
	}

	sender, err := s.newSender(smtpCfg)
	if err != nil {
		logger.ErrorStack("NotificationService:SendEventUpdateEmail: build mailer", err, "job_id", jobID, "event_id", eventID)
		return
	}

	email := entity.NewEventUpdateEmail(event)
	if err := sender.Send(ctx, email.Recipients, email.Subject, email.Body, mailer.ContentTypePlain); err != nil {
		logger.ErrorStack("NotificationService:SendEventUpdateEmail: send", err, "job_id", jobID, "event_id", eventID)
		return
	}

	logger.Info("NotificationService:SendEventUpdateEmail: sent",
		"job_id", jobID,
		"event_id", eventID,
		"recipients", len(email.Recipients),
	)
}

func (s *NotificationService) loadEvent(ctx context.Context, jobID string, eventID int64, pool database.Pool) (*eventEntity.Event, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	h, err := pool.Acquire(acquireCtx)
	cancel()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := h.Close(); err != nil {
			logger.Warn("NotificationService:SendEventUpdateEmail: release handle", "job_id", jobID, "error", err)
		}
	}()
	return s.events.GetByID(ctx, h, eventID)
}
