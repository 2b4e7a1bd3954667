package service

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"

	"event-service/core/config"
	"event-service/core/database"
	"event-service/core/database/databasetest"
	"event-service/core/errors"
	"event-service/core/mailer"
	"event-service/modules/event/entity"
	"event-service/modules/event/repository"
)

type sentMessage struct {
	recipients []string
	subject    string
	body       string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, recipients []string, subject, body string, _ mailer.ContentType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{recipients: recipients, subject: subject, body: body})
	return r.err
}

func fixedFactory(s Sender) SenderFactory {
	return func(config.SMTPConfig) (Sender, error) { return s, nil }
}

func seed(t *testing.T, db *database.Database, event *entity.Event) *entity.Event {
	t.Helper()
	h, err := db.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer h.Close()
	created, err := repository.NewEventRepository().Create(context.Background(), h, event)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return created
}

type failingPool struct {
	database.Pool
	err error
}

func (p failingPool) Acquire(context.Context) (database.Handle, error) {
	return nil, p.err
}

func TestSendEventUpdateEmail(t *testing.T) {
	db := databasetest.Open(t)
	loc := "New Venue"
	event := seed(t, db, &entity.Event{Name: "Conf", Location: &loc, Participants: entity.Participants{"a@x", "b@x"}})

	sender := &recordingSender{}
	svc := NewNotificationService(repository.NewEventRepository(), fixedFactory(sender))

	svc.SendEventUpdateEmail(context.Background(), "job1", event.ID, db, config.SMTPConfig{})

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if len(msg.recipients) != 2 || msg.recipients[0] != "a@x" || msg.recipients[1] != "b@x" {
		t.Errorf("recipients = %v", msg.recipients)
	}
	if msg.subject != "Event Update: Conf" {
		t.Errorf("subject = %q", msg.subject)
	}
	if db.InUse() != 0 {
		t.Errorf("handle not released: %d in use", db.InUse())
	}
}

func TestSendEventUpdateEmailSkips(t *testing.T) {
	db := databasetest.Open(t)
	empty := seed(t, db, &entity.Event{Name: "Empty", Participants: entity.Participants{}})
	absent := seed(t, db, &entity.Event{Name: "Absent"})

	tests := []struct {
		name    string
		eventID int64
	}{
		{"missing event", 9999},
		{"empty participants", empty.ID},
		{"absent participants", absent.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			svc := NewNotificationService(repository.NewEventRepository(), fixedFactory(sender))

			svc.SendEventUpdateEmail(context.Background(), "job", tt.eventID, db, config.SMTPConfig{})

			if len(sender.sent) != 0 {
				t.Errorf("expected no message, got %d", len(sender.sent))
			}
			if db.InUse() != 0 {
				t.Errorf("handle not released: %d in use", db.InUse())
			}
		})
	}
}

func TestSendEventUpdateEmailSwallowsFailures(t *testing.T) {
	db := databasetest.Open(t)
	event := seed(t, db, &entity.Event{Name: "Conf", Participants: entity.Participants{"a@x"}})

	t.Run("incomplete smtp config", func(t *testing.T) {
		svc := NewNotificationService(repository.NewEventRepository(), SMTPSenderFactory)
		svc.SendEventUpdateEmail(context.Background(), "job", event.ID, db, config.SMTPConfig{Host: "smtp.example.com"})
		if db.InUse() != 0 {
			t.Errorf("handle not released: %d in use", db.InUse())
		}
	})

	t.Run("factory error", func(t *testing.T) {
		svc := NewNotificationService(repository.NewEventRepository(), func(config.SMTPConfig) (Sender, error) {
			return nil, errors.Config("missing SMTP settings")
		})
		svc.SendEventUpdateEmail(context.Background(), "job", event.ID, db, config.SMTPConfig{})
		if db.InUse() != 0 {
			t.Errorf("handle not released: %d in use", db.InUse())
		}
	})

	t.Run("send error", func(t *testing.T) {
		sender := &recordingSender{err: stderrors.New("connection refused")}
		svc := NewNotificationService(repository.NewEventRepository(), fixedFactory(sender))
		svc.SendEventUpdateEmail(context.Background(), "job", event.ID, db, config.SMTPConfig{})
		if len(sender.sent) != 1 {
			t.Errorf("expected one attempt, got %d", len(sender.sent))
		}
		if db.InUse() != 0 {
			t.Errorf("handle not released: %d in use", db.InUse())
		}
	})
}

func TestSendEventUpdateEmailAcquireFailure(t *testing.T) {
	sender := &recordingSender{}
	svc := NewNotificationService(repository.NewEventRepository(), fixedFactory(sender))
	pool := failingPool{err: errors.Store("failed to acquire store handle", context.DeadlineExceeded)}

	svc.SendEventUpdateEmail(context.Background(), "job", 1, pool, config.SMTPConfig{})

	if len(sender.sent) != 0 {
		t.Errorf("expected no message, got %d", len(sender.sent))
	}
}

func TestSendEventUpdateEmailReleasesHandleBeforeSending(t *testing.T) {
	db := databasetest.Open(t)
	event := seed(t, db, &entity.Event{Name: "Conf", Participants: entity.Participants{"a@x"}})

	var inUseAtSend int64 = -1
	svc := NewNotificationService(repository.NewEventRepository(), func(config.SMTPConfig) (Sender, error) {
		inUseAtSend = db.InUse()
		return &recordingSender{}, nil
	})

	svc.SendEventUpdateEmail(context.Background(), "job", event.ID, db, config.SMTPConfig{})

	if inUseAtSend != 0 {
		t.Errorf("expected no handle held while mailing, got %d", inUseAtSend)
	}
}

func TestEventUpdateTask(t *testing.T) {
	db := databasetest.Open(t)
	event := seed(t, db, &entity.Event{Name: "Conf", Participants: entity.Participants{"a@x"}})
	sender := &recordingSender{}
	svc := NewNotificationService(repository.NewEventRepository(), fixedFactory(sender))

	task := svc.EventUpdateTask(event.ID, db, config.SMTPConfig{})
	if db.InUse() != 0 {
		t.Fatalf("building the task must not hold a handle, %d in use", db.InUse())
	}
	if !strings.HasPrefix(task.Name, "event-update-email:") || len(task.Name) == len("event-update-email:") {
		t.Errorf("task name = %q", task.Name)
	}

	task.Run(context.Background())

	if len(sender.sent) != 1 {
		t.Errorf("expected 1 message, got %d", len(sender.sent))
	}
	if db.InUse() != 0 {
		t.Errorf("handle not released: %d in use", db.InUse())
	}
}
