package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"event-service/core/database"
	"event-service/core/errors"
	"event-service/core/logger"
	"event-service/modules/event/entity"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const eventColumns = `id, name, description, start_time, end_time, location, participants, created_at, updated_at`

// EventRepository runs event queries on whichever handle the caller owns.
type EventRepository struct{}

func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

type EventRepositoryInterface interface {
	Create(ctx context.Context, h database.Handle, event *entity.Event) (*entity.Event, error)
	List(ctx context.Context, h database.Handle) ([]entity.Event, error)
	GetByID(ctx context.Context, h database.Handle, id int64) (*entity.Event, error)
	// Update returns the row as it was before and after the patch.
	Update(ctx context.Context, h database.Handle, id int64, patch entity.EventPatch) (before, after *entity.Event, err error)
	Delete(ctx context.Context, h database.Handle, id int64) error
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

func (r *EventRepository) Create(ctx context.Context, h database.Handle, event *entity.Event) (*entity.Event, error) {
	participants, err := bindParticipants(h.Dialect(), event.Participants)
	if err != nil {
		return nil, errors.Store("failed to encode participants", err)
	}

	ts := now()
	var created entity.Event
	err = h.WithTx(ctx, func(tx *sqlx.Tx) error {
		var id int64
		query := tx.Rebind(`
			INSERT INTO events (name, description, start_time, end_time, location, participants, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`)
		if err := tx.GetContext(ctx, &id, query,
			event.Name, event.Description, utcPtr(event.StartTime), utcPtr(event.EndTime),
			event.Location, participants, ts, ts); err != nil {
			return err
		}
		return tx.GetContext(ctx, &created, tx.Rebind(`SELECT `+eventColumns+` FROM events WHERE id = ?`), id)
	})
	if err != nil {
		logger.Error("EventRepository:Create", err)
		return nil, asStoreError("failed to insert event", err)
	}

	created.NormalizeTimes()
	return &created, nil
}

func (r *EventRepository) List(ctx context.Context, h database.Handle) ([]entity.Event, error) {
	events := []entity.Event{}
	if err := h.SelectContext(ctx, &events, `SELECT `+eventColumns+` FROM events ORDER BY id`); err != nil {
		logger.Error("EventRepository:List", err)
		return nil, errors.Store("failed to list events", err)
	}
	for i := range events {
		events[i].NormalizeTimes()
	}
	return events, nil
}

func (r *EventRepository) GetByID(ctx context.Context, h database.Handle, id int64) (*entity.Event, error) {
	var event entity.Event
	err := h.GetContext(ctx, &event, h.Rebind(`SELECT `+eventColumns+` FROM events WHERE id = ?`), id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("Event not found")
		}
		logger.Error("EventRepository:GetByID", err)
		return nil, errors.Store("failed to load event", err)
	}
	event.NormalizeTimes()
	return &event, nil
}

func (r *EventRepository) Update(ctx context.Context, h database.Handle, id int64, patch entity.EventPatch) (*entity.Event, *entity.Event, error) {
	var before, after *entity.Event
	err := h.WithTx(ctx, func(tx *sqlx.Tx) error {
		var current entity.Event
		selectQuery := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
		if h.Dialect() == database.DialectPostgres {
			selectQuery += ` FOR UPDATE`
		}
		if err := tx.GetContext(ctx, &current, tx.Rebind(selectQuery), id); err != nil {
			if stderrors.Is(err, sql.ErrNoRows) {
				return errors.NotFound("Event not found")
			}
			return err
		}
		current.NormalizeTimes()
		before = current.Clone()

		patch.Apply(&current)
		ts := now()
		if ts.Before(current.UpdatedAt) {
			ts = current.UpdatedAt
		}
		current.UpdatedAt = ts

		participants, err := bindParticipants(h.Dialect(), current.Participants)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			UPDATE events
			SET name = ?, description = ?, start_time = ?, end_time = ?, location = ?, participants = ?, updated_at = ?
			WHERE id = ?
		`), current.Name, current.Description, current.StartTime, current.EndTime,
			current.Location, participants, current.UpdatedAt, id)
		if err != nil {
			return err
		}
		after = current.Clone()
		return nil
	})
	if err != nil {
		if errors.HasCode(err, errors.ErrNotFound) {
			return nil, nil, err
		}
		logger.Error("EventRepository:Update", err)
		return nil, nil, asStoreError("failed to update event", err)
	}
	return before, after, nil
}

func (r *EventRepository) Delete(ctx context.Context, h database.Handle, id int64) error {
	err := h.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM events WHERE id = ?`), id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return errors.NotFound("Event not found")
		}
		return nil
	})
	if err != nil {
		if errors.HasCode(err, errors.ErrNotFound) {
			return err
		}
		logger.Error("EventRepository:Delete", err)
		return asStoreError("failed to delete event", err)
	}
	return nil
}

// bindParticipants encodes the list for the participants column: a native
// array on Postgres, JSON text elsewhere. nil binds as NULL.
func bindParticipants(dialect database.Dialect, p entity.Participants) (any, error) {
	if p == nil {
		return nil, nil
	}
	if dialect == database.DialectPostgres {
		return pq.StringArray(p), nil
	}
	encoded, err := json.Marshal([]string(p))
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func asStoreError(msg string, err error) error {
	var ae *errors.AppError
	if stderrors.As(err, &ae) && ae.Code == errors.ErrStore {
		return err
	}
	return errors.Store(msg, err)
}
