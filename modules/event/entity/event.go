package entity

import (
	"time"
)

// Event is the single persisted record of the service.
type Event struct {
	ID           int64        `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	Description  *string      `db:"description" json:"description"`
	StartTime    *time.Time   `db:"start_time" json:"start_time"`
	EndTime      *time.Time   `db:"end_time" json:"end_time"`
	Location     *string      `db:"location" json:"location"`
	Participants Participants `db:"participants" json:"participants"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// WatchedFields holds the values whose change triggers an update email.
type WatchedFields struct {
	StartTime    *time.Time
	EndTime      *time.Time
	Location     *string
	Participants Participants
}

// Watched returns a detached copy of the watched fields.
func (e *Event) Watched() WatchedFields {
	return WatchedFields{
		StartTime:    copyPtr(e.StartTime),
		EndTime:      copyPtr(e.EndTime),
		Location:     copyPtr(e.Location),
		Participants: e.Participants.Clone(),
	}
}

// Clone returns a deep copy that shares no memory with e.
func (e *Event) Clone() *Event {
	c := *e
	c.Description = copyPtr(e.Description)
	c.StartTime = copyPtr(e.StartTime)
	c.EndTime = copyPtr(e.EndTime)
	c.Location = copyPtr(e.Location)
	c.Participants = e.Participants.Clone()
	return &c
}

// NormalizeTimes converts every timestamp to UTC.
func (e *Event) NormalizeTimes() {
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	if e.StartTime != nil {
		t := e.StartTime.UTC()
		e.StartTime = &t
	}
	if e.EndTime != nil {
		t := e.EndTime.UTC()
		e.EndTime = &t
	}
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
