package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"event-service/core/database"
	"event-service/core/errors"
	"event-service/modules/event/entity"

	"github.com/emersion/go-ical"
	"github.com/gosimple/slug"
)

const calendarProductID = "-//event-service//EN"

// CalendarFile is an event rendered as a single-VEVENT iCalendar document.
type CalendarFile struct {
	Filename string
	Content  []byte
}

func (s *EventService) ExportEvent(ctx context.Context, id int64) (*CalendarFile, *errors.AppError) {
	var file *CalendarFile
	err := s.withHandle(ctx, func(h database.Handle) error {
		event, err := s.repo.GetByID(ctx, h, id)
		if err != nil {
			return err
		}
		file, err = renderCalendar(event, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, failure("Failed to export event", err)
	}
	return file, nil
}

func renderCalendar(event *entity.Event, stamp time.Time) (*CalendarFile, error) {
	vevent := ical.NewComponent(ical.CompEvent)
	vevent.Props.SetText(ical.PropUID, fmt.Sprintf("event-%d@event-service", event.ID))
	vevent.Props.SetText(ical.PropSummary, event.Name)
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	vevent.Props.SetDateTime(ical.PropLastModified, event.UpdatedAt)
	if event.StartTime != nil {
		vevent.Props.SetDateTime(ical.PropDateTimeStart, *event.StartTime)
		if event.EndTime != nil {
			vevent.Props.SetDateTime(ical.PropDateTimeEnd, *event.EndTime)
		}
	}
	if event.Description != nil {
		vevent.Props.SetText(ical.PropDescription, *event.Description)
	}
	if event.Location != nil {
		vevent.Props.SetText(ical.PropLocation, *event.Location)
	}
	for _, attendee := range event.Participants {
		p := ical.NewProp(ical.PropAttendee)
		p.SetText(fmt.Sprintf("mailto:%s", attendee))
		vevent.Props.Add(p)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, calendarProductID)
	cal.Props.SetText(ical.PropMethod, "PUBLISH")
	cal.Children = append(cal.Children, vevent)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode event to iCal format: %w", err)
	}

	name := slug.Make(event.Name)
	if name == "" {
		name = fmt.Sprintf("event-%d", event.ID)
	}
	return &CalendarFile{Filename: name + ".ics", Content: buf.Bytes()}, nil
}
