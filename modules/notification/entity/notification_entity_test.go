package entity

import (
	"strings"
	"testing"
	"time"

	eventEntity "event-service/modules/event/entity"
)

func TestNewEventUpdateEmail(t *testing.T) {
	desc, loc := "Annual", "New Venue"
	start := time.Date(2030, 3, 4, 9, 30, 0, 0, time.UTC)
	event := &eventEntity.Event{
		ID:           7,
		Name:         "Conf",
		Description:  &desc,
		StartTime:    &start,
		Location:     &loc,
		Participants: eventEntity.Participants{"a@x", "b@x"},
	}

	email := NewEventUpdateEmail(event)

	if email.Subject != "Event Update: Conf" {
		t.Errorf("subject = %q", email.Subject)
	}
	want := "Event 'Conf' has been updated.\n\n" +
		"Updated details:\n" +
		"Description: Annual\n" +
		"Start time: 2030-03-04T09:30:00Z\n" +
		"End time: \n" +
		"Location: New Venue\n" +
		"Participants: a@x, b@x\n"
	if email.Body != want {
		t.Errorf("body mismatch\ngot:\n%s\nwant:\n%s", email.Body, want)
	}
	if strings.Join(email.Recipients, ",") != "a@x,b@x" {
		t.Errorf("recipients = %v", email.Recipients)
	}

	event.Participants[0] = "z@x"
	if email.Recipients[0] != "a@x" {
		t.Error("recipients alias the event's participants")
	}
}
