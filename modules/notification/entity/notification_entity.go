package entity

import (
	"fmt"
	"strings"
	"time"

	eventEntity "event-service/modules/event/entity"
)

const subjectPrefix = "Event Update: "

// EventUpdateEmail is the message sent to participants after a watched field
// of their event changes.
type EventUpdateEmail struct {
	EventID    int64
	Recipients []string
	Subject    string
	Body       string
}

// NewEventUpdateEmail composes the message from the event's current state.
// Absent values render as empty strings.
func NewEventUpdateEmail(event *eventEntity.Event) *EventUpdateEmail {
	var b strings.Builder
	fmt.Fprintf(&b, "Event '%s' has been updated.\n\n", event.Name)
	b.WriteString("Updated details:\n")
	fmt.Fprintf(&b, "Description: %s\n", deref(event.Description))
	fmt.Fprintf(&b, "Start time: %s\n", formatTime(event.StartTime))
	fmt.Fprintf(&b, "End time: %s\n", formatTime(event.EndTime))
	fmt.Fprintf(&b, "Location: %s\n", deref(event.Location))
	fmt.Fprintf(&b, "Participants: %s\n", strings.Join(event.Participants, ", "))

	return &EventUpdateEmail{
		EventID:    event.ID,
		Recipients: []string(event.Participants.Clone()),
		Subject:    subjectPrefix + event.Name,
		Body:       b.String(),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
