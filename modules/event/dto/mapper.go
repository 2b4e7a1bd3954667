package dto

import (
	"event-service/modules/event/entity"
)

func ToEventEntity(req *CreateEventRequest) *entity.Event {
	event := &entity.Event{
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
	}
	if req.Participants != nil {
		event.Participants = entity.Participants(req.Participants).Clone()
	}
	return event
}

func ToEventPatch(req *UpdateEventRequest) entity.EventPatch {
	return entity.EventPatch{
		Name:         req.Name,
		Description:  req.Description,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Location:     req.Location,
		Participants: req.Participants,
	}
}

func ToEventResponse(event *entity.Event) *EventResponse {
	if event == nil {
		return nil
	}
	resp := &EventResponse{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		Location:    event.Location,
	}
	if event.Participants != nil {
		resp.Participants = []string(event.Participants.Clone())
	}
	if !event.CreatedAt.IsZero() {
		t := event.CreatedAt
		resp.CreatedAt = &t
	}
	if !event.UpdatedAt.IsZero() {
		t := event.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}

func ToEventResponses(events []entity.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, *ToEventResponse(&events[i]))
	}
	return out
}
