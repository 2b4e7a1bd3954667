package entity

import (
	"bytes"
	"encoding/json"
	"time"
)

// Optional marks whether a field was supplied. It only ever decodes to Set when
// the JSON key is present with a non-null value.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Optional[T]{Value: v, Set: true}
	return nil
}

// EventPatch is a partial update. Fields left unset are not touched.
type EventPatch struct {
	Name         Optional[string]
	Description  Optional[string]
	StartTime    Optional[time.Time]
	EndTime      Optional[time.Time]
	Location     Optional[string]
	Participants Optional[[]string]
}

// Apply assigns every set field of the patch to e.
func (p EventPatch) Apply(e *Event) {
	if p.Name.Set {
		e.Name = p.Name.Value
	}
	if p.Description.Set {
		v := p.Description.Value
		e.Description = &v
	}
	if p.StartTime.Set {
		v := p.StartTime.Value.UTC()
		e.StartTime = &v
	}
	if p.EndTime.Set {
		v := p.EndTime.Value.UTC()
		e.EndTime = &v
	}
	if p.Location.Set {
		v := p.Location.Value
		e.Location = &v
	}
	if p.Participants.Set {
		list := make(Participants, len(p.Participants.Value))
		copy(list, p.Participants.Value)
		e.Participants = list
	}
}
