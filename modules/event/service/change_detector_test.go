package service

import (
	"testing"
	"time"

	"event-service/modules/event/entity"
)

func TestWatchedFieldsChanged(t *testing.T) {
	t1 := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	t1Other := t1.In(time.FixedZone("UTC+2", 2*3600))
	t2 := t1.Add(time.Hour)
	loc := func(s string) *string { return &s }

	tests := []struct {
		name string
		pre  entity.WatchedFields
		post entity.WatchedFields
		want bool
	}{
		{"all absent", entity.WatchedFields{}, entity.WatchedFields{}, false},
		{"same instant different zone", entity.WatchedFields{StartTime: &t1}, entity.WatchedFields{StartTime: &t1Other}, false},
		{"start moved", entity.WatchedFields{StartTime: &t1}, entity.WatchedFields{StartTime: &t2}, true},
		{"end added", entity.WatchedFields{}, entity.WatchedFields{EndTime: &t2}, true},
		{"end removed", entity.WatchedFields{EndTime: &t2}, entity.WatchedFields{}, true},
		{"same location", entity.WatchedFields{Location: loc("A")}, entity.WatchedFields{Location: loc("A")}, false},
		{"new location", entity.WatchedFields{Location: loc("A")}, entity.WatchedFields{Location: loc("B")}, true},
		{"participants permuted", entity.WatchedFields{Participants: entity.Participants{"a", "b"}}, entity.WatchedFields{Participants: entity.Participants{"b", "a"}}, false},
		{"participants duplicate counts", entity.WatchedFields{Participants: entity.Participants{"a", "a", "b"}}, entity.WatchedFields{Participants: entity.Participants{"a", "b", "b"}}, true},
		{"participants replaced", entity.WatchedFields{Participants: entity.Participants{"a", "b"}}, entity.WatchedFields{Participants: entity.Participants{"c", "d"}}, true},
		{"participants absent to empty", entity.WatchedFields{}, entity.WatchedFields{Participants: entity.Participants{}}, true},
		{"participants empty to empty", entity.WatchedFields{Participants: entity.Participants{}}, entity.WatchedFields{Participants: entity.Participants{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WatchedFieldsChanged(tt.pre, tt.post); got != tt.want {
				t.Errorf("WatchedFieldsChanged() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldNotifyRequiresRecipients(t *testing.T) {
	loc := func(s string) *string { return &s }

	if ShouldNotify(
		entity.WatchedFields{Location: loc("A"), Participants: entity.Participants{}},
		entity.WatchedFields{Location: loc("B"), Participants: entity.Participants{}},
	) {
		t.Error("expected no notification without participants")
	}
	if !ShouldNotify(
		entity.WatchedFields{Participants: entity.Participants{"a@x"}},
		entity.WatchedFields{Participants: entity.Participants{"b@x"}},
	) {
		t.Error("expected notification for replaced participants")
	}
	if ShouldNotify(
		entity.WatchedFields{Location: loc("A"), Participants: entity.Participants{"a@x"}},
		entity.WatchedFields{Location: loc("A"), Participants: entity.Participants{"a@x"}},
	) {
		t.Error("expected no notification for equal-value write")
	}
}

func TestSnapshotSurvivesMutation(t *testing.T) {
	event := &entity.Event{Participants: entity.Participants{"a@x", "b@x"}}
	pre := event.Watched()

	event.Participants[0] = "z@x"

	if pre.Participants[0] != "a@x" {
		t.Fatalf("snapshot aliased the event: %v", pre.Participants)
	}
	if !WatchedFieldsChanged(pre, event.Watched()) {
		t.Error("expected in-place mutation to register as a change")
	}
}

func TestWatchedFieldsChangedFailsOpen(t *testing.T) {
	orig := compareWatched
	compareWatched = func(entity.WatchedFields, entity.WatchedFields) bool { panic("corrupt snapshot") }
	t.Cleanup(func() { compareWatched = orig })

	same := entity.WatchedFields{Participants: entity.Participants{"a@x"}}
	if !WatchedFieldsChanged(same, same) {
		t.Error("a failed comparison must count as a change")
	}
	if !ShouldNotify(same, same) {
		t.Error("a failed comparison with participants must notify")
	}
}
