package service

import (
	"time"

	"event-service/core/logger"
	"event-service/modules/event/entity"
)

// WatchedFieldsChanged reports whether any watched field differs between the
// two snapshots. Participants compare as multisets. A comparison that panics
// counts as a change.
func WatchedFieldsChanged(pre, post entity.WatchedFields) (changed bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("ChangeDetector: comparison failed, assuming changed", "panic", r)
			changed = true
		}
	}()

	return compareWatched(pre, post)
}

var compareWatched = func(pre, post entity.WatchedFields) bool {
	if timeChanged(pre.StartTime, post.StartTime) || timeChanged(pre.EndTime, post.EndTime) {
		return true
	}
	if stringChanged(pre.Location, post.Location) {
		return true
	}
	return participantsChanged(pre.Participants, post.Participants)
}

// ShouldNotify is true when a watched field changed and the updated event
// still has someone to tell.
func ShouldNotify(pre, post entity.WatchedFields) bool {
	return WatchedFieldsChanged(pre, post) && len(post.Participants) > 0
}

func timeChanged(a, b *time.Time) bool {
	if a == nil || b == nil {
		return (a == nil) != (b == nil)
	}
	return !a.Equal(*b)
}

func stringChanged(a, b *string) bool {
	if a == nil || b == nil {
		return (a == nil) != (b == nil)
	}
	return *a != *b
}

func participantsChanged(a, b entity.Participants) bool {
	if a == nil || b == nil {
		return (a == nil) != (b == nil)
	}
	if len(a) != len(b) {
		return true
	}
	counts := make(map[string]int, len(a))
	for _, p := range a {
		counts[p]++
	}
	for _, p := range b {
		counts[p]--
		if counts[p] < 0 {
			return true
		}
	}
	return false
}
