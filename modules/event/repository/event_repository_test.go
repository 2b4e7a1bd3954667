package repository

import (
	"context"
	"reflect"
	"testing"
	"time"

	"event-service/core/database"
	"event-service/core/database/databasetest"
	"event-service/core/errors"
	"event-service/modules/event/entity"
)

func acquire(t *testing.T) database.Handle {
	t.Helper()
	db := databasetest.Open(t)
	h, err := db.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func strPtr(s string) *string { return &s }

func TestCreateAndGetRoundTripsParticipants(t *testing.T) {
	h := acquire(t)
	repo := NewEventRepository()
	ctx := context.Background()

	tests := []struct {
		name         string
		participants entity.Participants
	}{
		{"absent", nil},
		{"empty", entity.Participants{}},
		{"ordered", entity.Participants{"b@x", "a@x", "b@x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := repo.Create(ctx, h, &entity.Event{Name: "Conf", Participants: tt.participants})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			got, err := repo.GetByID(ctx, h, created.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if (got.Participants == nil) != (tt.participants == nil) {
				t.Fatalf("nil-ness changed: got %#v, want %#v", got.Participants, tt.participants)
			}
			if len(tt.participants) > 0 && !reflect.DeepEqual(got.Participants, tt.participants) {
				t.Errorf("participants = %v, want %v", got.Participants, tt.participants)
			}
		})
	}
}

func TestCreateSetsTimestamps(t *testing.T) {
	h := acquire(t)
	repo := NewEventRepository()

	created, err := repo.Create(context.Background(), h, &entity.Event{Name: "Conf"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected an assigned id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.Before(created.CreatedAt) {
		t.Errorf("bad timestamps: created=%v updated=%v", created.CreatedAt, created.UpdatedAt)
	}
	if created.CreatedAt.Location() != time.UTC {
		t.Errorf("expected UTC timestamps, got %v", created.CreatedAt.Location())
	}
}

func TestUpdateAppliesOnlySetFields(t *testing.T) {
	h := acquire(t)
	repo := NewEventRepository()
	ctx := context.Background()

	start := time.Date(2030, 1, 2, 9, 0, 0, 0, time.UTC)
	created, err := repo.Create(ctx, h, &entity.Event{
		Name:         "Conf",
		Description:  strPtr("Annual"),
		StartTime:    &start,
		Location:     strPtr("Virtual"),
		Participants: entity.Participants{"a@x"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	before, after, err := repo.Update(ctx, h, created.ID, entity.EventPatch{Name: entity.Some("X")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if before.Name != "Conf" || after.Name != "X" {
		t.Errorf("names: before=%q after=%q", before.Name, after.Name)
	}
	if *after.Description != "Annual" || *after.Location != "Virtual" || !after.StartTime.Equal(start) {
		t.Errorf("unpatched fields changed: %+v", after)
	}
	if !reflect.DeepEqual(after.Participants, entity.Participants{"a@x"}) {
		t.Errorf("participants changed: %v", after.Participants)
	}
	if !after.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", created.CreatedAt, after.CreatedAt)
	}

	stored, err := repo.GetByID(ctx, h, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Name != "X" {
		t.Errorf("stored name = %q", stored.Name)
	}
}

func TestUpdateNeverMovesUpdatedAtBackwards(t *testing.T) {
	h := acquire(t)
	repo := NewEventRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, h, &entity.Event{Name: "Conf"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	orig := now
	now = func() time.Time { return created.UpdatedAt.Add(-time.Hour) }
	defer func() { now = orig }()

	_, after, err := repo.Update(ctx, h, created.ID, entity.EventPatch{Location: entity.Some("Here")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if after.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf("updated_at went backwards: %v -> %v", created.UpdatedAt, after.UpdatedAt)
	}
}

func TestMissingRowsReportNotFound(t *testing.T) {
	h := acquire(t)
	repo := NewEventRepository()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, h, 42); !errors.HasCode(err, errors.ErrNotFound) {
		t.Errorf("GetByID: expected NOT_FOUND, got %v", err)
	}
	if _, _, err := repo.Update(ctx, h, 42, entity.EventPatch{Name: entity.Some("X")}); !errors.HasCode(err, errors.ErrNotFound) {
		t.Errorf("Update: expected NOT_FOUND, got %v", err)
	}
	if err := repo.Delete(ctx, h, 42); !errors.HasCode(err, errors.ErrNotFound) {
		t.Errorf("Delete: expected NOT_FOUND, got %v", err)
	}
}

func TestDeletedIDsAreNotReused(t *testing.T) {
	h := acquire(t)
	repo := NewEventRepository()
	ctx := context.Background()

	first, err := repo.Create(ctx, h, &entity.Event{Name: "one"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, h, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	second, err := repo.Create(ctx, h, &entity.Event{Name: "two"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if second.ID <= first.ID {
		t.Errorf("id %d reused after deleting %d", second.ID, first.ID)
	}
}

func TestListOrdersByID(t *testing.T) {
	h := acquire(t)
	repo := NewEventRepository()
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if _, err := repo.Create(ctx, h, &entity.Event{Name: name}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	events, err := repo.List(ctx, h)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i-1].ID >= events[i].ID {
			t.Errorf("list not ordered by id: %d before %d", events[i-1].ID, events[i].ID)
		}
	}
}
