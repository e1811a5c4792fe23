package memory

import (
	"testing"
	"time"

	"quiz-duel-service/internal/domain"
)

func TestRoomStoreLifecycle(t *testing.T) {
	store := NewRoomStore()
	now := time.Now()

	room := domain.NewRoom("ABC123", "owner-1", "Ada", now)
	if !store.Insert(room) {
		t.Fatalf("expected insert to succeed")
	}
	if store.Insert(domain.NewRoom("ABC123", "owner-2", "Bo", now)) {
		t.Fatalf("expected duplicate code to be rejected")
	}
	got, ok := store.Get("ABC123")
	if !ok || got.OwnerName != "Ada" {
		t.Fatalf("expected original room, got %+v", got)
	}

	store.Delete("ABC123")
	if _, ok := store.Get("ABC123"); ok {
		t.Fatalf("expected room removed")
	}
	if !store.Insert(domain.NewRoom("ABC123", "owner-2", "Bo", now)) {
		t.Fatalf("expected code to be reusable after delete")
	}
}

func TestRoomStoreListOrdersByCreation(t *testing.T) {
	store := NewRoomStore()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	store.Insert(domain.NewRoom("BBBBBB", "o2", "Bo", base.Add(time.Minute)))
	store.Insert(domain.NewRoom("AAAAAA", "o1", "Ada", base))
	store.Insert(domain.NewRoom("CCCCCC", "o3", "Cy", base.Add(2*time.Minute)))

	rooms := store.List()
	if len(rooms) != 3 {
		t.Fatalf("expected 3 rooms, got %d", len(rooms))
	}
	for i, code := range []string{"AAAAAA", "BBBBBB", "CCCCCC"} {
		if rooms[i].Code != code {
			t.Fatalf("position %d: expected %s, got %s", i, code, rooms[i].Code)
		}
	}
}
