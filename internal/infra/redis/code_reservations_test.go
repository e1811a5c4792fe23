package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestCodeReservationsReserveAndRelease(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	res := NewCodeReservations(newClient(mr), time.Minute)

	ok, err := res.Reserve(ctx, "ABC123", "owner-1")
	if err != nil || !ok {
		t.Fatalf("expected reserve to succeed, got %v, %v", ok, err)
	}
	if ttl := mr.TTL("quiz:room:ABC123"); ttl != time.Minute {
		t.Fatalf("expected ttl of a minute, got %v", ttl)
	}

	ok, err = res.Reserve(ctx, "ABC123", "owner-2")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if ok {
		t.Fatalf("expected second reserve of the same code to fail")
	}

	if err := res.Release(ctx, "ABC123"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if mr.Exists("quiz:room:ABC123") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestCodeReservationsRejectsCodeHeldElsewhere(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	if err := mr.Set("quiz:room:ABC123", "other-instance"); err != nil {
		t.Fatalf("seed key: %v", err)
	}
	res := NewCodeReservations(newClient(mr), time.Minute)

	ok, err := res.Reserve(context.Background(), "ABC123", "owner-1")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if ok {
		t.Fatalf("expected reserve to fail for a code held elsewhere")
	}
	if got, _ := mr.Get("quiz:room:ABC123"); got != "other-instance" {
		t.Fatalf("expected the other holder to keep the code, got %q", got)
	}
}

func TestCodeReservationsRefreshKeepsLiveCodes(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	res := NewCodeReservations(newClient(mr), time.Minute)
	for _, code := range []string{"LIVE01", "GONE01"} {
		if _, err := res.Reserve(ctx, code, "owner"); err != nil {
			t.Fatalf("reserve %s: %v", code, err)
		}
	}

	mr.FastForward(40 * time.Second)
	if err := res.Refresh(ctx, []string{"LIVE01"}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	mr.FastForward(40 * time.Second)

	if !mr.Exists("quiz:room:LIVE01") {
		t.Fatalf("expected refreshed code to survive")
	}
	if mr.Exists("quiz:room:GONE01") {
		t.Fatalf("expected unrefreshed code to expire")
	}
}

func TestCodeReservationsReportsRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	res := NewCodeReservations(client, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := res.Reserve(ctx, "ABC123", "owner-1"); err == nil {
		t.Fatalf("expected an error without redis")
	}
}
