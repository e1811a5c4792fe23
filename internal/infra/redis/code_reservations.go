package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeReservations implements app.CodeReserver with one key per live room code
// (SET NX with TTL), so instances sharing a Redis never hand out the same code.
// Rooms themselves stay in the local store. Keys expire unless Refresh runs more often
// than the TTL.
type CodeReservations struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCodeReservations(client *redis.Client, ttl time.Duration) *CodeReservations {
	return &CodeReservations{client: client, ttl: ttl}
}

func (r *CodeReservations) Reserve(ctx context.Context, code, ownerID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, reservationKey(code), ownerID, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve %s: %w", code, err)
	}
	return ok, nil
}

func (r *CodeReservations) Release(ctx context.Context, code string) error {
	if err := r.client.Del(ctx, reservationKey(code)).Err(); err != nil {
		return fmt.Errorf("release %s: %w", code, err)
	}
	return nil
}

func (r *CodeReservations) Refresh(ctx context.Context, codes []string) error {
	pipe := r.client.Pipeline()
	for _, code := range codes {
		pipe.Expire(ctx, reservationKey(code), r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("refresh %d codes: %w", len(codes), err)
	}
	return nil
}

func reservationKey(code string) string {
	return "quiz:room:" + code
}
