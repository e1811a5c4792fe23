package app

import (
	"context"
	"errors"
	"time"
)

// DefaultMaintenanceInterval is how often Maintain sweeps expired rooms.
const DefaultMaintenanceInterval = 30 * time.Minute

// Maintain sweeps expired rooms, refreshes the code claims of live rooms and logs registry
// stats every interval until ctx is canceled. The interval should stay below the claim TTL.
func (c *Coordinator) Maintain(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultMaintenanceInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.maintainOnce(ctx); err != nil {
				if ctx.Err() != nil || errors.Is(err, ErrCoordinatorStopped) {
					return nil
				}
				return err
			}
		}
	}
}

func (c *Coordinator) maintainOnce(ctx context.Context) error {
	out, err := c.Sweep(ctx)
	if err != nil {
		return err
	}
	if err := c.refreshCodes(ctx); err != nil {
		return err
	}
	rooms, roster, err := c.Stats(ctx)
	if err != nil {
		return err
	}
	c.logger.Info().
		Int("notified", len(out)).
		Int("rooms", rooms.RoomCount).
		Int("players", rooms.TotalPlayers).
		Int("active_rounds", rooms.ActiveRoundCount).
		Int("participants", roster.Participants).
		Msg("maintenance sweep")
	return nil
}
