package domain

import (
	"slices"
	"time"
)

// Room is one isolated quiz session with exactly one owner.
type Room struct {
	Code      string
	OwnerID   string
	OwnerName string
	CreatedAt time.Time
	Round     Round

	players []string // connection ids in join order
}

func NewRoom(code, ownerID, ownerName string, createdAt time.Time) *Room {
	return &Room{
		Code:      code,
		OwnerID:   ownerID,
		OwnerName: ownerName,
		CreatedAt: createdAt,
	}
}

// AddPlayer appends a player; adding the same id twice is a no-op.
func (r *Room) AddPlayer(connID string) {
	if r.HasPlayer(connID) {
		return
	}
	r.players = append(r.players, connID)
}

// RemovePlayer drops a player and reports whether it was present.
func (r *Room) RemovePlayer(connID string) bool {
	i := slices.Index(r.players, connID)
	if i < 0 {
		return false
	}
	r.players = slices.Delete(r.players, i, i+1)
	return true
}

func (r *Room) HasPlayer(connID string) bool {
	return slices.Contains(r.players, connID)
}

// Players returns a copy of the player ids in join order.
func (r *Room) Players() []string {
	return slices.Clone(r.players)
}

func (r *Room) PlayerCount() int {
	return len(r.players)
}

func (r *Room) IsEmpty() bool {
	return len(r.players) == 0
}

// Members returns the owner followed by every player.
func (r *Room) Members() []string {
	out := make([]string, 0, len(r.players)+1)
	out = append(out, r.OwnerID)
	return append(out, r.players...)
}

// Expired reports whether the room has no players and is older than ttl.
func (r *Room) Expired(now time.Time, ttl time.Duration) bool {
	return r.IsEmpty() && now.Sub(r.CreatedAt) > ttl
}
