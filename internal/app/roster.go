package app

import (
	"sort"
	"sync"
	"time"

	"quiz-duel-service/internal/domain"
)

// Roster maps connection ids to participants. It is the only owner of participant records.
type Roster struct {
	mu           sync.RWMutex
	now          func() time.Time
	seq          uint64
	participants map[string]*domain.Participant
}

func NewRoster() *Roster {
	return newRosterWithClock(time.Now)
}

func newRosterWithClock(now func() time.Time) *Roster {
	return &Roster{
		now:          now,
		participants: make(map[string]*domain.Participant),
	}
}

// Register creates the participant for a connection, replacing any previous record.
func (r *Roster) Register(connID, name string, role domain.Role, roomCode string) *domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	p := domain.NewParticipant(connID, name, role, roomCode, r.seq, r.now())
	r.participants[connID] = p
	return p
}

func (r *Roster) Get(connID string) (*domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[connID]
	return p, ok
}

// Remove drops a connection. Removing an unknown id is a no-op.
func (r *Roster) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.participants, connID)
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// IncrementScore adds one point and one correct answer.
func (r *Roster) IncrementScore(connID string) (*domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[connID]
	if !ok {
		return nil, false
	}
	p.AddPoint()
	return p, true
}

// Ranking lists the room's players (owner excluded) by score, highest first. Equal
// scores keep join order.
func (r *Roster) Ranking(roomCode string) []domain.RankingEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	players := r.rankedLocked(roomCode)
	entries := make([]domain.RankingEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, domain.RankingEntry{
			Name:         p.Name,
			Score:        p.Score,
			CorrectCount: p.CorrectCount,
		})
	}
	return entries
}

// Position returns the 1-based ranking position of a player, or 0 when absent.
func (r *Roster) Position(roomCode, connID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, p := range r.rankedLocked(roomCode) {
		if p.ConnID == connID {
			return i + 1
		}
	}
	return 0
}

// ResetStats zeroes every player of the room and returns how many were reset.
func (r *Roster) ResetStats(roomCode string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.participants {
		if p.RoomCode == roomCode && p.Role == domain.RolePlayer {
			p.ResetStats()
			n++
		}
	}
	return n
}

func (r *Roster) Stats() domain.RosterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var st domain.RosterStats
	for _, p := range r.participants {
		st.Participants++
		switch p.Role {
		case domain.RoleOwner:
			st.Owners++
		case domain.RolePlayer:
			st.Players++
		}
		st.TotalScore += p.Score
	}
	if st.Participants > 0 {
		st.AverageScore = float64(st.TotalScore) / float64(st.Participants)
	}
	return st
}

func (r *Roster) rankedLocked(roomCode string) []*domain.Participant {
	players := make([]*domain.Participant, 0)
	for _, p := range r.participants {
		if p.RoomCode == roomCode && p.Role == domain.RolePlayer {
			players = append(players, p)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].Score != players[j].Score {
			return players[i].Score > players[j].Score
		}
		return players[i].JoinSeq() < players[j].JoinSeq()
	})
	return players
}
