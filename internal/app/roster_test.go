package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-duel-service/internal/domain"
)

func TestRosterRankingOrder(t *testing.T) {
	r := newRosterWithClock(func() time.Time { return time.Unix(0, 0) })
	r.Register("owner", "Ada", domain.RoleOwner, "ROOM01")
	r.Register("p1", "First", domain.RolePlayer, "ROOM01")
	r.Register("p2", "Second", domain.RolePlayer, "ROOM01")
	r.Register("p3", "Third", domain.RolePlayer, "ROOM01")
	r.Register("other", "Elsewhere", domain.RolePlayer, "ROOM02")

	// scores 1, 2, 3 for p1, p2, p3
	for _, id := range []string{"p2", "p3", "p3", "p1", "p3", "p2"} {
		_, ok := r.IncrementScore(id)
		require.True(t, ok)
	}

	ranking := r.Ranking("ROOM01")
	require.Len(t, ranking, 3, "owner and other rooms excluded")
	assert.Equal(t, []string{"Third", "Second", "First"}, names(ranking))
	assert.Equal(t, 3, ranking[0].Score)
	assert.Equal(t, 3, ranking[0].CorrectCount)

	assert.Equal(t, 1, r.Position("ROOM01", "p3"))
	assert.Equal(t, 3, r.Position("ROOM01", "p1"))
	assert.Equal(t, 0, r.Position("ROOM01", "owner"))
}

func TestRosterTiesKeepJoinOrder(t *testing.T) {
	r := NewRoster()
	r.Register("b", "Bo", domain.RolePlayer, "ROOM01")
	r.Register("a", "Al", domain.RolePlayer, "ROOM01")
	r.Register("c", "Cy", domain.RolePlayer, "ROOM01")
	r.IncrementScore("c")

	assert.Equal(t, []string{"Cy", "Bo", "Al"}, names(r.Ranking("ROOM01")))
}

func TestRosterResetAndRemove(t *testing.T) {
	r := NewRoster()
	r.Register("owner", "Ada", domain.RoleOwner, "ROOM01")
	r.Register("p1", "Bo", domain.RolePlayer, "ROOM01")
	r.Register("p2", "Cy", domain.RolePlayer, "ROOM02")
	r.IncrementScore("p1")
	r.IncrementScore("p2")

	assert.Equal(t, 1, r.ResetStats("ROOM01"))
	p1, _ := r.Get("p1")
	assert.Zero(t, p1.Score)
	p2, _ := r.Get("p2")
	assert.Equal(t, 1, p2.Score, "other rooms untouched")

	r.Remove("p1")
	r.Remove("p1")
	_, ok := r.Get("p1")
	assert.False(t, ok)
	assert.Equal(t, 2, r.Len())

	_, ok = r.IncrementScore("p1")
	assert.False(t, ok)
}

func TestRosterStats(t *testing.T) {
	r := NewRoster()
	r.Register("owner", "Ada", domain.RoleOwner, "ROOM01")
	r.Register("p1", "Bo", domain.RolePlayer, "ROOM01")
	r.Register("p2", "Cy", domain.RolePlayer, "ROOM01")
	r.Register("p3", "Di", domain.RolePlayer, "ROOM01")
	r.IncrementScore("p1")
	r.IncrementScore("p1")

	st := r.Stats()
	assert.Equal(t, 4, st.Participants)
	assert.Equal(t, 1, st.Owners)
	assert.Equal(t, 3, st.Players)
	assert.Equal(t, 2, st.TotalScore)
	assert.InDelta(t, 0.5, st.AverageScore, 1e-9)
}

func names(entries []domain.RankingEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}
