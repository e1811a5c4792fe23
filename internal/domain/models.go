package domain

import "time"

// Participant is one identified connection: a room owner or a player.
type Participant struct {
	ConnID       string
	Name         string
	Role         Role
	RoomCode     string
	Score        int
	CorrectCount int
	JoinedAt     time.Time
	joinSeq      uint64
}

// NewParticipant builds a participant; seq orders participants that joined earlier first.
func NewParticipant(connID, name string, role Role, roomCode string, seq uint64, at time.Time) *Participant {
	return &Participant{
		ConnID:   connID,
		Name:     name,
		Role:     role,
		RoomCode: roomCode,
		JoinedAt: at,
		joinSeq:  seq,
	}
}

// JoinSeq is the roster-wide join order of the participant.
func (p *Participant) JoinSeq() uint64 {
	return p.joinSeq
}

// AddPoint records one correct answer.
func (p *Participant) AddPoint() {
	p.Score++
	p.CorrectCount++
}

// ResetStats zeroes score and correct count.
func (p *Participant) ResetStats() {
	p.Score = 0
	p.CorrectCount = 0
}

// RankingEntry is a derived, never stored, view of a player's standing.
type RankingEntry struct {
	Name         string `json:"name"`
	Score        int    `json:"score"`
	CorrectCount int    `json:"correctCount"`
}

// Stats summarizes the registry.
type Stats struct {
	RoomCount        int       `json:"roomCount"`
	TotalPlayers     int       `json:"totalPlayers"`
	ActiveRoundCount int       `json:"activeRoundCount"`
	Timestamp        time.Time `json:"timestamp"`
}

// RosterStats summarizes every identified connection.
type RosterStats struct {
	Participants int     `json:"participants"`
	Owners       int     `json:"owners"`
	Players      int     `json:"players"`
	TotalScore   int     `json:"totalScore"`
	AverageScore float64 `json:"averageScore"`
}

// RoundRecord is the archived outcome of a resolved round.
type RoundRecord struct {
	RoomCode      string        `json:"roomCode"`
	Question      string        `json:"question"`
	CorrectAnswer string        `json:"correctAnswer"`
	Winner        string        `json:"winner"`
	Elapsed       time.Duration `json:"elapsed"`
	PublishedAt   time.Time     `json:"publishedAt"`
	ResolvedAt    time.Time     `json:"resolvedAt"`
}

// Question is a stored question that an owner can publish by ID.
type Question struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt"`
	Options    *Options `json:"options,omitempty"`
	CorrectKey string   `json:"correctKey,omitempty"`
	Answer     string   `json:"answer,omitempty"`
}
