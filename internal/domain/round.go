package domain

import (
	"strings"
	"time"
)

// RoundState is the lifecycle position of the room's current question.
type RoundState int

const (
	RoundIdle RoundState = iota
	RoundActive
	RoundResolved
)

func (s RoundState) String() string {
	switch s {
	case RoundIdle:
		return "idle"
	case RoundActive:
		return "active"
	case RoundResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// AnswerMode tells how submissions are compared with the key.
type AnswerMode string

const (
	AnswerFreeText AnswerMode = "free-text"
	AnswerChoice   AnswerMode = "choice"
)

// ChoiceKeys are the only valid keys of a single-choice question.
var ChoiceKeys = []string{"a", "b", "c", "d"}

// Options are the four public choices of a single-choice question.
type Options struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
	D string `json:"d"`
}

// Get returns the option text for key a..d.
func (o Options) Get(key string) (string, bool) {
	switch key {
	case "a":
		return o.A, true
	case "b":
		return o.B, true
	case "c":
		return o.C, true
	case "d":
		return o.D, true
	}
	return "", false
}

// AnswerSpec holds the correct answer of a round. It never leaves the coordinator
// before the round resolves.
type AnswerSpec struct {
	Mode    AnswerMode
	Key     string // normalized
	Display string
	Options *Options
}

// Round is the per-room question state machine: Idle -> Active -> Resolved -> (reset) Idle.
type Round struct {
	State       RoundState
	Question    string
	Answer      AnswerSpec
	Winner      string
	PublishedAt time.Time
	ResolvedAt  time.Time
}

// Publish starts a new round with the given question, replacing whatever was there.
func (r *Round) Publish(question string, answer AnswerSpec, at time.Time) {
	r.State = RoundActive
	r.Question = question
	r.Answer = answer
	r.Winner = ""
	r.PublishedAt = at
	r.ResolvedAt = time.Time{}
}

// IsActive reports whether submissions are currently accepted.
func (r *Round) IsActive() bool {
	return r.State == RoundActive
}

// Matches compares a submission with the normalized key.
func (r *Round) Matches(submitted string) bool {
	return r.Answer.Key != "" && Normalize(submitted) == r.Answer.Key
}

// TryResolve moves Active to Resolved and records the winner. It returns false when
// the round was not Active, so only the first caller ever wins.
func (r *Round) TryResolve(winner string, at time.Time) bool {
	if r.State != RoundActive {
		return false
	}
	r.State = RoundResolved
	r.Winner = winner
	r.ResolvedAt = at
	return true
}

// Reset clears question and answer and returns to Idle.
func (r *Round) Reset() {
	*r = Round{}
}

// Elapsed is the time between publication and resolution.
func (r *Round) Elapsed() time.Duration {
	if r.State != RoundResolved || r.PublishedAt.IsZero() {
		return 0
	}
	return r.ResolvedAt.Sub(r.PublishedAt)
}

// Public returns the question as players may see it, or nil when no round is active.
func (r *Round) Public() *PublicQuestion {
	if r.State != RoundActive {
		return nil
	}
	return &PublicQuestion{Question: r.Question, Options: r.Answer.Options}
}

// Normalize trims, collapses inner whitespace and case-folds an answer.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
