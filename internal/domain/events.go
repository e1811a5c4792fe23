package domain

import "time"

// EventType names an inbound or outbound message.
type EventType string

// Inbound events (client -> coordinator).
const (
	EventCreateRoom      EventType = "create-room"
	EventJoinRoom        EventType = "join-room"
	EventPublishQuestion EventType = "publish-question"
	EventSubmitAnswer    EventType = "submit-answer"
	EventResetRound      EventType = "reset-round"
	EventGetRoomInfo     EventType = "get-room-info"
	EventGetRanking      EventType = "get-ranking"
	EventGetStats        EventType = "get-stats"
	EventReport          EventType = "report"
)

// Outbound events (coordinator -> client).
const (
	EventRoomCreated       EventType = "room-created"
	EventRoomJoined        EventType = "room-joined"
	EventParticipantJoined EventType = "participant-joined"
	EventParticipantLeft   EventType = "participant-left"
	EventQuestionPublished EventType = "question-published"
	EventRoundStarted      EventType = "round-started"
	EventAnswerCorrect     EventType = "answer-correct"
	EventRoundEnded        EventType = "round-ended"
	EventAnswerIncorrect   EventType = "answer-incorrect"
	EventAnswerAttempt     EventType = "answer-attempt"
	EventGameReset         EventType = "game-reset"
	EventRoomClosed        EventType = "room-closed"
	EventRoomInfo          EventType = "room-info"
	EventRankingUpdated    EventType = "ranking-updated"
	EventSystemStats       EventType = "system-stats"
	EventReportReceived    EventType = "report-received"
	EventReportSent        EventType = "report-sent"

	EventErrorUnidentified      EventType = "error-unidentified"
	EventErrorNoPermission      EventType = "error-no-permission"
	EventErrorRoomNotFound      EventType = "error-room-not-found"
	EventErrorRoundNotActive    EventType = "error-round-not-active"
	EventErrorOwnerCannotAnswer EventType = "error-owner-cannot-answer"
	EventErrorAlreadyJoined     EventType = "error-already-joined"
	EventErrorValidation        EventType = "error-validation"
	EventErrorInternal          EventType = "error-internal"
)

// Outbound is one message addressed to a fixed set of connections. Room multicasts are
// resolved to the room's members at the moment the event is processed.
type Outbound struct {
	To      []string
	Type    EventType
	Payload any
}

// Unicast addresses a single connection.
func Unicast(connID string, typ EventType, payload any) Outbound {
	return Outbound{To: []string{connID}, Type: typ, Payload: payload}
}

// Multicast addresses every current member of a room.
func Multicast(room *Room, typ EventType, payload any) Outbound {
	return Outbound{To: room.Members(), Type: typ, Payload: payload}
}

// QuestionInput is the owner's publish-question payload.
type QuestionInput struct {
	QuestionID string   `json:"questionId,omitempty"`
	Question   string   `json:"question"`
	Options    *Options `json:"options,omitempty"`
	CorrectKey string   `json:"correctKey,omitempty"`
	Answer     string   `json:"answer,omitempty"`
}

// ReportInput is a player's report forwarded to the owner.
type ReportInput struct {
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

// PublicQuestion is the question without its answer.
type PublicQuestion struct {
	Question string   `json:"question"`
	Options  *Options `json:"options,omitempty"`
}

type RoomCreatedPayload struct {
	Code      string `json:"code"`
	OwnerName string `json:"ownerName"`
}

type RoomJoinedPayload struct {
	Code      string          `json:"code"`
	OwnerName string          `json:"ownerName"`
	Question  *PublicQuestion `json:"question,omitempty"`
}

type ParticipantPayload struct {
	Name        string `json:"name"`
	PlayerCount int    `json:"playerCount"`
}

type AnswerCorrectPayload struct {
	Score        int `json:"score"`
	CorrectCount int `json:"correctCount"`
}

type RoundEndedPayload struct {
	Winner        string         `json:"winner"`
	CorrectAnswer string         `json:"correctAnswer"`
	Question      string         `json:"question"`
	ElapsedMs     int64          `json:"elapsedMs"`
	Ranking       []RankingEntry `json:"ranking"`
}

type AnswerIncorrectPayload struct {
	SubmittedText string `json:"submittedText"`
}

type AnswerAttemptPayload struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

type RoomClosedPayload struct {
	Reason string `json:"reason"`
}

type RoomInfoPayload struct {
	Code        string          `json:"code"`
	OwnerName   string          `json:"ownerName"`
	PlayerCount int             `json:"playerCount"`
	IsOwner     bool            `json:"isOwner"`
	RoundActive bool            `json:"roundActive"`
	Question    *PublicQuestion `json:"question,omitempty"`
}

type RankingPayload struct {
	Ranking  []RankingEntry `json:"ranking"`
	Position int            `json:"position"`
	Total    int            `json:"total"`
}

type SystemStatsPayload struct {
	Rooms  Stats       `json:"rooms"`
	Roster RosterStats `json:"roster"`
}

type ReportReceivedPayload struct {
	ReportedBy string    `json:"reportedBy"`
	Reason     string    `json:"reason"`
	Details    string    `json:"details"`
	At         time.Time `json:"at"`
}

// ErrorPayload is sent with every error event.
type ErrorPayload struct {
	Message string `json:"message"`
}
