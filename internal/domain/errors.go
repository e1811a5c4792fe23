package domain

import "errors"

var (
	// ErrUnidentified is returned for events from a connection with no roster entry.
	ErrUnidentified = errors.New("connection is not identified")
	// ErrNoPermission is returned when a non-owner attempts an owner-only action.
	ErrNoPermission = errors.New("only the room owner can perform this action")
	// ErrRoomNotFound indicates the room code has no live room.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoundNotActive is returned for answers submitted outside an active round.
	ErrRoundNotActive = errors.New("round is not active")
	// ErrOwnerCannotAnswer is returned when the owner submits an answer.
	ErrOwnerCannotAnswer = errors.New("the room owner cannot answer")
	// ErrAlreadyJoined is returned when an identified connection creates or joins again.
	ErrAlreadyJoined = errors.New("connection already belongs to a room")
	// ErrQuestionNotFound indicates a question bank lookup missed.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInternal is reported when a handler fails unexpectedly.
	ErrInternal = errors.New("internal error")
)

// ValidationError reports malformed input. It is always recoverable.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// ErrorEvent maps an error onto the outbound error event sent to the triggering connection.
func ErrorEvent(err error) (EventType, ErrorPayload) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return EventErrorValidation, ErrorPayload{Message: verr.Message}
	case errors.Is(err, ErrUnidentified):
		return EventErrorUnidentified, ErrorPayload{Message: err.Error()}
	case errors.Is(err, ErrNoPermission):
		return EventErrorNoPermission, ErrorPayload{Message: err.Error()}
	case errors.Is(err, ErrRoomNotFound):
		return EventErrorRoomNotFound, ErrorPayload{Message: err.Error()}
	case errors.Is(err, ErrRoundNotActive):
		return EventErrorRoundNotActive, ErrorPayload{Message: err.Error()}
	case errors.Is(err, ErrOwnerCannotAnswer):
		return EventErrorOwnerCannotAnswer, ErrorPayload{Message: err.Error()}
	case errors.Is(err, ErrAlreadyJoined):
		return EventErrorAlreadyJoined, ErrorPayload{Message: err.Error()}
	case errors.Is(err, ErrQuestionNotFound):
		return EventErrorValidation, ErrorPayload{Message: err.Error()}
	default:
		return EventErrorInternal, ErrorPayload{Message: ErrInternal.Error()}
	}
}
