package domain

import "errors"

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("the room is full, only two participants are allowed")
	ErrNotMember    = errors.New("connection is not a member of the room")
	ErrAlreadyIn    = errors.New("connection already holds a seat in the room")
	ErrBadPayload   = errors.New("bad payload")
	ErrRateLimited  = errors.New("too many requests")
)

// ErrorCode is the structured error kind carried by the "error" event.
type ErrorCode string

const (
	CodeRoomNotFound ErrorCode = "room_not_found"
	CodeRoomFull     ErrorCode = "room_full"
	CodeNotMember    ErrorCode = "not_member"
	CodeAlreadyIn    ErrorCode = "already_in_room"
	CodeBadPayload   ErrorCode = "bad_payload"
	CodeRateLimited  ErrorCode = "rate_limited"
	CodeUnknownEvent ErrorCode = "unknown_event"
	CodeInternal     ErrorCode = "internal"
)

// CodeOf maps an error to the code reported to clients.
func CodeOf(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, ErrRoomFull):
		return CodeRoomFull
	case errors.Is(err, ErrNotMember):
		return CodeNotMember
	case errors.Is(err, ErrAlreadyIn):
		return CodeAlreadyIn
	case errors.Is(err, ErrBadPayload), errors.Is(err, ErrUsernameTooLong):
		return CodeBadPayload
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	default:
		return CodeInternal
	}
}
