package domain

import "encoding/json"

// EventType names a frame on the signaling socket.
type EventType string

// Client -> Server events.
const (
	EvCreateRoom        EventType = "create:room"
	EvJoinRoom          EventType = "join:room"
	EvRequestRoomInfo   EventType = "request:room:info"
	EvStartMeeting      EventType = "meeting:start"
	EvLeaveMeeting      EventType = "leave:meeting"
	EvUserCall          EventType = "user:call"
	EvCallAccepted      EventType = "call:accepted"
	EvNegotiationNeeded EventType = "peer:nego:needed"
	EvNegotiationDone   EventType = "peer:nego:done"
	EvRequestStart      EventType = "start:meeting:request"
	EvAcceptStart       EventType = "meeting:accepted"
	EvDeclineStart      EventType = "meeting:declined"
	EvToggleMedia       EventType = "media:toggle"
	EvSendFile          EventType = "file:send"
	EvPing              EventType = "ping"
	EvWhoAmI            EventType = "whoami"
)

// InboundEvents lists every event a client may send.
var InboundEvents = []EventType{
	EvCreateRoom, EvJoinRoom, EvRequestRoomInfo, EvStartMeeting, EvLeaveMeeting,
	EvUserCall, EvCallAccepted, EvNegotiationNeeded, EvNegotiationDone,
	EvRequestStart, EvAcceptStart, EvDeclineStart, EvToggleMedia, EvSendFile,
	EvPing, EvWhoAmI,
}

// Server -> Client events. Some names are shared with inbound events.
const (
	EvConnectionReady      EventType = "connection:ready"
	EvRoomCreated          EventType = "room:created"
	EvRoomJoined           EventType = "room:joined"
	EvRoomFull             EventType = "room:full"
	EvParticipantJoined    EventType = "participant:joined"
	EvRoomInfo             EventType = "room:info"
	EvMeetingStarted       EventType = "meeting:started"
	EvMeetingEnded         EventType = "meeting:ended"
	EvIncomingCall         EventType = "incoming:call"
	EvNegotiationNeededOut EventType = "peer:negotiation:needed"
	EvNegotiationFinal     EventType = "peer:negotiation:final"
	EvFileReceived         EventType = "file:received"
	EvFileSent             EventType = "file:sent"
	EvPeerLeft             EventType = "peer:left"
	EvPong                 EventType = "pong"
	EvError                EventType = "error"
)

// Envelope is decoded first to pick a handler.
type Envelope struct {
	Type EventType `json:"type"`
}

// Client -> Server payloads

type CreateRoomMessage struct {
	Username string `json:"username"`
}

type JoinRoomMessage struct {
	RoomID RoomID `json:"roomId"`
	User   struct {
		Username string `json:"username"`
	} `json:"user"`
}

type RoomRefMessage struct {
	RoomID RoomID `json:"roomId"`
}

type LeaveMeetingMessage struct {
	RoomID   RoomID `json:"roomId"`
	Username string `json:"username,omitempty"`
}

// TargetedRoomMessage carries the request/accept/decline start sub-protocol.
type TargetedRoomMessage struct {
	RoomID RoomID `json:"roomId"`
	To     ConnID `json:"to"`
}

type OfferMessage struct {
	To    ConnID          `json:"to"`
	Offer json.RawMessage `json:"offer"`
}

type AnswerMessage struct {
	To     ConnID          `json:"to"`
	Answer json.RawMessage `json:"answer"`
}

type ToggleMediaMessage struct {
	RoomID    RoomID `json:"roomId"`
	MediaType string `json:"mediaType"`
	Enabled   bool   `json:"enabled"`
}

// SendFileMessage carries fileData as an opaque JSON value (a base64 string,
// a data URL, ...) that is forwarded byte-for-byte.
type SendFileMessage struct {
	To       ConnID          `json:"to"`
	FileName string          `json:"fileName"`
	FileData json.RawMessage `json:"fileData"`
}

// Server -> Client payloads

type ConnectionReadyMessage struct {
	Type EventType `json:"type"`
	ID   ConnID    `json:"id"`
}

type RoomCreatedMessage struct {
	Type   EventType `json:"type"`
	RoomID RoomID    `json:"roomId"`
}

type RoomJoinedMessage struct {
	Type           EventType `json:"type"`
	RoomID         RoomID    `json:"roomId"`
	Host           User      `json:"host"`
	MeetingStarted bool      `json:"meetingStarted"`
}

type ParticipantJoinedMessage struct {
	Type EventType `json:"type"`
	User User      `json:"user"`
	ID   ConnID    `json:"id"`
}

type RoomInfoMessage struct {
	Type EventType `json:"type"`
	RoomSnapshot
}

// RoomEventMessage is used for meeting:started/ended and the start
// request/accept/decline notices.
type RoomEventMessage struct {
	Type   EventType `json:"type"`
	RoomID RoomID    `json:"roomId,omitempty"`
	From   ConnID    `json:"from,omitempty"`
}

type RelayOfferMessage struct {
	Type  EventType       `json:"type"`
	From  ConnID          `json:"from"`
	Offer json.RawMessage `json:"offer"`
}

type RelayAnswerMessage struct {
	Type   EventType       `json:"type"`
	From   ConnID          `json:"from"`
	Answer json.RawMessage `json:"answer"`
}

type MediaToggleMessage struct {
	Type      EventType `json:"type"`
	MediaType string    `json:"mediaType"`
	Enabled   bool      `json:"enabled"`
	Username  string    `json:"username"`
}

type FileReceivedMessage struct {
	Type     EventType       `json:"type"`
	From     ConnID          `json:"from"`
	FileName string          `json:"fileName"`
	FileData json.RawMessage `json:"fileData"`
}

type FileSentMessage struct {
	Type     EventType `json:"type"`
	To       ConnID    `json:"to"`
	FileName string    `json:"fileName"`
}

type PeerLeftMessage struct {
	Type     EventType `json:"type"`
	RoomID   RoomID    `json:"roomId"`
	ID       ConnID    `json:"id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}

type WhoAmIMessage struct {
	Type        EventType `json:"type"`
	ID          ConnID    `json:"id"`
	ClientToken string    `json:"clientToken,omitempty"`
	Rooms       []RoomID  `json:"rooms"`
}

type ErrorMessage struct {
	Type  EventType `json:"type"`
	Code  ErrorCode `json:"code"`
	Error string    `json:"error"`
}

func NewError(err error) ErrorMessage {
	return ErrorMessage{Type: EvError, Code: CodeOf(err), Error: err.Error()}
}
