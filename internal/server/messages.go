package server

import (
	"encoding/json"
	"net/http"
	"time"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is an inbound signaling message. Exactly one of the
// variant pointers is expected to be set.
type ClientMessage struct {
	BaseMessage
	Join          *Join          `json:"join,omitempty"`
	Offer         *Signal        `json:"offer,omitempty"`
	Answer        *Signal        `json:"answer,omitempty"`
	Candidate     *Signal        `json:"candidate,omitempty"`
	Leave         *Leave         `json:"leave,omitempty"`
	SessionStart  *SessionStart  `json:"session_start,omitempty"`
	SessionResult *SessionResult `json:"session_result,omitempty"`
	client        *Client        `json:"-"`
}

type Join struct {
	RoomId string `json:"room_id"`
	UserId string `json:"user_id"`
}

// Signal carries an offer, answer or ICE candidate. The payload is an
// opaque blob relayed verbatim, never inspected.
type Signal struct {
	RoomId  string          `json:"room_id"`
	Payload json.RawMessage `json:"payload"`
}

type Leave struct {
	RoomId string `json:"room_id"`
	UserId string `json:"user_id"`
}

type SessionStart struct {
	SessionId string `json:"session_id"`
}

type SessionResult struct {
	SessionId string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload"`
}

type ServerMessage struct {
	BaseMessage
	Response         *Response      `json:"response,omitempty"`
	Offer            *Signal        `json:"offer,omitempty"`
	Answer           *Signal        `json:"answer,omitempty"`
	Candidate        *Signal        `json:"candidate,omitempty"`
	UserConnected    *Presence      `json:"user_connected,omitempty"`
	UserDisconnected *Presence      `json:"user_disconnected,omitempty"`
	SessionResult    *SessionResult `json:"session_result,omitempty"`
	SkipClient       *Client        `json:"-"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
	Data         any    `json:"data,omitempty"`
}

type Presence struct {
	RoomId string `json:"room_id"`
	UserId string `json:"user_id"`
}

func NoErrOK(id int, data any) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
			Data:         data,
		},
	}
}

func ErrRoomNotFound(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusNotFound,
			Error:        "room not found",
		},
	}
}

func ErrRoomFull(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusConflict,
			Error:        "room is full",
		},
	}
}

func ErrSessionNotFound(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusNotFound,
			Error:        "session not found",
		},
	}
}

func ErrInternalError(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func ErrServiceUnavailable(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusServiceUnavailable,
			Error:        "service unavailable",
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
