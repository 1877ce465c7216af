package server

import (
	"errors"

	"github.com/linguasigna/signaling-server/internal/registry"
	"github.com/linguasigna/signaling-server/internal/stats"
)

// dispatch routes one inbound signaling message. It runs on the relay
// event loop, so registry mutation and fan-out for a message form one
// atomic unit with respect to other messages.
func (rs *RelayServer) dispatch(msg *ClientMessage) {
	switch {
	case msg.Join != nil:
		rs.handleJoin(msg)
	case msg.Offer != nil, msg.Answer != nil, msg.Candidate != nil:
		rs.handleSignal(msg)
	case msg.Leave != nil:
		rs.handleLeave(msg)
	case msg.SessionStart != nil:
		rs.handleSessionStart(msg)
	case msg.SessionResult != nil:
		rs.handleSessionResult(msg)
	default:
		msg.client.queueMessage(ErrInvalidMessage(msg.Id))
	}
}

func (rs *RelayServer) handleJoin(msg *ClientMessage) {
	join := msg.Join

	room, err := rs.rooms.JoinRoom(join.RoomId, join.UserId)
	if err != nil {
		rs.log.Printf("join room %q: %v", join.RoomId, err)
		switch {
		case errors.Is(err, registry.ErrRoomNotFound):
			msg.client.queueMessage(ErrRoomNotFound(msg.Id))
		case errors.Is(err, registry.ErrRoomFull):
			msg.client.queueMessage(ErrRoomFull(msg.Id))
		case errors.Is(err, registry.ErrInvalidArgument):
			msg.client.queueMessage(ErrInvalidMessage(msg.Id))
		default:
			msg.client.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	// bind only after registry membership is committed
	rs.bindRoom(msg.client, room.Code, join.UserId)

	msg.client.queueMessage(NoErrOK(msg.Id, room))

	rs.broadcastToRoom(room.Code, &ServerMessage{
		BaseMessage:   BaseMessage{Timestamp: Now()},
		UserConnected: &Presence{RoomId: room.Code, UserId: join.UserId},
		SkipClient:    msg.client,
	})
}

// handleSignal relays an offer, answer or ICE candidate to every other
// member of the target room. A signal for a room the sender is not
// bound to is logged and dropped, never surfaced as a protocol error.
func (rs *RelayServer) handleSignal(msg *ClientMessage) {
	out := &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		SkipClient:  msg.client,
	}

	var sig *Signal
	switch {
	case msg.Offer != nil:
		sig, out.Offer = msg.Offer, msg.Offer
	case msg.Answer != nil:
		sig, out.Answer = msg.Answer, msg.Answer
	case msg.Candidate != nil:
		sig, out.Candidate = msg.Candidate, msg.Candidate
	}

	if _, ok := msg.client.roomUser(sig.RoomId); !ok {
		rs.log.Printf("dropping signal for room %q from unbound connection", sig.RoomId)
		return
	}

	rs.broadcastToRoom(sig.RoomId, out)
}

func (rs *RelayServer) handleLeave(msg *ClientMessage) {
	leave := msg.Leave

	userId, ok := msg.client.roomUser(leave.RoomId)
	if !ok {
		rs.log.Printf("dropping leave for room %q from unbound connection", leave.RoomId)
		return
	}

	rs.rooms.LeaveRoom(leave.RoomId, userId)
	rs.unbindRoom(msg.client, leave.RoomId)

	msg.client.queueMessage(NoErrOK(msg.Id, nil))

	rs.broadcastToRoom(leave.RoomId, &ServerMessage{
		BaseMessage:      BaseMessage{Timestamp: Now()},
		UserDisconnected: &Presence{RoomId: leave.RoomId, UserId: userId},
		SkipClient:       msg.client,
	})
}

func (rs *RelayServer) handleSessionStart(msg *ClientMessage) {
	start := msg.SessionStart

	session, err := rs.sessions.GetSession(start.SessionId)
	if err != nil {
		rs.log.Printf("session start %q: %v", start.SessionId, err)
		msg.client.queueMessage(ErrSessionNotFound(msg.Id))
		return
	}

	rs.bindSession(msg.client, session.Id)
	msg.client.queueMessage(NoErrOK(msg.Id, session))
}

func (rs *RelayServer) handleSessionResult(msg *ClientMessage) {
	result := msg.SessionResult

	if !msg.client.inSession(result.SessionId) {
		rs.log.Printf("dropping result for session %q from unbound connection", result.SessionId)
		return
	}

	if err := rs.sessions.RecordTranslationEvent(result.SessionId); err != nil {
		rs.log.Printf("record translation event: %v", err)
		return
	}

	rs.stats.Incr(stats.TranslationResults)

	rs.broadcastToSession(result.SessionId, &ServerMessage{
		BaseMessage:   BaseMessage{Timestamp: Now()},
		SessionResult: result,
		SkipClient:    msg.client,
	})
}
