package server

import (
	"context"
	"log"

	"github.com/linguasigna/signaling-server/internal/registry"
	"github.com/linguasigna/signaling-server/internal/stats"
)

// RelayServer owns the live-delivery state: which connections exist
// and which rooms/sessions each one is bound to. All dispatch and
// binding mutations run on a single event loop, so two events for the
// same room can never interleave.
type RelayServer struct {
	log            *log.Logger
	rooms          registry.RoomRegistry
	sessions       registry.SessionRegistry
	stats          stats.StatsProvider
	clients        map[*Client]struct{}
	roomConns      map[string]map[*Client]struct{}
	sessionConns   map[string]map[*Client]struct{}
	dispatchChan   chan *ClientMessage
	RegisterChan   chan *Client
	deRegisterChan chan *Client
	stop           chan struct{}
	done           chan struct{}
}

func NewRelayServer(logger *log.Logger, rooms registry.RoomRegistry, sessions registry.SessionRegistry, su stats.StatsProvider) (*RelayServer, error) {
	rs := &RelayServer{
		log:            logger,
		rooms:          rooms,
		sessions:       sessions,
		stats:          su,
		clients:        make(map[*Client]struct{}),
		roomConns:      make(map[string]map[*Client]struct{}),
		sessionConns:   make(map[string]map[*Client]struct{}),
		dispatchChan:   make(chan *ClientMessage, 256),
		RegisterChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}

	su.RegisterMetric(stats.ActiveConnections)
	su.RegisterMetric(stats.ActiveRooms)
	su.RegisterMetric(stats.ActiveSessions)
	su.RegisterMetric(stats.TranslationResults)

	return rs, nil
}

func (rs *RelayServer) Run() {
	for {
		select {
		case msg := <-rs.dispatchChan:
			rs.dispatch(msg)
		case client := <-rs.RegisterChan:
			rs.log.Printf("adding connection from %s", client.conn.RemoteAddr())
			rs.clients[client] = struct{}{}
			rs.stats.Incr(stats.ActiveConnections)
		case client := <-rs.deRegisterChan:
			rs.log.Printf("removing connection from %s", client.conn.RemoteAddr())
			rs.removeClient(client)
		case <-rs.stop:
			rs.log.Println("stopping clients")
			for c := range rs.clients {
				c.stopClient()
			}

			close(rs.done)
			return
		}
	}
}

// removeClient is the sole cleanup path for a closed connection: it
// releases every room and session binding, removes the participant
// records, and broadcasts leave notifications to remaining members.
func (rs *RelayServer) removeClient(c *Client) {
	if _, ok := rs.clients[c]; !ok {
		return
	}
	delete(rs.clients, c)
	rs.stats.Decr(stats.ActiveConnections)

	for code, userId := range c.boundRooms() {
		rs.unbindRoom(c, code)
		rs.rooms.LeaveRoom(code, userId)
		rs.broadcastToRoom(code, &ServerMessage{
			BaseMessage:      BaseMessage{Timestamp: Now()},
			UserDisconnected: &Presence{RoomId: code, UserId: userId},
			SkipClient:       c,
		})
	}

	for _, sessionId := range c.boundSessions() {
		rs.unbindSession(c, sessionId)
	}
}

func (rs *RelayServer) bindRoom(c *Client, code, userId string) {
	conns, ok := rs.roomConns[code]
	if !ok {
		conns = make(map[*Client]struct{})
		rs.roomConns[code] = conns
	}
	conns[c] = struct{}{}
	c.addRoom(code, userId)
}

func (rs *RelayServer) unbindRoom(c *Client, code string) {
	if conns, ok := rs.roomConns[code]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(rs.roomConns, code)
		}
	}
	c.delRoom(code)
}

func (rs *RelayServer) bindSession(c *Client, sessionId string) {
	conns, ok := rs.sessionConns[sessionId]
	if !ok {
		conns = make(map[*Client]struct{})
		rs.sessionConns[sessionId] = conns
	}
	conns[c] = struct{}{}
	c.addSession(sessionId)
}

func (rs *RelayServer) unbindSession(c *Client, sessionId string) {
	if conns, ok := rs.sessionConns[sessionId]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(rs.sessionConns, sessionId)
		}
	}
}

// broadcastToRoom delivers msg to every connection bound to the room,
// excluding msg.SkipClient. Delivery is best-effort: a client with a
// full send buffer misses the event.
func (rs *RelayServer) broadcastToRoom(code string, msg *ServerMessage) {
	for client := range rs.roomConns[code] {
		if client == msg.SkipClient {
			continue
		}

		client.queueMessage(msg)
	}
}

func (rs *RelayServer) broadcastToSession(sessionId string, msg *ServerMessage) {
	for client := range rs.sessionConns[sessionId] {
		if client == msg.SkipClient {
			continue
		}

		client.queueMessage(msg)
	}
}

func (rs *RelayServer) RegisterClient(c *Client) {
	rs.RegisterChan <- c
}

func (rs *RelayServer) Shutdown(ctx context.Context) error {
	rs.log.Println("received shutdown signal")
	close(rs.stop)

	select {
	case <-rs.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
