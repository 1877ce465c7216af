package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one live websocket connection. It tracks which rooms and
// sessions the connection is bound to, so the relay can route events
// to it and clean up when it goes away.
type Client struct {
	conn     *websocket.Conn
	relay    *RelayServer
	log      *log.Logger
	send     chan *ServerMessage
	rooms    map[string]string
	sessions map[string]struct{}
	mu       sync.RWMutex
	stop     chan struct{}
	stopOnce sync.Once
}

func NewClient(conn *websocket.Conn, rs *RelayServer, l *log.Logger) *Client {
	return &Client{
		conn:     conn,
		relay:    rs,
		log:      l,
		send:     make(chan *ServerMessage, 256),
		rooms:    make(map[string]string),
		sessions: make(map[string]struct{}),
		stop:     make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(time.Duration(pingInterval))
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Println("write exiting")
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(msg)
			if err != nil {
				c.log.Println("failed to serialize message:", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Println("read exiting")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Println("error parsing message:", err)
			c.queueMessage(ErrInvalidMessage(-1))
			continue
		}

		msg.client = c
		msg.Timestamp = Now()

		select {
		case c.relay.dispatchChan <- &msg:
		default:
			c.log.Println("dispatch channel full, rejecting message")
			c.queueMessage(ErrServiceUnavailable(msg.Id))
		}
	}
}

func (c *Client) queueMessage(msg *ServerMessage) bool {
	select {
	case c.send <- msg:
	default:
		c.log.Println("failed to send message to client, channel is full")
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) cleanup() {
	c.relay.deRegisterChan <- c
	c.stopClient()
}

// addRoom records that this connection is bound to a room under the
// given user id. Must only be called after registry membership is
// committed.
func (c *Client) addRoom(code, userId string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rooms[code] = userId
}

func (c *Client) delRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.rooms, code)
}

// roomUser returns the user id this connection joined the room with.
func (c *Client) roomUser(code string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	userId, ok := c.rooms[code]
	return userId, ok
}

// boundRooms returns a snapshot of the connection's room bindings.
func (c *Client) boundRooms() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make(map[string]string, len(c.rooms))
	for code, userId := range c.rooms {
		rooms[code] = userId
	}
	return rooms
}

func (c *Client) addSession(sessionId string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions[sessionId] = struct{}{}
}

func (c *Client) inSession(sessionId string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.sessions[sessionId]
	return ok
}

// boundSessions returns a snapshot of the connection's session bindings.
func (c *Client) boundSessions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sessions := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		sessions = append(sessions, id)
	}
	return sessions
}
