package imposter

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Client is one WebSocket connection. It belongs to at most one room at a
// time; the room field is written by the gateway on join and cleared by
// the room on kick.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan any
	done chan struct{}
	once sync.Once
	room atomic.Pointer[Room]
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan any, 32),
		done: make(chan struct{}),
	}
}

// close is idempotent; the send channel is never closed, writers drop into
// a full buffer instead.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *Client) trySend(msg any) {
	select {
	case c.send <- msg:
	default:
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Gateway upgrades connections and routes their messages: room
// creation/join is handled here, everything else goes to the client's
// current room.
type Gateway struct {
	reg  *Registry
	logf func(string, ...any)
}

func NewGateway(reg *Registry) *Gateway {
	return &Gateway{
		reg:  reg,
		logf: reg.opts.Logf,
	}
}

// ServeWS is the single WebSocket endpoint.
func (g *Gateway) ServeWS() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			g.logf("SERVE: upgrade error: %v", err)
			return
		}

		client := newClient(conn)

		go client.writePump()
		g.readPump(client)
	}
}

func (g *Gateway) readPump(c *Client) {
	defer func() {
		c.close()
		if room := c.room.Load(); room != nil {
			room.detach(c)
		}
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "create-room":
			g.handleCreate(c, msg)
		case "join-room":
			g.handleJoin(c, msg)
		default:
			if room := c.room.Load(); room != nil {
				room.post(inbound{client: c, msg: msg})
			}
		}
	}
}

func (g *Gateway) handleCreate(c *Client, msg ClientMessage) {
	if c.room.Load() != nil {
		c.trySend(RoomErrorMessage{Type: "room-error", Message: "Already in a room."})
		return
	}

	name := strings.TrimSpace(msg.PlayerName)
	if name == "" {
		c.trySend(RoomErrorMessage{Type: "room-error", Message: "Enter your name."})
		return
	}

	g.reg.CreateRoom(c, name)
}

func (g *Gateway) handleJoin(c *Client, msg ClientMessage) {
	if c.room.Load() != nil {
		c.trySend(RoomErrorMessage{Type: "room-error", Message: "Already in a room."})
		return
	}

	name := strings.TrimSpace(msg.PlayerName)
	if name == "" {
		c.trySend(RoomErrorMessage{Type: "room-error", Message: "Enter your name."})
		return
	}
	if strings.TrimSpace(msg.RoomCode) == "" {
		c.trySend(RoomErrorMessage{Type: "room-error", Message: "Enter a room code."})
		return
	}

	room, ok := g.reg.Find(msg.RoomCode)
	if !ok {
		c.trySend(RoomErrorMessage{Type: "room-error", Message: ErrRoomNotFound.Error()})
		return
	}

	if err := room.Join(c, name); err != nil {
		c.trySend(RoomErrorMessage{Type: "room-error", Message: err.Error()})
	}
}

func (c *Client) writePump() {
	defer c.close()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
