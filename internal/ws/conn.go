package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// SendBufferSize is the buffer size for outbound message channels
	SendBufferSize = 16

	// SendTimeout bounds how long a send waits on a full buffer
	SendTimeout = time.Second

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
)

// Conn is one client websocket. Writes go through a buffered channel drained
// by a single write pump; reads happen in Serve.
type Conn struct {
	ID string

	socket  *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	limiter *rate.Limiter
	log     zerolog.Logger
}

func newConn(id string, socket *websocket.Conn, limiter *rate.Limiter, log zerolog.Logger) *Conn {
	return &Conn{
		ID:      id,
		socket:  socket,
		send:    make(chan []byte, SendBufferSize),
		done:    make(chan struct{}),
		limiter: limiter,
		log:     log.With().Str("conn", id).Logger(),
	}
}

// Send queues msg for delivery. It gives up after SendTimeout or once the
// connection is closed and reports whether the message was queued.
func (c *Conn) Send(msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error().Err(err).Str("type", msg.Type).Msg("encode message")
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	case <-time.After(SendTimeout):
		c.log.Warn().Str("type", msg.Type).Msg("send timeout, dropping message")
		return false
	}
}

// Close asks the write pump to send a close frame and drop the socket. It is
// safe to call more than once.
func (c *Conn) Close() {
	c.once.Do(func() { close(c.done) })
}

// Serve runs the connection until the client goes away: it starts the
// write pump and hands every well-formed, rate-allowed envelope to handle.
func (c *Conn) Serve(handle func(c *Conn, env Envelope)) {
	go c.writePump()
	defer c.Close()

	c.socket.SetReadLimit(maxMessageSize)
	c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("read failed")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
			c.Send(Message{Type: EventAppError, Payload: AppError{Message: "malformed message"}})
			continue
		}
		if !c.limiter.Allow() {
			c.Send(Message{Type: EventAck, AckID: env.AckID, Payload: Ack{Code: CodeRateLimited, Error: "too many messages"}})
			continue
		}
		handle(c, env)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		c.socket.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			c.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
