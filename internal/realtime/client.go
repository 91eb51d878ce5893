package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 8 << 10
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The bearer token on the upgrade request is the access control;
	// browser origins are not a trust boundary for the mobile client.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Client is one socket connection: a read pump feeding the dispatcher and a
// write pump draining the send queue. Enqueue never blocks; events to a full
// queue or a closed connection are dropped.
type Client struct {
	conn       *websocket.Conn
	send       chan Event
	done       chan struct{}
	dispatcher *Dispatcher
	log        zerolog.Logger
}

func newClient(conn *websocket.Conn, dispatcher *Dispatcher, log zerolog.Logger) *Client {
	return &Client{
		conn:       conn,
		send:       make(chan Event, sendBufferSize),
		done:       make(chan struct{}),
		dispatcher: dispatcher,
		log:        log,
	}
}

// Enqueue implements Session. It reports false when the event was dropped.
func (c *Client) Enqueue(ev Event) bool {
	select {
	case <-c.done:
		return false
	case c.send <- ev:
		return true
	default:
		return false
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.dispatcher.Disconnect(c)
		close(c.done)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("socket closed unexpectedly")
			}
			return
		}
		c.dispatcher.Dispatch(ctx, c, frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
			return
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS returns the echo handler that upgrades /ws requests. The auth
// middleware has already validated the bearer token by the time this runs.
func ServeWS(dispatcher *Dispatcher, log zerolog.Logger) echo.HandlerFunc {
	return func(ec echo.Context) error {
		conn, err := upgrader.Upgrade(ec.Response(), ec.Request(), nil)
		if err != nil {
			return err
		}

		client := newClient(conn, dispatcher, log)
		go client.writePump()
		go client.readPump(context.Background())
		return nil
	}
}
