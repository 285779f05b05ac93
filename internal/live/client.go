package live

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hirevox/hirevox/internal/hiring"
	"github.com/hirevox/hirevox/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 256 * 1024
)

// Client is one candidate's websocket connection and, once joined, the
// session controller bound to it.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	done        chan struct{}
	candidateID string
	logger      *log.Logger

	mu     sync.Mutex
	closed bool
	key    string
	ctrl   *session.Controller
	source *session.StreamSource
	cancel context.CancelFunc
}

func newClient(hub *Hub, conn *websocket.Conn, candidateID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 256),
		done:        make(chan struct{}),
		candidateID: candidateID,
		logger:      hub.logger,
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Printf("live: read error for %s: %v", c.candidateID, err)
			}
			return
		}
		var msg envelope
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("invalid message format")
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg envelope) {
	switch msg.Type {
	case MessageTypeJoin:
		var p JoinPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("invalid join payload")
			return
		}
		if err := c.hub.join(c, p); err != nil {
			c.sendError(err.Error())
		}

	case MessageTypeStart:
		ctrl := c.controller()
		if ctrl == nil {
			c.sendError("join first")
			return
		}
		// Start reports permission and capability failures synchronously;
		// the blocked snapshot follows on the update stream.
		if err := ctrl.Start(context.Background()); err != nil {
			c.sendError(err.Error())
		}

	case MessageTypeSelect:
		ctrl := c.controller()
		if ctrl == nil {
			c.sendError("join first")
			return
		}
		var p SelectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("invalid select payload")
			return
		}
		if err := ctrl.SelectOption(p.OptionIndex); err != nil {
			c.sendError(err.Error())
		}

	case MessageTypeAdvance:
		ctrl := c.controller()
		if ctrl == nil {
			c.sendError("join first")
			return
		}
		if err := ctrl.Advance(); err != nil {
			c.sendError(err.Error())
		}

	case MessageTypeSegment:
		c.mu.Lock()
		src := c.source
		c.mu.Unlock()
		if src == nil {
			return
		}
		var p SegmentPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		src.Push(session.Segment{Text: p.Text, Final: p.Final})

	case MessageTypeSubmit:
		ctrl := c.controller()
		if ctrl == nil {
			c.sendError("join first")
			return
		}
		if err := ctrl.Submit(); err != nil {
			c.sendError(err.Error())
		}

	case MessageTypePing:
		c.sendMessage(MessageTypePong, nil)

	default:
		c.sendError("unknown message type")
	}
}

func (c *Client) controller() *session.Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctrl
}

// bind attaches a running session to this connection.
func (c *Client) bind(key string, ctrl *session.Controller, source *session.StreamSource, cancel context.CancelFunc) {
	c.mu.Lock()
	c.key = key
	c.ctrl = ctrl
	c.source = source
	c.cancel = cancel
	c.mu.Unlock()
}

// shutdown tears the connection down: it cancels the bound session's
// event loop and wakes both pumps. The send channel is never closed, so
// a goroutine still holding this client cannot panic on a late send.
// Idempotent; the hub and the read pump may both call it.
func (c *Client) shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	close(c.done)
	if c.conn != nil {
		c.conn.Close()
	}
}

// forwardUpdates relays controller snapshots to the browser and emits
// the question content whenever the session moves to a new question.
func (c *Client) forwardUpdates(ctx context.Context, ctrl *session.Controller, questions []hiring.Question) {
	lastIdx := -1
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-ctrl.Updates():
			if snap.QuestionIndex != lastIdx && snap.QuestionIndex >= 0 && snap.QuestionIndex < len(questions) {
				lastIdx = snap.QuestionIndex
				c.sendMessage(MessageTypeQuestion, QuestionPayload{
					Index:    snap.QuestionIndex,
					Total:    len(questions),
					Question: viewOf(questions[snap.QuestionIndex]),
				})
			}
			c.sendMessage(MessageTypeSnapshot, snap)
		}
	}
}

func (c *Client) sendMessage(t MessageType, payload any) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	data, err := json.Marshal(Message{Type: t, Payload: payload})
	if err != nil {
		c.logger.Printf("live: marshal %s: %v", t, err)
		return
	}
	select {
	case c.send <- data:
	default:
		// Slow consumer; drop rather than stall the session loop.
		c.logger.Printf("live: send buffer full for %s, dropping %s", c.candidateID, t)
	}
}

func (c *Client) sendError(message string) {
	c.sendMessage(MessageTypeError, ErrorPayload{Message: message})
}
