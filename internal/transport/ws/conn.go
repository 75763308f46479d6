package ws

import (
	"sync"

	"github.com/gorilla/websocket"

	"inkwell/pkg/delta"
)

// Conn serializes writes to one underlying websocket connection (gorilla's
// websocket.Conn permits only one concurrent writer).
type Conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func newConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

func (c *Conn) send(f Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(f)
}

// docSender adapts a Conn to dispatcher.Sender for one joined document,
// stamping every outgoing frame with that document's topic.
type docSender struct {
	conn       *Conn
	documentID string
}

func (s *docSender) SendOpen(version int, contents delta.Delta) error {
	return s.conn.send(newFrame(s.documentID, eventOpen, openPayload{Version: version, Contents: contents}))
}

func (s *docSender) SendUpdate(version int, change delta.Delta) error {
	return s.conn.send(newFrame(s.documentID, eventUpdate, updatePayload{Version: version, Change: change}))
}

func (s *docSender) SendOK() error {
	return s.conn.send(newFrame(s.documentID, eventReply, replyPayload{Status: "ok"}))
}

func (s *docSender) SendError(reason string) error {
	return s.conn.send(newFrame(s.documentID, eventReply, replyPayload{
		Status:   "error",
		Response: &replyReason{Reason: reason},
	}))
}
