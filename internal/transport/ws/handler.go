package ws

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"inkwell/internal/dispatcher"
	"inkwell/internal/logging"
)

var log = logging.Logger("ws")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Authentication and origin policy are out of scope; the transport
	// accepts any well-formed join.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP connections to websockets and feeds join/update/
// leave frames from each into a dispatcher.Dispatcher.
type Handler struct {
	dispatcher *dispatcher.Dispatcher
}

// NewHandler returns a Handler routing every connection's frames through d.
func NewHandler(d *dispatcher.Dispatcher) *Handler {
	return &Handler{dispatcher: d}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer wsConn.Close()

	conn := newConn(wsConn)
	subscriberID := uuid.New().String()
	joined := make(map[string]bool)
	defer func() {
		for documentID := range joined {
			h.dispatcher.Leave(documentID, subscriberID)
		}
	}()

	ctx := r.Context()
	for {
		var f Frame
		if err := wsConn.ReadJSON(&f); err != nil {
			return
		}
		documentID, err := documentIDFromTopic(f.Topic)
		if err != nil {
			log.Warnw("dropping frame with unrecognized topic", "topic", f.Topic)
			continue
		}

		switch f.Event {
		case eventJoin:
			var p joinPayload
			_ = json.Unmarshal(f.Payload, &p)
			sender := &docSender{conn: conn, documentID: documentID}
			if err := h.dispatcher.Join(ctx, documentID, subscriberID, p.UserID, sender); err != nil {
				log.Warnw("join failed", "document_id", documentID, "error", err)
				continue
			}
			joined[documentID] = true

		case eventUpdate:
			var p updatePayload
			if err := json.Unmarshal(f.Payload, &p); err != nil {
				log.Warnw("dropping malformed update frame", "document_id", documentID, "error", err)
				continue
			}
			if err := h.dispatcher.Update(ctx, documentID, subscriberID, p.Version, p.Change); err != nil {
				log.Warnw("update failed", "document_id", documentID, "error", err)
			}

		case eventLeave:
			h.dispatcher.Leave(documentID, subscriberID)
			delete(joined, documentID)

		default:
			log.Warnw("dropping unknown event", "event", f.Event)
		}
	}
}
