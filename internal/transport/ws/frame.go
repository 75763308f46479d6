// Package ws implements the websocket wire protocol: JSON frames
// multiplexed by topic string "document:<id>", carrying join/update/leave
// from the client and open/update/reply from the server.
package ws

import (
	"encoding/json"
	"fmt"
	"strings"

	"inkwell/pkg/delta"
)

const (
	eventJoin   = "join"
	eventLeave  = "leave"
	eventUpdate = "update"
	eventOpen   = "open"
	eventReply  = "reply"
)

// Frame is the wire envelope for every message.
type Frame struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const topicPrefix = "document:"

func topicFor(documentID string) string { return topicPrefix + documentID }

func documentIDFromTopic(topic string) (string, error) {
	if !strings.HasPrefix(topic, topicPrefix) {
		return "", fmt.Errorf("ws: unrecognized topic %q", topic)
	}
	return strings.TrimPrefix(topic, topicPrefix), nil
}

func newFrame(documentID, event string, payload any) Frame {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err) // payload types are internal and always marshal
	}
	return Frame{Topic: topicFor(documentID), Event: event, Payload: data}
}

type joinPayload struct {
	UserID string `json:"user_id"`
}

type updatePayload struct {
	Version int         `json:"version"`
	Change  delta.Delta `json:"change"`
}

type openPayload struct {
	Version  int         `json:"version"`
	Contents delta.Delta `json:"contents"`
}

type replyPayload struct {
	Status   string       `json:"status"`
	Response *replyReason `json:"response,omitempty"`
}

type replyReason struct {
	Reason string `json:"reason"`
}
