// Package broadcast fans committed change-delta updates out to every
// other subscriber of the same document, in commit order. Two
// implementations are provided: an in-memory one for a single process
// and a Redis-backed one for multiple server processes sharing a
// document's subscriber set.
package broadcast

import (
	"context"
	"encoding/json"

	"inkwell/pkg/delta"
)

// Update is one broadcast frame: a document's committed version and the
// (possibly transformed) change that produced it. OriginID identifies the
// subscriber that submitted the change that produced this update, so a
// receiver can skip re-delivering it to its own sender (the dispatcher
// already replies to the sender directly with an ok/error frame).
type Update struct {
	DocumentID string      `json:"document_id"`
	Version    int         `json:"version"`
	Change     delta.Delta `json:"change"`
	OriginID   string      `json:"origin_id"`
}

func (u Update) marshal() ([]byte, error) {
	return json.Marshal(u)
}

func unmarshalUpdate(data []byte) (Update, error) {
	var u Update
	err := json.Unmarshal(data, &u)
	return u, err
}

// Publisher broadcasts committed updates for a document to every other
// subscriber of it.
type Publisher interface {
	Publish(ctx context.Context, u Update) error
}

// Subscription delivers every update published for one document, starting
// from the moment of subscription.
type Subscription interface {
	// Updates returns the channel updates arrive on. It is closed when the
	// subscription is closed or the backend connection fails.
	Updates() <-chan Update
	Close() error
}

// Subscriber creates subscriptions to a document's update stream.
type Subscriber interface {
	Subscribe(ctx context.Context, documentID string) (Subscription, error)
}

// Broadcaster is the combined capability the dispatcher depends on.
type Broadcaster interface {
	Publisher
	Subscriber
}
