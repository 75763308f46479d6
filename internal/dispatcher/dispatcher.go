// Package dispatcher routes join/update/leave frames to the right document
// actor and fans out each accepted update to every other subscriber of
// that document, preserving commit order.
package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"inkwell/internal/broadcast"
	"inkwell/internal/document"
	"inkwell/internal/logging"
	"inkwell/internal/registry"
	"inkwell/pkg/delta"
)

var log = logging.Logger("dispatcher")

// Sender is how the dispatcher pushes frames back to one connected client.
// The transport layer (the websocket connection handler) implements it.
type Sender interface {
	SendOpen(version int, contents delta.Delta) error
	SendUpdate(version int, change delta.Delta) error
	SendOK() error
	SendError(reason string) error
}

// subscriberInfo is what the dispatcher keeps about one joined connection:
// enough to address it and to log who is on a document, not a presence
// feature in its own right.
type subscriberInfo struct {
	sender   Sender
	userID   string
	joinedAt time.Time
}

// docState is the dispatcher's bookkeeping for one document: its local
// subscribers plus the single broadcast subscription fanning updates out
// to them. updateMu serializes Update-then-Publish for this document so
// the broadcaster always sees commits in the order the actor produced
// them, even when several update requests race to call Dispatcher.Update.
type docState struct {
	updateMu sync.Mutex

	subs         map[string]*subscriberInfo
	subscription broadcast.Subscription
	cancel       context.CancelFunc
}

// Dispatcher is the channel multiplexer described by the wire protocol: it
// knows nothing about the transport framing, only document ids,
// subscriber ids and the Sender callback for each.
type Dispatcher struct {
	registry    *registry.Registry
	broadcaster broadcast.Broadcaster
	node        *snowflake.Node

	mu   sync.Mutex
	docs map[string]*docState
}

// New returns a dispatcher backed by reg for document state and bc for
// subscriber fan-out.
func New(reg *registry.Registry, bc broadcast.Broadcaster) (*Dispatcher, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		registry:    reg,
		broadcaster: bc,
		node:        node,
		docs:        make(map[string]*docState),
	}, nil
}

// ensureDoc returns the docState for documentID, creating it (and its
// broadcast subscription) on first use.
func (d *Dispatcher) ensureDoc(documentID string) (*docState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if state, ok := d.docs[documentID]; ok {
		return state, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := d.broadcaster.Subscribe(ctx, documentID)
	if err != nil {
		cancel()
		return nil, err
	}
	state := &docState{subs: make(map[string]*subscriberInfo), subscription: sub, cancel: cancel}
	d.docs[documentID] = state
	go d.fanOut(documentID, state, sub)
	return state, nil
}

// fanOut consumes the broadcast subscription for documentID and forwards
// each update to every locally connected subscriber except the one that
// originated it.
func (d *Dispatcher) fanOut(documentID string, state *docState, sub broadcast.Subscription) {
	for u := range sub.Updates() {
		d.mu.Lock()
		for id, info := range state.subs {
			if id == u.OriginID {
				continue
			}
			if err := info.sender.SendUpdate(u.Version, u.Change); err != nil {
				log.Warnw("send failed for subscriber", "document_id", documentID, "subscriber_id", id, "error", err)
			}
		}
		d.mu.Unlock()
	}
}

// Join ensures the document's actor exists, registers subscriberID, and
// sends it an open frame with the current (version, contents).
func (d *Dispatcher) Join(ctx context.Context, documentID, subscriberID, userID string, sender Sender) error {
	actor := d.registry.Get(documentID)
	version, contents, err := actor.Get(ctx)
	if err != nil {
		return err
	}

	state, err := d.ensureDoc(documentID)
	if err != nil {
		return err
	}

	d.mu.Lock()
	state.subs[subscriberID] = &subscriberInfo{sender: sender, userID: userID, joinedAt: time.Now()}
	d.mu.Unlock()

	log.Infow("subscriber joined", "document_id", documentID, "subscriber_id", subscriberID, "user_id", userID)
	return sender.SendOpen(version, contents)
}

// Update submits change at clientVersion on behalf of subscriberID, replies
// to it directly with ok/error, and on success broadcasts the committed
// (possibly transformed) change to every other subscriber of documentID.
func (d *Dispatcher) Update(ctx context.Context, documentID, subscriberID string, clientVersion int, change delta.Delta) error {
	state, err := d.ensureDoc(documentID)
	if err != nil {
		return err
	}

	state.updateMu.Lock()
	defer state.updateMu.Unlock()

	traceID := d.node.Generate()
	actor := d.registry.Get(documentID)
	version, transformed, err := actor.Update(ctx, clientVersion, change)
	if err != nil {
		reason := reasonFor(err)
		log.Warnw("update rejected", "document_id", documentID, "subscriber_id", subscriberID, "trace_id", traceID, "reason", reason)
		return d.reply(documentID, subscriberID, func(s Sender) error { return s.SendError(reason) })
	}

	log.Debugw("update committed", "document_id", documentID, "version", version, "trace_id", traceID)
	if err := d.reply(documentID, subscriberID, func(s Sender) error { return s.SendOK() }); err != nil {
		log.Warnw("failed to ack sender", "document_id", documentID, "subscriber_id", subscriberID, "error", err)
	}

	return d.broadcaster.Publish(ctx, broadcast.Update{
		DocumentID: documentID,
		Version:    version,
		Change:     transformed,
		OriginID:   subscriberID,
	})
}

func (d *Dispatcher) reply(documentID, subscriberID string, fn func(Sender) error) error {
	d.mu.Lock()
	state, ok := d.docs[documentID]
	var sender Sender
	if ok {
		if info, ok := state.subs[subscriberID]; ok {
			sender = info.sender
		}
	}
	d.mu.Unlock()
	if sender == nil {
		return nil
	}
	return fn(sender)
}

// Leave removes subscriberID's subscription to documentID. Once a document
// has no subscribers left, its broadcast subscription is closed; the
// actor itself is left running.
func (d *Dispatcher) Leave(documentID, subscriberID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, ok := d.docs[documentID]
	if !ok {
		return
	}
	delete(state.subs, subscriberID)
	log.Infow("subscriber left", "document_id", documentID, "subscriber_id", subscriberID)
	if len(state.subs) == 0 {
		state.cancel()
		state.subscription.Close()
		delete(d.docs, documentID)
	}
}

func reasonFor(err error) string {
	switch err {
	case document.ErrServerBehind:
		return "server_behind"
	case document.ErrDocumentCorrupted:
		return "document_corrupted"
	default:
		return err.Error()
	}
}
