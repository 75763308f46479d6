// Package syncclient implements the client-side half of the reconciliation
// protocol: a small single-threaded state machine that paces outgoing
// changes (at most one in flight), folds concurrent remote updates into
// local state, and maintains an undo/redo history.
package syncclient

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/logging"
	"inkwell/pkg/delta"
)

var log = logging.Logger("syncclient")

// ErrDocumentCorrupted is raised to onFatal when the server rejects an
// update as document_corrupted: the client's delta invariants are broken
// and the document cannot be trusted.
var ErrDocumentCorrupted = errors.New("syncclient: server reported document_corrupted")

// ErrNotInsertOnly is returned by OnLocalDocumentChanged when the caller's
// new document contains anything but inserts.
var ErrNotInsertOnly = errors.New("syncclient: local document must contain only inserts")

const (
	defaultMergeThreshold   = time.Second
	defaultMaxHistoryLength = 100
)

// Transport is how the engine sends an outgoing change. The caller's
// transport implementation owns the actual wire frame and the version
// number is the client's last-known server version (client_version in the
// actor's update algorithm), not yet incremented.
type Transport interface {
	SendUpdate(ctx context.Context, version int, change delta.Delta) error
}

type historyEntry struct {
	inverse delta.Delta
	at      time.Time
}

// State is one client's view of one open document.
type State struct {
	transport Transport
	onOpened  func(contents delta.Delta)
	onChanged func(document delta.Delta, change delta.Delta)
	onFatal   func(error)

	mergeThreshold time.Duration
	maxHistory     int

	version         int
	currentDocument delta.Delta
	inFlight        *delta.Delta
	queued          *delta.Delta

	undo, redo        []historyEntry
	lastLocalChangeAt time.Time
}

// Option configures a State at construction time.
type Option func(*State)

// WithMergeThreshold overrides the default 1-second local-edit coalescing
// window.
func WithMergeThreshold(d time.Duration) Option {
	return func(s *State) { s.mergeThreshold = d }
}

// WithMaxHistoryLength overrides the default 100-entry undo stack cap.
func WithMaxHistoryLength(n int) Option {
	return func(s *State) { s.maxHistory = n }
}

// New returns a State that sends outgoing changes through transport and
// reports open/change/fatal events to the given callbacks. onFatal may be
// nil; a nil onFatal means fatal errors are only logged.
func New(transport Transport, onOpened func(delta.Delta), onChanged func(delta.Delta, delta.Delta), onFatal func(error), opts ...Option) *State {
	s := &State{
		transport:      transport,
		onOpened:       onOpened,
		onChanged:      onChanged,
		onFatal:        onFatal,
		mergeThreshold: defaultMergeThreshold,
		maxHistory:     defaultMaxHistoryLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Version returns the last server version this client has integrated.
func (s *State) Version() int { return s.version }

// CurrentDocument returns the document delta currently displayed.
func (s *State) CurrentDocument() delta.Delta { return s.currentDocument }

// HandleOpen processes the server's open(version, contents) reply,
// resetting local history to the freshly opened document.
func (s *State) HandleOpen(version int, contents delta.Delta) {
	s.version = version
	s.currentDocument = contents
	s.inFlight = nil
	s.queued = nil
	s.undo = nil
	s.redo = nil
	if s.onOpened != nil {
		s.onOpened(contents)
	}
}

// OnLocalDocumentChanged is called by the caller's editor whenever the
// user's edits produce a new document. It diffs against the previously
// known document, records the inverse for undo, and pushes the resulting
// change toward the server.
func (s *State) OnLocalDocumentChanged(ctx context.Context, newDocument delta.Delta) error {
	if !newDocument.IsDocument() {
		return ErrNotInsertOnly
	}
	change := delta.Diff(s.currentDocument, newDocument)
	if len(change.Ops()) == 0 {
		return nil
	}
	s.recordLocalChange(change, s.currentDocument)
	s.currentDocument = newDocument
	return s.pushLocal(ctx, change)
}

// recordLocalChange implements the undo-stack merge-window rule: rapid
// successive edits coalesce into one undo entry rather than one per
// keystroke.
func (s *State) recordLocalChange(change, before delta.Delta) {
	inverse := delta.Invert(change, before)
	now := time.Now()
	if len(s.undo) > 0 && now.Sub(s.lastLocalChangeAt) <= s.mergeThreshold {
		top := s.undo[len(s.undo)-1]
		s.undo[len(s.undo)-1] = historyEntry{inverse: delta.Compose(inverse, top.inverse), at: top.at}
	} else {
		s.undo = append(s.undo, historyEntry{inverse: inverse, at: now})
		s.lastLocalChangeAt = now
		if len(s.undo) > s.maxHistory {
			s.undo = s.undo[1:]
		}
	}
	s.redo = nil
}

// pushLocal implements I1 (at most one outstanding update): it either
// sends change immediately or folds it into the queued change awaiting
// the in-flight ack.
func (s *State) pushLocal(ctx context.Context, change delta.Delta) error {
	if s.inFlight == nil {
		c := change
		s.inFlight = &c
		v := s.version
		s.version++
		return s.transport.SendUpdate(ctx, v, change)
	}
	if s.queued == nil {
		q := change
		s.queued = &q
	} else {
		q := delta.Compose(*s.queued, change)
		s.queued = &q
	}
	return nil
}

// HandleAck processes a successful ok reply to the in-flight update. If a
// change queued up behind it, that change is sent next.
func (s *State) HandleAck(ctx context.Context) error {
	s.inFlight = nil
	if s.queued != nil {
		next := *s.queued
		s.queued = nil
		return s.pushLocal(ctx, next)
	}
	return nil
}

// HandleAckError processes an error reply to the in-flight update.
// document_corrupted is fatal: it means the client's view of the document
// can no longer be trusted. Any other reason clears inFlight so the
// client can resynchronize (a well-behaved caller rejoins the document).
func (s *State) HandleAckError(reason string) {
	s.inFlight = nil
	if reason == "document_corrupted" {
		log.Errorw("server reported document corrupted", "reason", reason)
		if s.onFatal != nil {
			s.onFatal(ErrDocumentCorrupted)
		}
		return
	}
	log.Warnw("update rejected", "reason", reason)
}

// OnRemoteUpdate folds a remote change broadcast by the server into local
// state: it reconciles against any in-flight or queued local change,
// applies the remainder to currentDocument, and transforms the undo/redo
// stacks so they remain valid against the new document.
func (s *State) OnRemoteUpdate(remoteChange delta.Delta) {
	r := remoteChange
	if s.inFlight != nil {
		r = delta.Transform(*s.inFlight, r, false)
	}
	if s.queued != nil {
		rPrime := delta.Transform(*s.queued, r, false)
		q := delta.Transform(r, *s.queued, true)
		s.queued = &q
		r = rPrime
	}

	s.currentDocument = delta.Compose(s.currentDocument, r)
	s.undo = transformHistory(s.undo, r)
	s.redo = transformHistory(s.redo, r)
	s.version++

	if s.onChanged != nil {
		s.onChanged(s.currentDocument, r)
	}
}

// transformHistory transforms every entry of an undo/redo stack against an
// incoming remote delta, most-recent entry first, carrying the remainder
// of r down to older entries. Entries that collapse to an empty change are
// dropped.
func transformHistory(stack []historyEntry, r delta.Delta) []historyEntry {
	if len(stack) == 0 {
		return stack
	}
	acc := r
	transformed := make([]historyEntry, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		e := stack[i]
		entry := delta.Transform(acc, e.inverse, false)
		next := delta.Transform(e.inverse, acc, true)
		transformed[i] = historyEntry{inverse: entry, at: e.at}
		acc = next
	}

	out := make([]historyEntry, 0, len(stack))
	for _, e := range transformed {
		if len(e.inverse.Ops()) > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Undo pops the most recent undo entry, applies its inverse, and pushes
// the counter-inverse onto the redo stack. It reports whether there was
// anything to undo.
func (s *State) Undo(ctx context.Context) (bool, error) {
	if len(s.undo) == 0 {
		return false, nil
	}
	top := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	return true, s.applyHistoryEntry(ctx, top, &s.redo)
}

// Redo pops the most recent redo entry, applies its inverse, and pushes
// the counter-inverse back onto the undo stack.
func (s *State) Redo(ctx context.Context) (bool, error) {
	if len(s.redo) == 0 {
		return false, nil
	}
	top := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	return true, s.applyHistoryEntry(ctx, top, &s.undo)
}

func (s *State) applyHistoryEntry(ctx context.Context, e historyEntry, counterStack *[]historyEntry) error {
	before := s.currentDocument
	s.currentDocument = delta.Compose(before, e.inverse)
	counterInverse := delta.Invert(e.inverse, before)
	*counterStack = append(*counterStack, historyEntry{inverse: counterInverse, at: time.Now()})
	if s.onChanged != nil {
		s.onChanged(s.currentDocument, e.inverse)
	}
	return s.pushLocal(ctx, e.inverse)
}
