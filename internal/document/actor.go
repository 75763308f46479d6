package document

import (
	"context"
	"sync/atomic"

	"inkwell/internal/logging"
	"inkwell/pkg/delta"
)

var log = logging.Logger("document")

type getRequest struct {
	reply chan getResult
}

type getResult struct {
	version  int
	contents delta.Delta
}

type updateRequest struct {
	clientVersion int
	change        delta.Delta
	reply         chan updateResult
}

type updateResult struct {
	version     int
	transformed delta.Delta
	err         error
}

// Actor is a single-writer document entity: one goroutine owns a State and
// serializes every Get and Update through a buffered inbox, in the order
// they arrive.
type Actor struct {
	id      string
	inbox   chan any
	done    chan struct{}
	crashed atomic.Bool
}

// NewActor starts an actor for id seeded with the given state and returns
// it running.
func NewActor(id string, seed State) *Actor {
	a := &Actor{
		id:    id,
		inbox: make(chan any, 64),
		done:  make(chan struct{}),
	}
	go a.run(seed)
	return a
}

func (a *Actor) run(state State) {
	defer close(a.done)
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("document actor panicked, marking for restart", "id", a.id, "panic", r)
			a.crashed.Store(true)
		}
	}()
	for req := range a.inbox {
		switch r := req.(type) {
		case *getRequest:
			r.reply <- getResult{version: state.Version, contents: state.Contents}
		case *updateRequest:
			state = a.handleUpdate(state, r)
		}
	}
}

// Crashed reports whether the actor's goroutine exited via a recovered
// panic rather than a normal Close. The registry checks this on every
// Get and replaces a crashed actor with a freshly seeded one instead of
// handing out a dead handle.
func (a *Actor) Crashed() bool {
	return a.crashed.Load()
}

// handleUpdate implements the update algorithm: reject a client whose
// stated version is outside the range we can transform against (either
// ahead of what we've emitted, or negative), transform its change against
// the history it missed (server wins ties), and commit only if the result
// is still a well-formed document.
func (a *Actor) handleUpdate(state State, r *updateRequest) State {
	if r.clientVersion < 0 || r.clientVersion > state.Version {
		r.reply <- updateResult{err: ErrServerBehind}
		return state
	}

	lag := state.Version - r.clientVersion
	transformed := r.change
	for i := lag - 1; i >= 0; i-- {
		transformed = delta.Transform(state.History[i], transformed, true)
	}

	newContents := delta.Compose(state.Contents, transformed)
	if !newContents.IsDocument() {
		log.Warnw("rejecting update that would corrupt document", "id", a.id, "version", state.Version)
		r.reply <- updateResult{err: ErrDocumentCorrupted}
		return state
	}

	state.History = append([]delta.Delta{transformed}, state.History...)
	state.Version++
	state.Contents = newContents
	r.reply <- updateResult{version: state.Version, transformed: transformed}
	return state
}

// Get returns a snapshot of the document's current version and contents.
func (a *Actor) Get(ctx context.Context) (int, delta.Delta, error) {
	req := &getRequest{reply: make(chan getResult, 1)}
	select {
	case a.inbox <- req:
	case <-ctx.Done():
		return 0, delta.Delta{}, ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res.version, res.contents, nil
	case <-ctx.Done():
		return 0, delta.Delta{}, ctx.Err()
	}
}

// Update submits a client change recorded at clientVersion and returns the
// committed version and the (possibly transformed) change peers must
// apply, or an error if the request was rejected.
func (a *Actor) Update(ctx context.Context, clientVersion int, change delta.Delta) (int, delta.Delta, error) {
	req := &updateRequest{clientVersion: clientVersion, change: change, reply: make(chan updateResult, 1)}
	select {
	case a.inbox <- req:
	case <-ctx.Done():
		return 0, delta.Delta{}, ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res.version, res.transformed, res.err
	case <-ctx.Done():
		return 0, delta.Delta{}, ctx.Err()
	}
}

// Close stops the actor's goroutine and waits for it to exit. Requests
// still in the inbox are dropped without a reply.
func (a *Actor) Close() {
	close(a.inbox)
	<-a.done
}
