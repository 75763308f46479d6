// Package registry owns the mapping from document id to a running actor,
// creating actors on demand and restarting them, reseeded, if their
// goroutine ever panics on a programmer-error precondition violation.
package registry

import (
	"sync"

	"inkwell/internal/document"
	"inkwell/internal/logging"
)

var log = logging.Logger("registry")

// Registry lazily creates one document.Actor per id and hands out a stable
// handle to it. A single mutex guards the id-to-actor map; actor state
// itself is never touched here, only the map lookup/insert.
type Registry struct {
	mu      sync.Mutex
	actors  map[string]*document.Actor
	closing bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{actors: make(map[string]*document.Actor)}
}

// Get returns the actor for id, creating (and starting) it if this is the
// first request for that id. An existing actor whose goroutine has died of
// a recovered panic is replaced, reseeded, before being returned.
func (r *Registry) Get(id string) *document.Actor {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closing {
		return nil
	}
	if a, ok := r.actors[id]; ok {
		if !a.Crashed() {
			return a
		}
		log.Warnw("document actor found crashed on access, restarting from seed", "id", id)
		return r.restartLocked(id)
	}
	a := document.NewActor(id, document.Seed(id))
	r.actors[id] = a
	log.Infow("document actor created", "id", id)
	return a
}

// Restart replaces the actor for id with a freshly seeded one. Get already
// does this automatically for a crashed actor; Restart exists for a caller
// that wants to force a reseed regardless of the actor's health.
func (r *Registry) Restart(id string) *document.Actor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restartLocked(id)
}

func (r *Registry) restartLocked(id string) *document.Actor {
	// A crashed actor's goroutine has already exited; closing its inbox
	// would only risk a "send on closed channel" panic in some other
	// goroutine still mid-send on a handle fetched before the crash. Only
	// a still-healthy actor needs to be told to stop.
	if old, ok := r.actors[id]; ok && !old.Crashed() {
		old.Close()
	}
	a := document.NewActor(id, document.Seed(id))
	r.actors[id] = a
	log.Warnw("document actor restarted from seed", "id", id)
	return a
}

// Close stops every actor the registry owns.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closing = true
	for id, a := range r.actors {
		if !a.Crashed() {
			a.Close()
		}
		delete(r.actors, id)
	}
}
