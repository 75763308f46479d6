package broadcast

import (
	"context"
	"sync"
)

// Memory is a single-process Broadcaster: Publish fans an update out
// directly to every live subscription for that document via a buffered
// channel per subscription. It is the default backend for a standalone
// server process and for dispatcher tests.
type Memory struct {
	mu   sync.Mutex
	subs map[string]map[*memorySub]struct{}
}

// NewMemory returns an empty in-memory broadcaster.
func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[*memorySub]struct{})}
}

type memorySub struct {
	documentID string
	ch         chan Update
	b          *Memory
	closeOnce  sync.Once
}

func (s *memorySub) Updates() <-chan Update { return s.ch }

func (s *memorySub) Close() error {
	s.closeOnce.Do(func() {
		s.b.mu.Lock()
		delete(s.b.subs[s.documentID], s)
		s.b.mu.Unlock()
		close(s.ch)
	})
	return nil
}

// Subscribe returns a subscription that receives every update Published
// for documentID from this point on.
func (b *Memory) Subscribe(ctx context.Context, documentID string) (Subscription, error) {
	s := &memorySub{documentID: documentID, ch: make(chan Update, 32), b: b}
	b.mu.Lock()
	if b.subs[documentID] == nil {
		b.subs[documentID] = make(map[*memorySub]struct{})
	}
	b.subs[documentID][s] = struct{}{}
	b.mu.Unlock()
	return s, nil
}

// Publish delivers u to every live subscription for u.DocumentID. A
// subscriber whose buffer is full is skipped rather than blocking the
// publisher: the broadcast ordering guarantee is about the order updates
// are offered, not a delivery guarantee to a stalled consumer.
func (b *Memory) Publish(ctx context.Context, u Update) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs[u.DocumentID] {
		select {
		case s.ch <- u:
		default:
			log.Warnw("dropping broadcast update for slow subscriber", "document_id", u.DocumentID)
		}
	}
	return nil
}
