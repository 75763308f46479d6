package broadcast

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Redis is a multi-process Broadcaster: Publish writes to a Redis pub/sub
// channel per document, and Subscribe opens a Redis subscription decoding
// the same frames. It lets several server processes share fan-out for a
// document without sharing in-process memory; cross-process ownership of
// which process's actor is authoritative for a document is out of scope
// here. This type only moves already-committed updates between processes.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an already-configured go-redis client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Close closes the underlying Redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func channelName(documentID string) string {
	return fmt.Sprintf("inkwell:document:%s", documentID)
}

// Publish writes u to the Redis channel for u.DocumentID.
func (r *Redis) Publish(ctx context.Context, u Update) error {
	data, err := u.marshal()
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, channelName(u.DocumentID), data).Err()
}

type redisSub struct {
	pubsub *redis.PubSub
	ch     chan Update
	done   chan struct{}
}

func (s *redisSub) Updates() <-chan Update { return s.ch }

func (s *redisSub) Close() error {
	close(s.done)
	return s.pubsub.Close()
}

// Subscribe opens a Redis subscription for documentID and decodes incoming
// messages into Updates, dropping any message that fails to decode (a
// malformed frame from another process should not take this subscription
// down).
func (r *Redis) Subscribe(ctx context.Context, documentID string) (Subscription, error) {
	pubsub := r.client.Subscribe(ctx, channelName(documentID))
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, err
	}

	s := &redisSub{pubsub: pubsub, ch: make(chan Update, 32), done: make(chan struct{})}
	go s.loop()
	return s, nil
}

func (s *redisSub) loop() {
	defer close(s.ch)
	msgs := s.pubsub.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			u, err := unmarshalUpdate([]byte(msg.Payload))
			if err != nil {
				log.Warnw("dropping malformed broadcast message", "error", err)
				continue
			}
			select {
			case s.ch <- u:
			case <-s.done:
				return
			}
		}
	}
}
