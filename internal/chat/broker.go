package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Broker fans messages out to subscribers. Subscribe channels are closed
// when ctx ends or the subscriber falls behind.
type Broker interface {
	Publish(ctx context.Context, channel string, m Message) error
	Subscribe(ctx context.Context, channel string) (<-chan Message, error)
}

const subscriberBuffer = 32

// RedisBroker uses Redis pub/sub so every API instance sees every message.
type RedisBroker struct {
	client redis.UniversalClient
	logger *slog.Logger
}

func NewRedisBroker(client redis.UniversalClient, log *slog.Logger) *RedisBroker {
	return &RedisBroker{client: client, logger: log}
}

func (b *RedisBroker) Publish(ctx context.Context, channel string, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channel, data).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, channel string) (<-chan Message, error) {
	ps := b.client.Subscribe(ctx, channel)
	// Wait for the subscription to be confirmed so no message published
	// after Subscribe returns is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	out := make(chan Message, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()

		in := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-in:
				if !ok {
					return
				}
				var m Message
				if err := json.Unmarshal([]byte(raw.Payload), &m); err != nil {
					b.logger.WarnContext(ctx, "dropping malformed chat message",
						slog.String("channel", channel),
						slog.Any("error", err),
					)
					continue
				}
				select {
				case out <- m:
				default:
					b.logger.WarnContext(ctx, "chat subscriber too slow, disconnecting", slog.String("channel", channel))
					return
				}
			}
		}
	}()
	return out, nil
}

// MemoryBroker fans out within one process.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[string]map[*memorySub]struct{}
	closed bool
}

type memorySub struct {
	ch   chan Message
	once sync.Once
}

func (s *memorySub) close() {
	s.once.Do(func() { close(s.ch) })
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[*memorySub]struct{})}
}

// Publish never blocks. A subscriber whose buffer is full is dropped.
func (b *MemoryBroker) Publish(_ context.Context, channel string, m Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBrokerClosed
	}
	for s := range b.subs[channel] {
		select {
		case s.ch <- m:
		default:
			b.remove(channel, s)
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, channel string) (<-chan Message, error) {
	s := &memorySub{ch: make(chan Message, subscriberBuffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBrokerClosed
	}
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[*memorySub]struct{})
	}
	b.subs[channel][s] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		b.remove(channel, s)
		b.mu.Unlock()
	}()
	return s.ch, nil
}

// remove must be called with b.mu held.
func (b *MemoryBroker) remove(channel string, s *memorySub) {
	if set, ok := b.subs[channel]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(b.subs, channel)
		}
	}
	s.close()
}

// Subscribers returns the number of live subscribers on channel.
func (b *MemoryBroker) Subscribers(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[channel])
}

// Close disconnects every subscriber.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for channel, set := range b.subs {
		for s := range set {
			s.close()
		}
		delete(b.subs, channel)
	}
	return nil
}
