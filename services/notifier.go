package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dashboard event names
const (
	EventNewOrder               = "new_order"
	EventNewLead                = "new-lead"
	EventProblematicPartCreated = "problematicPartCreated"
	EventProblematicPartUpdated = "problematicPartUpdated"
	EventProblematicPartDeleted = "problematicPartDeleted"
	subscriberBuffer            = 32
)

// ErrNotifierNotInitialized is returned when an event is emitted before the
// notifier was constructed
var ErrNotifierNotInitialized = errors.New("notifier not initialized")

// Event is one message pushed to dashboard clients
type Event struct {
	Name string    `json:"event"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

// Publisher mirrors events to an external broker
type Publisher interface {
	Publish(ctx context.Context, channel, message string) error
}

// Notifier fans dashboard events out to connected clients. Delivery is fire
// and forget: a client whose buffer is full misses the event.
type Notifier struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int

	publisher Publisher
	channel   string
	logger    *zap.Logger
}

// NewNotifier creates a Notifier. publisher may be nil.
func NewNotifier(logger *zap.Logger, publisher Publisher, channel string) *Notifier {
	return &Notifier{
		subscribers: make(map[int]chan Event),
		publisher:   publisher,
		channel:     channel,
		logger:      logger,
	}
}

// Subscribe registers a client. The returned func unregisters it and closes
// the channel.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subscribers[id] = ch
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subscribers, id)
			n.mu.Unlock()
			close(ch)
		})
	}
}

// SubscriberCount returns the number of connected clients
func (n *Notifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}

// Emit delivers an event to every subscriber and mirrors it to the publisher
func (n *Notifier) Emit(ctx context.Context, name string, payload any) error {
	if n == nil {
		return ErrNotifierNotInitialized
	}

	event := Event{Name: name, Data: payload, At: time.Now().UTC()}

	n.mu.RLock()
	for id, ch := range n.subscribers {
		select {
		case ch <- event:
		default:
			n.logger.Warn("dropping event for slow subscriber",
				zap.String("event", name),
				zap.Int("subscriber", id),
			)
		}
	}
	n.mu.RUnlock()

	if n.publisher == nil {
		return nil
	}
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", name, err)
	}
	if err := n.publisher.Publish(ctx, n.channel, string(message)); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", name, err)
	}
	return nil
}

// emitAfterCommit emits an event and logs a failure instead of returning it;
// the write it reports on is already committed.
func emitAfterCommit(ctx context.Context, n *Notifier, logger *zap.Logger, name string, payload any) {
	if err := n.Emit(ctx, name, payload); err != nil {
		logger.Error("failed to emit dashboard event", zap.String("event", name), zap.Error(err))
	}
}

// RedisPublisher publishes events on a Redis channel
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher connects to the Redis server at url (redis://...)
func NewRedisPublisher(ctx context.Context, url string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPublisher{rdb: rdb}, nil
}

// Publish sends message to channel
func (p *RedisPublisher) Publish(ctx context.Context, channel, message string) error {
	return p.rdb.Publish(ctx, channel, message).Err()
}

// Close closes the connection
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
