package queue

import (
	"context"
	"sync"

	"github.com/remixlabs/ledger/common/logger"
)

// Queue interface for the ledger event feed. The ledger publishes one
// message per mutation; the notification collaborator subscribes.
type Queue interface {
	Publish(ctx context.Context, topic string, key string, message []byte) error
	Subscribe(ctx context.Context, topic string, handler MessageHandler) error
	Close() error
}

// MessageHandler processes messages
type MessageHandler func(ctx context.Context, key string, value []byte) error

// MemoryQueue is an in-process queue implementation
type MemoryQueue struct {
	topics map[string]chan *Message
	mu     sync.RWMutex
	log    *logger.Logger
}

// Message represents a queue message
type Message struct {
	Topic string
	Key   string
	Value []byte
}

// NewMemoryQueue creates a new in-memory queue
func NewMemoryQueue(log *logger.Logger) *MemoryQueue {
	return &MemoryQueue{
		topics: make(map[string]chan *Message),
		log:    log,
	}
}

// Publish publishes a message to a topic. Events are best-effort: a full
// topic drops the message with a warning rather than blocking a ledger write.
func (q *MemoryQueue) Publish(ctx context.Context, topic string, key string, message []byte) error {
	q.mu.Lock()
	ch, exists := q.topics[topic]
	if !exists {
		ch = make(chan *Message, 1000)
		q.topics[topic] = ch
	}
	q.mu.Unlock()

	msg := &Message{
		Topic: topic,
		Key:   key,
		Value: message,
	}

	select {
	case ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		q.log.Warn("queue full, dropping event", "topic", topic, "key", key)
		return nil
	}
}

// Subscribe subscribes to a topic and processes messages until ctx is done
func (q *MemoryQueue) Subscribe(ctx context.Context, topic string, handler MessageHandler) error {
	q.mu.Lock()
	ch, exists := q.topics[topic]
	if !exists {
		ch = make(chan *Message, 1000)
		q.topics[topic] = ch
	}
	q.mu.Unlock()

	go func() {
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := handler(ctx, msg.Key, msg.Value); err != nil {
					q.log.Error("message handler failed", "topic", topic, "key", msg.Key, "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Close closes all topic channels
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for topic, ch := range q.topics {
		close(ch)
		delete(q.topics, topic)
	}
	return nil
}
