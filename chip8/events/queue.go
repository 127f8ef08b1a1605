package events

import (
	"errors"
	"sync"
)

// ErrDisconnected is returned when the other end of a queue is gone.
var ErrDisconnected = errors.New("channel disconnected")

// Queue is an unbounded FIFO of messages. Push never blocks and TryPop
// returns immediately when the queue is empty.
type Queue struct {
	mu     sync.Mutex
	items  []Message
	closed bool
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push appends m. It fails once the queue is closed.
func (q *Queue) Push(m Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrDisconnected
	}
	q.items = append(q.items, m)
	return nil
}

// TryPop removes the oldest message. ok is false when nothing is pending;
// err is ErrDisconnected once the queue is closed and drained.
func (q *Queue) TryPop() (m Message, ok bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		if q.closed {
			return Message{}, false, ErrDisconnected
		}
		return Message{}, false, nil
	}
	m = q.items[0]
	q.items[0] = Message{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return m, true, nil
}

// Close marks the queue as disconnected. Pending messages can still be popped.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
