package events

// Link is one end of a duplex channel: two one-directional queues, one
// for each direction.
type Link struct {
	send *Queue
	recv *Queue
}

// NewDuplex returns the two connected ends of a duplex channel. Messages
// sent on one end are received on the other.
func NewDuplex() (host, emu *Link) {
	toEmu := NewQueue()
	toHost := NewQueue()
	return &Link{send: toEmu, recv: toHost}, &Link{send: toHost, recv: toEmu}
}

// Send queues m for the other end. It fails with ErrDisconnected when
// either end has been closed.
func (l *Link) Send(m Message) error {
	return l.send.Push(m)
}

// TryReceive returns the next message without blocking. ok is false when
// nothing is pending; err is ErrDisconnected once the other end closed and
// every message it sent has been received.
func (l *Link) TryReceive() (Message, bool, error) {
	return l.recv.TryPop()
}

// Drain receives every pending message of type t and returns how many
// there were. Messages of other types are kept in order.
func (l *Link) Drain(t Type) int {
	l.recv.mu.Lock()
	defer l.recv.mu.Unlock()

	n := 0
	kept := l.recv.items[:0]
	for _, m := range l.recv.items {
		if m.Type == t {
			n++
			continue
		}
		kept = append(kept, m)
	}
	clear(l.recv.items[len(kept):])
	l.recv.items = kept
	return n
}

// Close disconnects this end in both directions.
func (l *Link) Close() {
	l.send.Close()
	l.recv.Close()
}
