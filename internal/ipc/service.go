package ipc

import (
	"strconv"
	"sync"
)

// MaxSubscribers is the fan-out cap per service (spec §4.6: "fan-out to
// ≤8 concurrent subscribers").
const MaxSubscribers = 8

// Service names, matching spec §4.6's table.
const (
	ServiceGridEvents        = "GRID_EVENTS"
	ServiceGridWindowDetails  = "GRID_WINDOW_DETAILS"
	ServiceGridFocusEvents    = "GRID_FOCUS_EVENTS"
	ServiceGridLayout         = "GRID_LAYOUT"
	ServiceGridAnimation      = "GRID_ANIMATION"
	ServiceGridCommands       = "GRID_COMMANDS"
	ServiceGridResponses      = "GRID_RESPONSES"
	ServiceGridHeartbeat      = "GRID_HEARTBEAT"
)

// Subscriber is a single consumer's view of a Service: a bounded inbox
// the publisher fills and the consumer drains at its own pace.
type Subscriber struct {
	id     int
	ch     chan []byte
	closed chan struct{}
}

// Recv blocks until a message is available or the subscriber is closed,
// returning ok=false in the latter case.
func (s *Subscriber) Recv() ([]byte, bool) {
	select {
	case msg := <-s.ch:
		return msg, true
	case <-s.closed:
		return nil, false
	}
}

// TryRecv returns immediately with ok=false if nothing is queued — the
// shape the client's polling monitor loop and the dispatcher's bounded
// per-tick drain both need.
func (s *Subscriber) TryRecv() ([]byte, bool) {
	select {
	case msg := <-s.ch:
		return msg, true
	default:
		return nil, false
	}
}

// Service is a named publish/subscribe channel with ring-buffer history
// for late joiners and at-most-once, drop-on-backpressure delivery (spec
// §4.6). It never blocks Publish: a subscriber that falls behind simply
// misses messages, observable via heartbeat sequence gaps.
type Service struct {
	name string

	mu          sync.Mutex
	subscribers map[int]*Subscriber
	nextID      int

	history    [][]byte
	historyCap int
}

// NewService constructs a named service with the given ring-buffer
// history depth (0 disables history — appropriate for GRID_HEARTBEAT's
// "small" buffer tier).
func NewService(name string, historyCap int) *Service {
	return &Service{
		name:        name,
		subscribers: make(map[int]*Subscriber),
		historyCap:  historyCap,
	}
}

// Name returns the service's wire name.
func (s *Service) Name() string { return s.name }

// Subscribe registers a new consumer, replaying buffered history first
// (late-joiner support), and refuses registration past MaxSubscribers.
func (s *Service) Subscribe(inbox int) (*Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.subscribers) >= MaxSubscribers {
		return nil, errTooManySubscribers(s.name)
	}
	if inbox <= 0 {
		inbox = 64
	}

	sub := &Subscriber{id: s.nextID, ch: make(chan []byte, inbox), closed: make(chan struct{})}
	s.nextID++
	for _, msg := range s.history {
		select {
		case sub.ch <- msg:
		default:
		}
	}
	s.subscribers[sub.id] = sub
	return sub, nil
}

// Unsubscribe removes a subscriber and releases its inbox.
func (s *Service) Unsubscribe(sub *Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[sub.id]; !ok {
		return
	}
	delete(s.subscribers, sub.id)
	close(sub.closed)
}

// Publish fans a message out to every current subscriber without
// blocking: a full subscriber inbox drops the message for that subscriber
// only (spec §4.6: "the server never blocks on publish"). It also appends
// to the ring-buffer history.
func (s *Service) Publish(msg []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.historyCap > 0 {
		s.history = append(s.history, msg)
		if len(s.history) > s.historyCap {
			s.history = s.history[len(s.history)-s.historyCap:]
		}
	}
	for _, sub := range s.subscribers {
		select {
		case sub.ch <- msg:
		default:
			// Backpressure: drop for this subscriber, never block the
			// publisher.
		}
	}
}

// SubscriberCount reports the current fan-out width.
func (s *Service) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

type errTooManySubscribers string

func (e errTooManySubscribers) Error() string {
	return "ipc: service " + string(e) + " already has the maximum of " + strconv.Itoa(MaxSubscribers) + " subscribers"
}
