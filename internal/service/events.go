package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventRowResolved EventType = "row_resolved"
	EventRunFinished EventType = "run_finished"
)

// Event represents something that happened during a run
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// RowOutcome is the payload of EventRowResolved
type RowOutcome struct {
	Line      int    `json:"line"`
	Name      string `json:"name"`
	Group     string `json:"group"`
	Slot      string `json:"slot,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// EventBus allows publishing and subscribing to events. Publish is called
// from probe workers and never blocks.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
