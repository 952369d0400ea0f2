package exchange

import (
	"sync"

	"github.com/krobus00/derivex-service/internal/entity"
	"github.com/sirupsen/logrus"
)

const defaultSubscriberBuffer = 64

// EventHub fans registry events out to in-process listeners such as
// websocket clients. Slow listeners drop events instead of blocking writers.
type EventHub struct {
	mu          sync.RWMutex
	subscribers map[int]chan entity.ExchangeEvent
	nextID      int
	buffer      int
}

func NewEventHub(buffer int) *EventHub {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}

	return &EventHub{
		subscribers: make(map[int]chan entity.ExchangeEvent),
		buffer:      buffer,
	}
}

// Subscribe returns a channel of future events and a func that detaches it.
func (h *EventHub) Subscribe() (<-chan entity.ExchangeEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan entity.ExchangeEvent, h.buffer)
	h.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers, id)
			close(ch)
		})
	}
}

func (h *EventHub) Broadcast(event entity.ExchangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			logrus.WithFields(logrus.Fields{
				"subscriber": id,
				"event_id":   event.ID,
			}).Warn("event hub subscriber is full, dropping event")
		}
	}
}

func (h *EventHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers)
}
