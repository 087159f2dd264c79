//
//
package telemetry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/wlan-control/wland/internal/config"
)

// Event types carried by the hub.
const (
	TypeRssi         = "rssi"
	TypeBluetooth    = "bluetooth"
	TypeReachability = "reachability"
	TypeRadioState   = "radioState"
	TypeAnqpFlush    = "anqpFlush"
	TypeSetting      = "setting"
	TypeHeartbeat    = "heartbeat"
)

// Event is one telemetry event. IDs increase monotonically across the hub
// so Last-Event-ID resume can filter the replay ring.
type Event struct {
	ID        int64                  `json:"id"`
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"ts"`
}

// subscriber is one registered event consumer.
type subscriber struct {
	ch      chan Event
	dropped atomic.Int64
}

// Hub distributes events to subscribers and replays recent history.
//
// Subscriber channels are buffered; when a consumer falls behind the oldest
// queued event is dropped to make room so publishers never block.
type Hub struct {
	mu     sync.Mutex
	subs   map[int64]*subscriber
	ring   []Event
	closed bool

	nextEventID atomic.Int64
	nextSubID   atomic.Int64

	ringCapacity int
	subBuffer    int
	log          zerolog.Logger
}

// NewHub creates a hub sized by the telemetry configuration.
func NewHub(cfg config.TelemetryConfig, log zerolog.Logger) *Hub {
	return &Hub{
		subs:         make(map[int64]*subscriber),
		ring:         make([]Event, 0, cfg.ReplayBuffer),
		ringCapacity: cfg.ReplayBuffer,
		subBuffer:    cfg.SubscriberBuffer,
		log:          log,
	}
}

// Publish assigns an ID and timestamp, stores the event in the replay ring,
// and fans it out to every subscriber. The completed event is returned.
func (h *Hub) Publish(eventType string, data map[string]interface{}) Event {
	return h.publish(eventType, data, true)
}

// publish optionally skips the replay ring; heartbeats are delivered live
// but not replayed.
func (h *Hub) publish(eventType string, data map[string]interface{}, buffer bool) Event {
	event := Event{
		ID:        h.nextEventID.Add(1),
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return event
	}

	if buffer {
		h.ring = append(h.ring, event)
		if h.ringCapacity > 0 && len(h.ring) > h.ringCapacity {
			h.ring = h.ring[1:]
		}
	}

	for _, sub := range h.subs {
		select {
		case sub.ch <- event:
		default:
			// Drop the oldest queued event to make room.
			select {
			case <-sub.ch:
				sub.dropped.Add(1)
			default:
			}
			select {
			case sub.ch <- event:
			default:
			}
		}
	}

	return event
}

// Subscribe registers a consumer. Ring events with IDs above lastEventID
// are queued before any live event so resumed streams see history first.
// The returned cancel is idempotent and closes the event channel.
func (h *Hub) Subscribe(ctx context.Context, lastEventID int64) (<-chan Event, func()) {
	h.mu.Lock()

	var replay []Event
	for _, event := range h.ring {
		if event.ID > lastEventID {
			replay = append(replay, event)
		}
	}

	sub := &subscriber{
		ch: make(chan Event, h.subBuffer+len(replay)),
	}
	for _, event := range replay {
		sub.ch <- event
	}

	id := h.nextSubID.Add(1)
	if h.closed {
		// A closed hub hands out an already-closed channel.
		close(sub.ch)
		h.mu.Unlock()
		return sub.ch, func() {}
	}
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			_, present := h.subs[id]
			delete(h.subs, id)
			h.mu.Unlock()
			// Close skips channels it already closed during shutdown.
			if present {
				close(sub.ch)
			}
			if n := sub.dropped.Load(); n > 0 {
				h.log.Debug().Int64("dropped", n).Msg("subscriber lagged, events dropped")
			}
		})
	}

	context.AfterFunc(ctx, cancel)

	return sub.ch, cancel
}

// LastEventID returns the most recently assigned event ID.
func (h *Hub) LastEventID() int64 {
	return h.nextEventID.Load()
}

// SubscriberCount returns the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// RunHeartbeat emits heartbeat events at the given interval while there is
// at least one subscriber. It blocks until ctx is cancelled.
func (h *Hub) RunHeartbeat(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if h.SubscriberCount() == 0 {
				continue
			}
			h.publish(TypeHeartbeat, map[string]interface{}{
				"ts": time.Now().UTC().Format(time.RFC3339),
			}, false)
		}
	}
}

// Close detaches and closes every subscriber. Publish becomes a no-op.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}
