package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlan-control/wland/internal/config"
	"github.com/wlan-control/wland/internal/logging"
)

func newTestHub(replay, subBuffer int) *Hub {
	return NewHub(config.TelemetryConfig{
		ReplayBuffer:     replay,
		SubscriberBuffer: subBuffer,
	}, logging.Nop())
}

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed before event arrived")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishDeliversToSubscribers(t *testing.T) {
	h := newTestHub(8, 8)
	t.Cleanup(h.Close)

	ch, cancel := h.Subscribe(context.Background(), 0)
	defer cancel()

	published := h.Publish(TypeSetting, map[string]interface{}{"name": "pollRssiIntervalMillis"})
	require.Greater(t, published.ID, int64(0))
	assert.False(t, published.Timestamp.IsZero())

	got := recvEvent(t, ch)
	assert.Equal(t, published.ID, got.ID)
	assert.Equal(t, TypeSetting, got.Type)
	assert.Equal(t, "pollRssiIntervalMillis", got.Data["name"])
}

func TestEventIDsAreMonotonic(t *testing.T) {
	h := newTestHub(8, 8)
	t.Cleanup(h.Close)

	first := h.Publish(TypeRssi, nil)
	second := h.Publish(TypeRssi, nil)

	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, second.ID, h.LastEventID())
}

func TestSubscribeReplaysAfterLastEventID(t *testing.T) {
	h := newTestHub(8, 8)
	t.Cleanup(h.Close)

	e1 := h.Publish(TypeRssi, map[string]interface{}{"rssiDbm": -50})
	e2 := h.Publish(TypeRssi, map[string]interface{}{"rssiDbm": -51})
	e3 := h.Publish(TypeRssi, map[string]interface{}{"rssiDbm": -52})

	ch, cancel := h.Subscribe(context.Background(), e1.ID)
	defer cancel()

	got := recvEvent(t, ch)
	assert.Equal(t, e2.ID, got.ID)
	got = recvEvent(t, ch)
	assert.Equal(t, e3.ID, got.ID)
}

func TestReplayRingEvictsOldest(t *testing.T) {
	h := newTestHub(2, 8)
	t.Cleanup(h.Close)

	h.Publish(TypeRssi, map[string]interface{}{"seq": 1})
	e2 := h.Publish(TypeRssi, map[string]interface{}{"seq": 2})
	e3 := h.Publish(TypeRssi, map[string]interface{}{"seq": 3})

	// Ring capacity 2 keeps only the two newest events.
	ch, cancel := h.Subscribe(context.Background(), 0)
	defer cancel()

	got := recvEvent(t, ch)
	assert.Equal(t, e2.ID, got.ID)
	got = recvEvent(t, ch)
	assert.Equal(t, e3.ID, got.ID)
}

func TestSlowSubscriberDropsOldest(t *testing.T) {
	h := newTestHub(8, 2)
	t.Cleanup(h.Close)

	ch, cancel := h.Subscribe(context.Background(), 0)
	defer cancel()

	h.Publish(TypeRssi, map[string]interface{}{"seq": 1})
	h.Publish(TypeRssi, map[string]interface{}{"seq": 2})
	e3 := h.Publish(TypeRssi, map[string]interface{}{"seq": 3})
	e4 := h.Publish(TypeRssi, map[string]interface{}{"seq": 4})

	got := recvEvent(t, ch)
	assert.Equal(t, e3.ID, got.ID)
	got = recvEvent(t, ch)
	assert.Equal(t, e4.ID, got.ID)
}

func TestCancelClosesChannel(t *testing.T) {
	h := newTestHub(8, 8)
	t.Cleanup(h.Close)

	ch, cancel := h.Subscribe(context.Background(), 0)
	require.Equal(t, 1, h.SubscriberCount())

	cancel()
	cancel() // idempotent

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, h.SubscriberCount())
}

func TestContextCancellationUnsubscribes(t *testing.T) {
	h := newTestHub(8, 8)
	t.Cleanup(h.Close)

	ctx, cancelCtx := context.WithCancel(context.Background())
	ch, _ := h.Subscribe(ctx, 0)
	cancelCtx()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, h.SubscriberCount())
}

func TestCloseShutsDownSubscribers(t *testing.T) {
	h := newTestHub(8, 8)

	ch, cancel := h.Subscribe(context.Background(), 0)
	h.Close()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, h.SubscriberCount())

	// Publish and a late cancel are harmless after Close.
	h.Publish(TypeRssi, nil)
	cancel()
	h.Close()
}

func TestSubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	h := newTestHub(8, 8)
	h.Close()

	ch, cancel := h.Subscribe(context.Background(), 0)
	defer cancel()

	_, ok := <-ch
	assert.False(t, ok)
}

func TestHeartbeatsReachSubscribersButSkipReplay(t *testing.T) {
	h := newTestHub(8, 8)
	t.Cleanup(h.Close)

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	ch, cancel := h.Subscribe(context.Background(), 0)
	defer cancel()

	go h.RunHeartbeat(ctx, 10*time.Millisecond)

	got := recvEvent(t, ch)
	assert.Equal(t, TypeHeartbeat, got.Type)

	// A fresh subscriber replays nothing: heartbeats stay out of the ring.
	ch2, cancel2 := h.Subscribe(context.Background(), 0)
	defer cancel2()
	select {
	case event := <-ch2:
		// Only live heartbeats may arrive, never a replayed one with an
		// ID at or below the one already observed.
		assert.Greater(t, event.ID, got.ID)
	case <-time.After(50 * time.Millisecond):
	}
}
