package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastDropsSubscriberWithFullQueue(t *testing.T) {
	notifier := NewConsultationNotifier(true)
	stalled := &wsClient{send: make(chan ConsultationEvent, 1)}
	notifier.mu.Lock()
	notifier.clients[stalled] = struct{}{}
	notifier.mu.Unlock()

	done := make(chan struct{})
	go func() {
		notifier.Broadcast(ConsultationEvent{Type: "consultation"})
		notifier.Broadcast(ConsultationEvent{Type: "consultation"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a stalled subscriber")
	}
	assert.Zero(t, notifier.Subscribers())

	queued, ok := <-stalled.send
	require.True(t, ok)
	assert.Equal(t, "consultation", queued.Type)
	_, ok = <-stalled.send
	assert.False(t, ok, "queue should be closed after the subscriber is dropped")
}

func TestUnregisterIsIdempotent(t *testing.T) {
	notifier := NewConsultationNotifier(false)
	client := &wsClient{send: make(chan ConsultationEvent, 1)}
	notifier.mu.Lock()
	notifier.clients[client] = struct{}{}
	notifier.mu.Unlock()

	notifier.Unregister(client)
	notifier.Unregister(client)
	assert.Zero(t, notifier.Subscribers())
}
