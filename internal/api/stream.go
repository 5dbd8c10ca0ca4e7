package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"marca-checker/internal/check"
)

const clientBuffer = 16

// ConsultationEvent is the websocket payload emitted after each completed consultation.
type ConsultationEvent struct {
	Type         string           `json:"type"`
	Consultation *ConsultationDTO `json:"consultation,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
}

// wsClient owns a websocket connection. Events are queued on send and written by writePump.
type wsClient struct {
	conn *websocket.Conn
	send chan ConsultationEvent
	once sync.Once
}

// ConsultationNotifier keeps track of websocket subscribers and broadcasts consultation events.
// Broadcast never waits on a socket: a subscriber whose queue is full is dropped.
type ConsultationNotifier struct {
	mu        sync.Mutex
	clients   map[*wsClient]struct{}
	lastEvent *ConsultationEvent
	aiEnabled bool
}

// NewConsultationNotifier constructs a notifier. aiEnabled is copied into every broadcast consultation.
func NewConsultationNotifier(aiEnabled bool) *ConsultationNotifier {
	return &ConsultationNotifier{clients: make(map[*wsClient]struct{}), aiEnabled: aiEnabled}
}

// Publish adapts a pipeline result into an event; it matches check.Config.OnResult.
func (n *ConsultationNotifier) Publish(result check.Result) {
	dto := FromResult(result, n.aiEnabled)
	n.Broadcast(ConsultationEvent{Type: "consultation", Consultation: &dto})
}

// Register attaches a websocket connection, queues the last event for it and starts its writer.
func (n *ConsultationNotifier) Register(conn *websocket.Conn) *wsClient {
	client := &wsClient{conn: conn, send: make(chan ConsultationEvent, clientBuffer)}
	n.mu.Lock()
	if n.lastEvent != nil {
		client.send <- *n.lastEvent
	}
	n.clients[client] = struct{}{}
	n.mu.Unlock()

	go client.writePump()
	return client
}

// Unregister removes the websocket client and closes the socket.
func (n *ConsultationNotifier) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	n.mu.Lock()
	delete(n.clients, client)
	n.mu.Unlock()
	client.close()
	if client.conn != nil {
		_ = client.conn.Close()
	}
}

// Broadcast queues the event for every subscriber, dropping those that cannot keep up.
func (n *ConsultationNotifier) Broadcast(event ConsultationEvent) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	defer n.mu.Unlock()
	snapshot := event
	n.lastEvent = &snapshot
	for client := range n.clients {
		select {
		case client.send <- event:
		default:
			delete(n.clients, client)
			client.close()
		}
	}
}

// Subscribers reports the number of connected websocket clients.
func (n *ConsultationNotifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.clients)
}

// close stops the writer; only the notifier calls it, after removing the client from its set.
func (c *wsClient) close() {
	c.once.Do(func() { close(c.send) })
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for event := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteJSON(event); err != nil {
			return
		}
	}
}
