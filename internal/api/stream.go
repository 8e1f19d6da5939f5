package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"scamwatch/internal/alert"
	"scamwatch/internal/store"
)

// FeedEvent describes websocket payloads emitted for the UI shell: store
// changes and surface slot transitions.
type FeedEvent struct {
	Type      string      `json:"type"`
	EventID   string      `json:"event_id,omitempty"`
	Alert     *AlertDTO   `json:"alert,omitempty"`
	AlertID   uint        `json:"alert_id,omitempty"`
	View      *alert.View `json:"view,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// AlertFeed tracks connected websocket clients and broadcasts feed events.
// It doubles as the alert manager's surface: attach/detach transitions are
// rendered by the UI shell on the other end of the socket.
type AlertFeed struct {
	mu       sync.Mutex
	clients  map[*wsClient]struct{}
	lastView *FeedEvent
}

// NewAlertFeed constructs the feed.
func NewAlertFeed() *AlertFeed {
	return &AlertFeed{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection. A late joiner immediately
// receives the currently attached view, if any.
func (f *AlertFeed) Register(conn *websocket.Conn) *wsClient {
	client := &wsClient{conn: conn}
	f.mu.Lock()
	f.clients[client] = struct{}{}
	last := f.lastView
	f.mu.Unlock()

	if last != nil {
		_ = client.writeJSON(*last)
	}
	return client
}

// Unregister removes the websocket client and closes the socket.
func (f *AlertFeed) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	f.mu.Lock()
	delete(f.clients, client)
	f.mu.Unlock()
	_ = client.conn.Close()
}

// Broadcast sends the event to all registered clients, dropping clients
// whose writes fail.
func (f *AlertFeed) Broadcast(event FeedEvent) {
	event.Timestamp = time.Now().UTC()

	f.mu.Lock()
	switch event.Type {
	case "surface_attach", "surface_update":
		snapshot := event
		f.lastView = &snapshot
	case "surface_detach":
		f.lastView = nil
	}
	for client := range f.clients {
		if err := client.writeJSON(event); err != nil {
			delete(f.clients, client)
			_ = client.conn.Close()
		}
	}
	f.mu.Unlock()
}

// AlertSaved broadcasts a persisted alert (pipeline.Feed).
func (f *AlertFeed) AlertSaved(record store.Alert) {
	dto := toAlertDTO(record)
	f.Broadcast(FeedEvent{Type: "alert_saved", EventID: record.EventID, Alert: &dto})
}

// AlertDismissed broadcasts a dismiss mutation.
func (f *AlertFeed) AlertDismissed(id uint) {
	f.Broadcast(FeedEvent{Type: "alert_dismissed", AlertID: id})
}

// Attach implements alert.Surface.
func (f *AlertFeed) Attach(view alert.View) error {
	f.Broadcast(FeedEvent{Type: "surface_attach", EventID: view.EventID, View: &view})
	return nil
}

// Update implements alert.Surface.
func (f *AlertFeed) Update(view alert.View) {
	f.Broadcast(FeedEvent{Type: "surface_update", EventID: view.EventID, View: &view})
}

// Collapse implements alert.Surface.
func (f *AlertFeed) Collapse(eventID string) {
	f.Broadcast(FeedEvent{Type: "surface_collapse", EventID: eventID})
}

// Detach implements alert.Surface.
func (f *AlertFeed) Detach(eventID string) {
	f.Broadcast(FeedEvent{Type: "surface_detach", EventID: eventID})
}

func (c *wsClient) writeJSON(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}
