package models

// EventType identifies a pushed event.
type EventType string

const (
	EventLayoutUpdated EventType = "layout:updated"
	EventLayoutDeleted EventType = "layout:deleted"
	EventNotice        EventType = "notice"
)

// Event is published by the session manager and pushed to WebSocket clients.
type Event struct {
	Type      EventType     `json:"type"`
	Tag       string        `json:"tag,omitempty"`
	Message   string        `json:"message,omitempty"`
	Record    *LayoutRecord `json:"record,omitempty"`
	Timestamp int64         `json:"timestamp"`
}
