package domain

import "time"

// Notification is the JSON object pushed to a WebSocket client. It carries the
// event minus its routing fields; who receives it is the dispatcher's concern.
type Notification struct {
	EventType EventType      `json:"event_type"`
	SubjectID string         `json:"subject_id"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Notification derives the client-facing envelope for the event.
func (e *Event) Notification() *Notification {
	return &Notification{
		EventType: e.Type,
		SubjectID: e.SubjectID,
		Payload:   e.Payload,
		Timestamp: e.Timestamp,
	}
}

// EventConnected is pushed once over a freshly upgraded socket. It is never
// published to the broker, so it is deliberately absent from the topic table.
const EventConnected EventType = "CONNECTED"

// ConnectedNotification greets a newly attached client.
func ConnectedNotification(userID string) *Notification {
	return &Notification{
		EventType: EventConnected,
		SubjectID: userID,
		Timestamp: time.Now().UTC(),
	}
}
