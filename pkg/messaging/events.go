package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Document change events, suffixed with the collection group:
	// document.created.check_out_requests
	EventDocumentCreated = "document.created"
	EventDocumentUpdated = "document.updated"
	EventDocumentDeleted = "document.deleted"

	// Push gateway commands
	EventPushSend      = "push.send"
	EventPushSubscribe = "push.subscribe"

	// Admin events
	EventImportCompleted = "import.completed"
)

// Exchange names
const (
	ExchangeDocumentEvents = "docstore.events"
	ExchangePushOutbound   = "push.outbound"
	ExchangeAdminEvents    = "admin.events"
)

// DocumentEventType builds the routing key for a change in a collection group.
func DocumentEventType(op, collectionGroup string) string {
	return op + "." + collectionGroup
}

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Document Events

// DocumentChangedEvent is published by the observed document store after a
// successful write. Before is nil on create, After is nil on delete.
type DocumentChangedEvent struct {
	Path            string         `json:"path"`
	Collection      string         `json:"collection"`
	CollectionGroup string         `json:"collection_group"`
	DocumentID      string         `json:"document_id"`
	Operation       string         `json:"operation"`
	Before          map[string]any `json:"before,omitempty"`
	After           map[string]any `json:"after,omitempty"`
}

// Push Commands

// PushSendCommand asks the delivery gateway to send one notification.
type PushSendCommand struct {
	Token   string            `json:"token"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Data    map[string]string `json:"data,omitempty"`
	Android *AndroidHints     `json:"android,omitempty"`
	APNS    *APNSHints        `json:"apns,omitempty"`
}

// AndroidHints are platform delivery hints passed through untouched.
type AndroidHints struct {
	Priority    string `json:"priority"`
	Sound       string `json:"sound"`
	ChannelID   string `json:"channel_id"`
	ClickAction string `json:"click_action,omitempty"`
}

// APNSHints are platform delivery hints passed through untouched.
type APNSHints struct {
	Sound             string `json:"sound"`
	Badge             int    `json:"badge"`
	ContentAvailable  bool   `json:"content_available"`
	InterruptionLevel string `json:"interruption_level"`
}

// PushSubscribeCommand asks the delivery gateway to add a token to a topic.
type PushSubscribeCommand struct {
	Token string `json:"token"`
	Topic string `json:"topic"`
}

// Admin Events

// ImportCompletedEvent summarizes one spreadsheet import for auditing.
type ImportCompletedEvent struct {
	Mode       string `json:"mode"`
	Total      int    `json:"total"`
	Inserted   int    `json:"inserted"`
	Updated    int    `json:"updated"`
	Duplicates int    `json:"duplicates"`
	NotFound   int    `json:"not_found"`
	Errors     int    `json:"errors"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return uuid.New().String()
}
