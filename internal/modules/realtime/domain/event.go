package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidEvent is returned when an event fails structural validation at construction time.
	ErrInvalidEvent = errors.New("invalid event")
	// ErrMalformedEvent is returned when a broker payload cannot be decoded into an event.
	ErrMalformedEvent = errors.New("malformed event payload")
)

// EventType identifies the kind of state transition an event describes.
type EventType string

const (
	EventRentalRequested      EventType = "RENTAL_REQUESTED"
	EventRentalApproved       EventType = "RENTAL_APPROVED"
	EventRentalRejected       EventType = "RENTAL_REJECTED"
	EventRentalCompleted      EventType = "RENTAL_COMPLETED"
	EventRentalDeleted        EventType = "RENTAL_DELETED"
	EventVehicleCreated       EventType = "VEHICLE_CREATED"
	EventVehicleUpdated       EventType = "VEHICLE_UPDATED"
	EventVehicleDeleted       EventType = "VEHICLE_DELETED"
	EventVehicleStatusChanged EventType = "VEHICLE_STATUS_CHANGED"
	EventUserCreated          EventType = "USER_CREATED"
	EventUserUpdated          EventType = "USER_UPDATED"
	EventUserDeleted          EventType = "USER_DELETED"
	EventBranchCreated        EventType = "BRANCH_CREATED"
	EventBranchUpdated        EventType = "BRANCH_UPDATED"
	EventBranchDeleted        EventType = "BRANCH_DELETED"
)

const (
	TopicRentalEvents  = "rental_events"
	TopicVehicleEvents = "vehicle_events"
	TopicUserEvents    = "user_events"
	TopicBranchEvents  = "branch_events"
)

var eventTopics = map[EventType]string{
	EventRentalRequested:      TopicRentalEvents,
	EventRentalApproved:       TopicRentalEvents,
	EventRentalRejected:       TopicRentalEvents,
	EventRentalCompleted:      TopicRentalEvents,
	EventRentalDeleted:        TopicRentalEvents,
	EventVehicleCreated:       TopicVehicleEvents,
	EventVehicleUpdated:       TopicVehicleEvents,
	EventVehicleDeleted:       TopicVehicleEvents,
	EventVehicleStatusChanged: TopicVehicleEvents,
	EventUserCreated:          TopicUserEvents,
	EventUserUpdated:          TopicUserEvents,
	EventUserDeleted:          TopicUserEvents,
	EventBranchCreated:        TopicBranchEvents,
	EventBranchUpdated:        TopicBranchEvents,
	EventBranchDeleted:        TopicBranchEvents,
}

// requiresRecipient lists the event types that announce a decision on a specific
// user's rental and therefore must name at least one recipient.
var requiresRecipient = map[EventType]bool{
	EventRentalRequested: true,
	EventRentalApproved:  true,
	EventRentalRejected:  true,
	EventRentalCompleted: true,
}

// Known reports whether the event type is part of the published vocabulary.
func (t EventType) Known() bool {
	_, ok := eventTopics[t]
	return ok
}

// Topic returns the broker topic events of this type are published to.
func (t EventType) Topic() string {
	return eventTopics[t]
}

// Topics returns every broker topic the system publishes to, for consumer setup.
func Topics() []string {
	return []string{TopicRentalEvents, TopicVehicleEvents, TopicUserEvents, TopicBranchEvents}
}

// Audience selects a connected-user group as additional notification recipients.
type Audience string

const (
	AudienceNone      Audience = ""
	AudienceEmployees Audience = "employees"
	AudienceCustomers Audience = "customers"
)

// Role maps the audience onto the role stored on registered connections.
func (a Audience) Role() string {
	switch a {
	case AudienceEmployees:
		return "EMPLOYEE"
	case AudienceCustomers:
		return "CUSTOMER"
	default:
		return ""
	}
}

func (a Audience) valid() bool {
	switch a {
	case AudienceNone, AudienceEmployees, AudienceCustomers:
		return true
	default:
		return false
	}
}

// Event is an immutable record of a domain state transition. It is created by
// the domain services at the moment of the transition and carried through the
// broker to the notification dispatcher.
type Event struct {
	Type          EventType      `json:"event_type"`
	SubjectID     string         `json:"subject_id"`
	TargetUserIDs []string       `json:"target_user_ids,omitempty"`
	Audience      Audience       `json:"audience,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// NewEvent validates and constructs an event, stamping it with the current UTC time.
func NewEvent(eventType EventType, subjectID string, targets []string, audience Audience, payload map[string]any) (*Event, error) {
	ev := &Event{
		Type:          eventType,
		SubjectID:     strings.TrimSpace(subjectID),
		TargetUserIDs: targets,
		Audience:      audience,
		Payload:       payload,
		Timestamp:     time.Now().UTC(),
	}
	if err := ev.validate(); err != nil {
		return nil, err
	}
	return ev, nil
}

func (e *Event) validate() error {
	if !e.Type.Known() {
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidEvent, e.Type)
	}
	if e.SubjectID == "" {
		return fmt.Errorf("%w: missing subject id", ErrInvalidEvent)
	}
	if !e.Audience.valid() {
		return fmt.Errorf("%w: unknown audience %q", ErrInvalidEvent, e.Audience)
	}
	for _, id := range e.TargetUserIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: blank target user id", ErrInvalidEvent)
		}
	}
	if requiresRecipient[e.Type] && len(e.TargetUserIDs) == 0 && e.Audience == AudienceNone {
		return fmt.Errorf("%w: event type %s requires at least one recipient", ErrInvalidEvent, e.Type)
	}
	return nil
}

// DecodeEvent parses a broker payload back into an event. Payloads that do not
// unmarshal or do not validate are reported as ErrMalformedEvent so the consume
// loop can discard them without stopping.
func DecodeEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := ev.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return &ev, nil
}
