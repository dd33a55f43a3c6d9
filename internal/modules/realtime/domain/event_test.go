package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestNewEventStampsTimestamp(t *testing.T) {
	t.Parallel()

	before := time.Now().UTC()
	ev, err := NewEvent(EventRentalApproved, "r42", []string{"u1"}, AudienceNone, map[string]any{"new_status": "APPROVED"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Timestamp.Before(before) {
		t.Fatalf("timestamp not stamped: %s", ev.Timestamp)
	}
	if ev.Type.Topic() != TopicRentalEvents {
		t.Fatalf("unexpected topic: %s", ev.Type.Topic())
	}
}

func TestNewEventRejectsUnknownType(t *testing.T) {
	t.Parallel()

	_, err := NewEvent(EventType("RENTAL_EXPLODED"), "r1", nil, AudienceNone, nil)
	if !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestNewEventRejectsMissingSubject(t *testing.T) {
	t.Parallel()

	_, err := NewEvent(EventVehicleStatusChanged, "   ", nil, AudienceNone, nil)
	if !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestNewEventRequiresRecipientForRentalDecisions(t *testing.T) {
	t.Parallel()

	for _, eventType := range []EventType{EventRentalRequested, EventRentalApproved, EventRentalRejected, EventRentalCompleted} {
		if _, err := NewEvent(eventType, "r1", nil, AudienceNone, nil); !errors.Is(err, ErrInvalidEvent) {
			t.Fatalf("%s without recipients: expected ErrInvalidEvent, got %v", eventType, err)
		}
		if _, err := NewEvent(eventType, "r1", nil, AudienceEmployees, nil); err != nil {
			t.Fatalf("%s with audience: unexpected error %v", eventType, err)
		}
		if _, err := NewEvent(eventType, "r1", []string{"u1"}, AudienceNone, nil); err != nil {
			t.Fatalf("%s with target: unexpected error %v", eventType, err)
		}
	}
}

func TestNewEventAllowsUntargetedLifecycleEvents(t *testing.T) {
	t.Parallel()

	ev, err := NewEvent(EventUserCreated, "u7", nil, AudienceNone, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Type.Topic() != TopicUserEvents {
		t.Fatalf("unexpected topic: %s", ev.Type.Topic())
	}
}

func TestNewEventRejectsBlankTargetID(t *testing.T) {
	t.Parallel()

	_, err := NewEvent(EventRentalApproved, "r1", []string{"u1", " "}, AudienceNone, nil)
	if !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestDecodeEventRoundTrip(t *testing.T) {
	t.Parallel()

	ev, err := NewEvent(EventRentalApproved, "r42", []string{"u1"}, AudienceEmployees, map[string]any{"new_status": "APPROVED"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Type != EventRentalApproved || decoded.SubjectID != "r42" {
		t.Fatalf("decoded mismatch: %+v", decoded)
	}
	if decoded.Audience.Role() != "EMPLOYEE" {
		t.Fatalf("unexpected audience role: %s", decoded.Audience.Role())
	}
}

func TestDecodeEventMalformed(t *testing.T) {
	t.Parallel()

	for name, payload := range map[string][]byte{
		"not json":     []byte("{nope"),
		"unknown type": []byte(`{"event_type":"WHAT","subject_id":"s1"}`),
		"no subject":   []byte(`{"event_type":"VEHICLE_STATUS_CHANGED"}`),
	} {
		if _, err := DecodeEvent(payload); !errors.Is(err, ErrMalformedEvent) {
			t.Fatalf("%s: expected ErrMalformedEvent, got %v", name, err)
		}
	}
}

func TestNotificationDropsRoutingFields(t *testing.T) {
	t.Parallel()

	ev, err := NewEvent(EventRentalRejected, "r9", []string{"u3"}, AudienceNone, map[string]any{"reason": "no vehicles"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := ev.Notification()
	if n.EventType != EventRentalRejected || n.SubjectID != "r9" {
		t.Fatalf("unexpected notification: %+v", n)
	}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := raw["target_user_ids"]; ok {
		t.Fatal("notification leaked routing fields")
	}
}
