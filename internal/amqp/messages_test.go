package amqp

import (
	"testing"
	"time"
)

func TestEntrySyncMessageRoundTrip(t *testing.T) {
	msg := NewEntrySyncMessage("entry-1", "user-1", 3)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := EntrySyncMessageFromJSON(data)
	if err != nil {
		t.Fatalf("EntrySyncMessageFromJSON() error = %v", err)
	}

	if got.ID != "entry-1" {
		t.Errorf("ID = %q, want %q", got.ID, "entry-1")
	}
	if got.UID != "user-1" {
		t.Errorf("UID = %q, want %q", got.UID, "user-1")
	}
	if got.Version != 3 {
		t.Errorf("Version = %d, want 3", got.Version)
	}
	if got.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(got.Timestamp) > time.Minute {
		t.Errorf("Timestamp %v too far in the past", got.Timestamp)
	}
}

func TestEntrySyncMessageFromJSONInvalid(t *testing.T) {
	if _, err := EntrySyncMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
