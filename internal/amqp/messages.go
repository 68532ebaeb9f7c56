package amqp

import (
	"encoding/json"
	"time"
)

// EntrySyncMessage asks the worker to export one financial entry to the
// spreadsheet. It carries only identifiers; the worker fetches the entry
// from the store.
type EntrySyncMessage struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntrySyncMessage creates a new sync message for the given entry.
func NewEntrySyncMessage(id, uid string, version int64) *EntrySyncMessage {
	return &EntrySyncMessage{
		ID:        id,
		UID:       uid,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntrySyncMessageFromJSON creates a message from JSON bytes
func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
