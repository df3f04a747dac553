package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"outlay/internal/database"
)

// ChangeMessage announces that a collection changed. It carries no data:
// receivers read the collection from the database themselves.
type ChangeMessage struct {
	Path      string    `json:"path"`
	Origin    string    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change message for path sent by origin
func NewChangeMessage(path, origin string) *ChangeMessage {
	return &ChangeMessage{
		Path:      path,
		Origin:    origin,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON parses and validates a message
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := database.ValidatePath(msg.Path); err != nil {
		return nil, fmt.Errorf("change message: %w", err)
	}
	return &msg, nil
}
