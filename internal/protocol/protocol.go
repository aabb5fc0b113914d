// Package protocol defines the messages exchanged over the status WebSocket.
package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// TypeStatus is pushed by the server whenever the bot status changes
	TypeStatus MessageType = "status"

	// TypeCommand is sent by a client to control the rotation
	TypeCommand MessageType = "command"

	// TypeSnapshotRequest asks the server for one game-state snapshot
	TypeSnapshotRequest MessageType = "snapshot_req"

	// TypeSnapshot carries a game-state snapshot
	TypeSnapshot MessageType = "snapshot"

	// TypeError reports a failed command back to the sending client
	TypeError MessageType = "error"

	// TypePing can be used for application-level heartbeats if needed
	TypePing MessageType = "ping"
)

// Message is the generic container for all WebSocket messages
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Command actions
const (
	ActionStart      = "start"
	ActionStop       = "stop"
	ActionToggle     = "toggle"
	ActionPause      = "pause"
	ActionResume     = "resume"
	ActionMode       = "mode"
	ActionToggleMode = "toggle_mode"
)

// CommandPayload is the payload for TypeCommand
type CommandPayload struct {
	Action   string `json:"action"`
	Rotation string `json:"rotation,omitempty"` // for start
	Mode     string `json:"mode,omitempty"`     // for mode
}

// ErrorPayload is the payload for TypeError
type ErrorPayload struct {
	Message string `json:"message"`
}

// New builds a message with payload encoded as JSON
func New(t MessageType, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: t}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return Message{Type: t, Payload: data}, nil
}

// Decode unmarshals the message payload into v
func (m Message) Decode(v any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%s message has no payload", m.Type)
	}
	return json.Unmarshal(m.Payload, v)
}
