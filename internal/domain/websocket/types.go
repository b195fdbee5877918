package websocket

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType represents the realtime event types
type EventType string

const (
	// Connection events
	EventTypePing         EventType = "ping"
	EventTypePong         EventType = "pong"
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"

	// Subscription events
	EventTypeSubscribe   EventType = "subscribe"
	EventTypeUnsubscribe EventType = "unsubscribe"

	// Dispatch history (client -> server)
	EventTypeDispatchHistory EventType = "dispatch:history"
)

// WSMessage is the universal message format. Channel is set on messages
// fanned out through a broadcast channel.
type WSMessage struct {
	Type      EventType   `json:"type"`
	Channel   string      `json:"channel,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	ID        string      `json:"id,omitempty"`
}

// SubscribeRequest sent by client to subscribe to a channel. Auth is required
// for private channels and is obtained from the channel auth endpoint.
type SubscribeRequest struct {
	Channel string `json:"channel"`
	Auth    string `json:"auth,omitempty"`
}

// UnsubscribeRequest sent by client to leave a channel
type UnsubscribeRequest struct {
	Channel string `json:"channel"`
}

// ErrorData for error events
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NewMessage creates a message stamped with a fresh id.
func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
		ID:        ulid.Make().String(),
	}
}

// NewChannelMessage creates a message addressed to a broadcast channel.
func NewChannelMessage(channel string, eventType EventType, data interface{}) *WSMessage {
	msg := NewMessage(eventType, data)
	msg.Channel = channel
	return msg
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}
