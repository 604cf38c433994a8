// Package server defines the wire protocol shared by the session coordinator,
// the hub, and the browser clients.
package server

import (
	"encoding/json"

	"github.com/parlorchat/parlor/internal/chat"
)

// Inbound event names. Disconnect is the transport-level close, not an
// envelope.
const (
	EventJoin       = "join"
	EventText       = "text-message"
	EventImage      = "image-message"
	EventTyping     = "typing"
	EventStopTyping = "stop-typing"
)

// Outbound event names.
const (
	EventWelcome        = "welcome"
	EventMessage        = "message"
	EventUsers          = "users"
	EventUserTyping     = "user-typing"
	EventUserStopTyping = "user-stop-typing"
)

// Envelope is the frame exchanged over the websocket: a named event plus its
// JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinRequest is the payload of a join event. Every field is optional; the
// server substitutes a fallback name and random palette picks.
type JoinRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Color    string `json:"color"`
}

// TextPayload is the payload of a text-message event.
type TextPayload struct {
	Content string `json:"content"`
}

// ImagePayload is the payload of an image-message event. The URL comes from
// the upload endpoint; the chat core does not validate it.
type ImagePayload struct {
	URL string `json:"url"`
}

// TypingNotice is relayed to other sessions while a participant is typing.
type TypingNotice struct {
	Username string `json:"username"`
}

// WelcomePayload is delivered privately to a session right after it joins.
type WelcomePayload struct {
	User       chat.Participant `json:"user"`
	UsersCount int              `json:"usersCount"`
}

// marshalEvent encodes an event name and payload into a wire frame.
func marshalEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
