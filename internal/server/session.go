// Package server implements the per-connection session coordinator that ties
// the presence registry, the message log, and the hub together.
package server

import (
	"encoding/json"
	"log"

	"github.com/parlorchat/parlor/internal/chat"
)

// broadcaster is the fan-out surface the coordinator needs from the hub.
type broadcaster interface {
	ToAll(payload []byte)
	ToAllExcept(connID string, payload []byte)
	ToOne(connID string, payload []byte)
}

// Session drives the state machine for one connection: Connecting until a
// join event registers a participant, Joined while the participant is
// present, Disconnected once the transport reports the connection gone.
// Whether a participant is registered in the presence registry is the single
// source of truth for the Joined state.
type Session struct {
	connID   string
	hub      broadcaster
	store    chat.Store
	presence *chat.Presence
	roster   *chat.RosterLog
}

// NewSession creates the coordinator for a freshly opened connection.
// roster may be nil when no snapshot side-table is configured.
func NewSession(connID string, hub broadcaster, store chat.Store, presence *chat.Presence, roster *chat.RosterLog) *Session {
	return &Session{
		connID:   connID,
		hub:      hub,
		store:    store,
		presence: presence,
		roster:   roster,
	}
}

// HandleFrame decodes one inbound wire frame and dispatches it. Malformed
// frames and unknown events are logged and dropped; the connection stays up.
func (s *Session) HandleFrame(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("Invalid frame from %s: %v", s.connID, err)
		return
	}

	switch env.Event {
	case EventJoin:
		s.handleJoin(env.Data)
	case EventText:
		s.handleText(env.Data)
	case EventImage:
		s.handleImage(env.Data)
	case EventTyping:
		s.relayTyping(EventUserTyping)
	case EventStopTyping:
		s.relayTyping(EventUserStopTyping)
	default:
		log.Printf("Unknown event %q from %s", env.Event, s.connID)
	}
}

// handleJoin registers the participant and announces the arrival. A join from
// an already-joined connection replaces the old participant rather than
// duplicating it.
func (s *Session) handleJoin(data json.RawMessage) {
	var req JoinRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			log.Printf("Invalid join payload from %s: %v", s.connID, err)
		}
	}

	participant := chat.NewParticipant(s.connID, req.Username, req.Avatar, req.Color)
	s.presence.Register(participant)

	if s.roster != nil {
		if err := s.roster.Save(participant); err != nil {
			log.Printf("Failed to record participant %s in roster: %v", s.connID, err)
		}
	}

	s.announce(participant.DisplayName + " joined the chat")
	s.broadcastRoster()
	s.sendWelcome(participant)
}

// handleText persists and broadcasts a text submission. Submissions from a
// connection with no registered participant are dropped silently: the message
// raced a disconnect and is not a fault.
func (s *Session) handleText(data json.RawMessage) {
	var payload TextPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("Invalid text payload from %s: %v", s.connID, err)
		return
	}

	author, ok := s.presence.Get(s.connID)
	if !ok {
		return
	}
	s.deliver(chat.NewTextMessage(payload.Content, author))
}

// handleImage persists and broadcasts an image submission. The URL was minted
// by the upload endpoint and is not validated here.
func (s *Session) handleImage(data json.RawMessage) {
	var payload ImagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("Invalid image payload from %s: %v", s.connID, err)
		return
	}

	author, ok := s.presence.Get(s.connID)
	if !ok {
		return
	}
	s.deliver(chat.NewImageMessage(payload.URL, author))
}

// relayTyping forwards a typing signal to every other session. Typing events
// are transient: never persisted, never echoed back to the sender, and never
// throttled here (debouncing is the sending client's job).
func (s *Session) relayTyping(event string) {
	author, ok := s.presence.Get(s.connID)
	if !ok {
		return
	}

	payload, err := marshalEvent(event, TypingNotice{Username: author.DisplayName})
	if err != nil {
		log.Printf("Failed to encode %s event: %v", event, err)
		return
	}
	s.hub.ToAllExcept(s.connID, payload)
}

// Disconnect handles the transport-level disconnect transition. If no
// participant was ever registered the disconnect is a silent no-op.
func (s *Session) Disconnect() {
	participant, ok := s.presence.Get(s.connID)
	if !ok {
		return
	}

	s.presence.Unregister(s.connID)
	s.announce(participant.DisplayName + " left the chat")
	s.broadcastRoster()
}

// deliver appends a message to the log and broadcasts it to every session,
// the sender included, so the sender's UI renders from the server-confirmed
// event. An append failure means the message cannot be considered delivered,
// so the broadcast is skipped.
func (s *Session) deliver(msg *chat.Message) {
	if err := s.store.Append(msg); err != nil {
		log.Printf("Dropping %s message from %s: %v", msg.Kind, s.connID, err)
		return
	}

	payload, err := marshalEvent(EventMessage, msg)
	if err != nil {
		log.Printf("Failed to encode message %s: %v", msg.ID, err)
		return
	}
	s.hub.ToAll(payload)
}

// announce appends and broadcasts a system narration message.
func (s *Session) announce(text string) {
	s.deliver(chat.NewSystemMessage(text))
}

// sendWelcome delivers the private welcome event carrying the participant's
// assigned identity and the current roster size.
func (s *Session) sendWelcome(participant chat.Participant) {
	payload, err := marshalEvent(EventWelcome, WelcomePayload{
		User:       participant,
		UsersCount: s.presence.Count(),
	})
	if err != nil {
		log.Printf("Failed to encode welcome for %s: %v", s.connID, err)
		return
	}
	s.hub.ToOne(s.connID, payload)
}

// broadcastRoster sends a fresh presence snapshot to every session.
func (s *Session) broadcastRoster() {
	payload, err := marshalEvent(EventUsers, s.presence.All())
	if err != nil {
		log.Printf("Failed to encode roster: %v", err)
		return
	}
	s.hub.ToAll(payload)
}
