// Package chat holds the domain model for the Parlor chat service: messages,
// participants, the presence registry, and the durable message log.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message kinds. System messages carry narration (joins, leaves) and have no
// author fields.
const (
	KindText   = "text"
	KindImage  = "image"
	KindSystem = "system"
)

// Message is an immutable persisted chat record. Author attributes are
// denormalized copies captured at send time; they are never updated if the
// author later changes identity or disconnects.
type Message struct {
	ID         string    `json:"id"`
	Kind       string    `json:"type"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"userId,omitempty"`
	AuthorName string    `json:"username,omitempty"`
	Avatar     string    `json:"avatar,omitempty"`
	Color      string    `json:"color,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewTextMessage builds a text message stamped with the author's current
// attributes. All messages must be built through these factories so the
// denormalization happens in exactly one place.
func NewTextMessage(content string, author Participant) *Message {
	return newAuthoredMessage(KindText, content, author)
}

// NewImageMessage builds an image message whose content is the public URL of
// an already-uploaded image.
func NewImageMessage(url string, author Participant) *Message {
	return newAuthoredMessage(KindImage, url, author)
}

// NewSystemMessage builds an authorless narration message.
func NewSystemMessage(content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Kind:      KindSystem,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func newAuthoredMessage(kind, content string, author Participant) *Message {
	return &Message{
		ID:         uuid.NewString(),
		Kind:       kind,
		Content:    content,
		AuthorID:   author.ConnectionID,
		AuthorName: author.DisplayName,
		Avatar:     author.Avatar,
		Color:      author.Color,
		Timestamp:  time.Now(),
	}
}
