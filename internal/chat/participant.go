package chat

import (
	"math/rand"
	"time"
)

// Participant is the identity bound to one live connection. It exists only in
// the presence registry (plus a write-only snapshot side-table) and is
// discarded on disconnect.
type Participant struct {
	ConnectionID string    `json:"id"`
	DisplayName  string    `json:"username"`
	Avatar       string    `json:"avatar"`
	Color        string    `json:"color"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// Fixed palettes for participants that join without picking an avatar or
// accent color. Collisions between online participants are allowed.
var (
	avatarPalette = []string{
		"😀", "😎", "🤖", "👻", "🦊", "🐱", "🐶", "🐼", "🦁", "🐯",
		"🐨", "🐸", "🐵", "🦄", "🐲",
	}
	colorPalette = []string{
		"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
		"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
	}
)

// NewParticipant builds the participant record for a joining connection.
// An empty display name falls back to a deterministic name derived from the
// connection id; missing avatar or color is drawn from the fixed palettes.
func NewParticipant(connID, name, avatar, color string) Participant {
	if name == "" {
		name = FallbackName(connID)
	}
	if avatar == "" {
		avatar = avatarPalette[rand.Intn(len(avatarPalette))]
	}
	if color == "" {
		color = colorPalette[rand.Intn(len(colorPalette))]
	}
	return Participant{
		ConnectionID: connID,
		DisplayName:  name,
		Avatar:       avatar,
		Color:        color,
		JoinedAt:     time.Now(),
	}
}

// FallbackName derives the display name used when a join request carries an
// empty one: "User" plus a short prefix of the connection id.
func FallbackName(connID string) string {
	prefix := connID
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return "User" + prefix
}
