package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextMessageStampsAuthorAttributes(t *testing.T) {
	author := testParticipant("c1", "Ann")
	msg := NewTextMessage("hello", author)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, KindText, msg.Kind)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, "c1", msg.AuthorID)
	assert.Equal(t, "Ann", msg.AuthorName)
	assert.Equal(t, "🦊", msg.Avatar)
	assert.Equal(t, "#FF6B6B", msg.Color)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestNewImageMessageCarriesURL(t *testing.T) {
	msg := NewImageMessage("/uploads/pic.png", testParticipant("c1", "Ann"))

	assert.Equal(t, KindImage, msg.Kind)
	assert.Equal(t, "/uploads/pic.png", msg.Content)
}

func TestNewSystemMessageHasNoAuthor(t *testing.T) {
	msg := NewSystemMessage("Ann joined the chat")

	assert.Equal(t, KindSystem, msg.Kind)
	assert.Empty(t, msg.AuthorID)
	assert.Empty(t, msg.AuthorName)
	assert.Empty(t, msg.Avatar)
}

func TestMessageIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		msg := NewSystemMessage("x")
		require.False(t, seen[msg.ID])
		seen[msg.ID] = true
	}
}

func TestNewParticipantFallbackName(t *testing.T) {
	participant := NewParticipant("c9beqna2vkl7", "", "", "")
	assert.Equal(t, "Userc9be", participant.DisplayName)

	short := NewParticipant("ab", "", "", "")
	assert.Equal(t, "Userab", short.DisplayName)
}

func TestNewParticipantKeepsProvidedIdentity(t *testing.T) {
	participant := NewParticipant("c1", "Ann", "🦊", "#FF6B6B")

	assert.Equal(t, "Ann", participant.DisplayName)
	assert.Equal(t, "🦊", participant.Avatar)
	assert.Equal(t, "#FF6B6B", participant.Color)
	assert.False(t, participant.JoinedAt.IsZero())
}

func TestNewParticipantAssignsFromPalettes(t *testing.T) {
	participant := NewParticipant("c1", "Ann", "", "")

	assert.Contains(t, avatarPalette, participant.Avatar)
	assert.Contains(t, colorPalette, participant.Color)
}
