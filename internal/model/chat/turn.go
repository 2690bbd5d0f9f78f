package chat

import (
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who produced a turn.
type Speaker string

const (
	User      Speaker = "user"
	Assistant Speaker = "assistant"
)

// modelRole is the speaker tag hosted models use for their own replies.
const modelRole = "model"

// TranslateRole maps a provider speaker tag to the label shown by chat clients.
// Only "model" is rewritten; every other tag passes through unchanged.
func TranslateRole(role string) string {
	if role == modelRole {
		return string(Assistant)
	}
	return role
}

// SpeakerFromRole resolves a provider tag to a Speaker.
func SpeakerFromRole(role string) (Speaker, bool) {
	switch Speaker(TranslateRole(role)) {
	case User:
		return User, true
	case Assistant:
		return Assistant, true
	default:
		return "", false
	}
}

// Turn is one speaker's contribution to a session. Turns are never mutated once
// appended to a History.
type Turn struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Speaker    Speaker   `json:"speaker"`
	Text       string    `json:"text"`
	OutOfScope bool      `json:"outOfScope,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewTurn stamps a turn with a fresh identifier and creation time.
func NewTurn(sessionID string, speaker Speaker, text string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Speaker:   speaker,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}
