package bookchat

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single entry of the transcript
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []Source  `json:"sources,omitempty"` // assistant messages only
}

// ParseRole parses "user" or "assistant" (case-insensitive, surrounding space ignored).
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAssistant:
		return RoleAssistant, nil
	default:
		return "", errors.Errorf("invalid role: %q (expected user or assistant)", s)
	}
}

// Label returns the name shown next to the message.
func (r Role) Label() string {
	if r == RoleAssistant {
		return "Assistant"
	}
	return "You"
}
