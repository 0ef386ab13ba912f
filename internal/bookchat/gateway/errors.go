package gateway

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a gateway failure.
type Kind int

const (
	// KindTransport covers network failures and timeouts.
	KindTransport Kind = iota + 1
	// KindServer covers non-2xx responses.
	KindServer
	// KindMalformed covers 2xx responses without a usable answer.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed-response"
	default:
		return "unknown"
	}
}

// Banner texts shown to the user.
const (
	transportMessage = "Failed to send message: the answer service could not be reached"
	timeoutMessage   = "Failed to send message: the answer service did not respond in time"
	serverMessage    = "Failed to get response from server"
	malformedMessage = "Received an invalid response from server"
	genericMessage   = "Failed to send message"
)

// Error is returned by Client for every failed call.
type Error struct {
	Kind       Kind
	StatusCode int    // KindServer only
	Detail     string // for logs, never shown to the user
	Err        error
	timeout    bool
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call hit the request deadline.
func (e *Error) Timeout() bool {
	return e.timeout
}

// UserMessage returns the text for the error banner.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindTransport:
		if e.timeout {
			return timeoutMessage
		}
		return transportMessage
	case KindServer:
		return serverMessage
	case KindMalformed:
		return malformedMessage
	default:
		return genericMessage
	}
}

// UserMessage returns the banner text for any error returned by a gateway.
func UserMessage(err error) string {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.UserMessage()
	}
	return genericMessage
}

// IsKind reports whether err is a gateway error of kind k.
func IsKind(err error, k Kind) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Kind == k
}
