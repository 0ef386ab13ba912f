// Package conversation holds the state machine behind the chat widget.
//
// A Store owns the transcript, the draft input and the request status. All
// mutations go through its methods, and a Store must only be used from the
// goroutine that owns it (the UI event loop). Results of a gateway call are
// correlated with the submission that caused them through a Handle, so a result
// that arrives after ClearAll is recognized as stale and dropped.
package conversation

import (
	"time"

	"github.com/google/uuid"
	"github.com/longkey1/bookchat/internal/bookchat"
	"github.com/pkg/errors"
)

var (
	// ErrEmptyQuestion rejects a submission that is empty after trimming.
	ErrEmptyQuestion = bookchat.ErrEmptyQuestion
	// ErrRequestInFlight rejects a submission while another one is outstanding.
	ErrRequestInFlight = errors.New("a request is already in flight")
	// ErrStaleResult reports a result for a submission that is no longer pending.
	ErrStaleResult = errors.New("result belongs to a superseded submission")
	// ErrNotAwaiting reports a commit while no request is outstanding.
	ErrNotAwaiting = errors.New("no request is awaiting a response")
)

// Status is the request status of a conversation.
type Status int

const (
	StatusIdle Status = iota
	StatusAwaitingResponse
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAwaitingResponse:
		return "awaiting-response"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Handle identifies one submission.
type Handle struct {
	Generation uint64
	Seq        uint64
}

// State is a copy of everything the widget shows.
type State struct {
	ID         string
	Transcript []bookchat.Message
	Draft      string
	Status     Status
	LastError  string
	Generation uint64
}

// Store is the conversation state machine. The zero value is not usable; use NewStore.
type Store struct {
	id         string
	transcript []bookchat.Message
	draft      string
	status     Status
	lastError  string
	generation uint64
	seq        uint64
	pending    Handle
	now        func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty conversation in the idle state.
func NewStore(opts ...Option) *Store {
	s := &Store{
		id:         uuid.New().String(),
		transcript: []bookchat.Message{},
		status:     StatusIdle,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the conversation ID.
func (s *Store) ID() string {
	return s.id
}

// ShortID returns the first 8 characters of the conversation ID.
func (s *Store) ShortID() string {
	if len(s.id) >= 8 {
		return s.id[:8]
	}
	return s.id
}

// Submit stages text as a provisional user message and marks the conversation as
// awaiting a response. Rejected submissions leave the store untouched.
func (s *Store) Submit(text string) (Handle, error) {
	if s.status == StatusAwaitingResponse {
		return Handle{}, ErrRequestInFlight
	}
	question, err := bookchat.NormalizeQuestion(text)
	if err != nil {
		return Handle{}, err
	}

	s.transcript = append(s.transcript, bookchat.Message{
		Role:      bookchat.RoleUser,
		Content:   question,
		Timestamp: s.now(),
	})
	s.draft = ""
	s.status = StatusAwaitingResponse
	s.lastError = ""
	s.seq++
	s.pending = Handle{Generation: s.generation, Seq: s.seq}
	return s.pending, nil
}

// CommitSuccess appends the assistant answer for the pending submission h.
func (s *Store) CommitSuccess(h Handle, answer string, sources []bookchat.Source) error {
	if err := s.checkPending(h); err != nil {
		return err
	}
	s.transcript = append(s.transcript, bookchat.Message{
		Role:      bookchat.RoleAssistant,
		Content:   answer,
		Timestamp: s.now(),
		Sources:   sources,
	})
	s.status = StatusIdle
	return nil
}

// CommitFailure rolls back the provisional user message of the pending submission h
// and records errText for the error banner.
func (s *Store) CommitFailure(h Handle, errText string) error {
	if err := s.checkPending(h); err != nil {
		return err
	}
	for i := len(s.transcript) - 1; i >= 0; i-- {
		if s.transcript[i].Role == bookchat.RoleUser {
			s.transcript = append(s.transcript[:i], s.transcript[i+1:]...)
			break
		}
	}
	s.status = StatusErrored
	s.lastError = errText
	return nil
}

func (s *Store) checkPending(h Handle) error {
	if h.Generation != s.generation {
		return ErrStaleResult
	}
	if s.status != StatusAwaitingResponse {
		return ErrNotAwaiting
	}
	if h != s.pending {
		return ErrStaleResult
	}
	return nil
}

// DismissError returns an errored conversation to idle. It is a no-op otherwise.
func (s *Store) DismissError() {
	if s.status != StatusErrored {
		return
	}
	s.status = StatusIdle
	s.lastError = ""
}

// ClearAll empties the transcript and starts a new generation. An outstanding
// request is not cancelled; its result will be rejected as stale.
func (s *Store) ClearAll() {
	s.transcript = []bookchat.Message{}
	s.status = StatusIdle
	s.lastError = ""
	s.pending = Handle{}
	s.generation++
}

// SetDraft replaces the unsent input text.
func (s *Store) SetDraft(text string) {
	s.draft = text
}

// Draft returns the unsent input text.
func (s *Store) Draft() string {
	return s.draft
}

// Status returns the request status.
func (s *Store) Status() Status {
	return s.status
}

// LastError returns the banner text; empty unless the status is errored.
func (s *Store) LastError() string {
	return s.lastError
}

// Generation returns the number of times the conversation has been cleared.
func (s *Store) Generation() uint64 {
	return s.generation
}

// Transcript returns a copy of the transcript in display order.
func (s *Store) Transcript() []bookchat.Message {
	out := make([]bookchat.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// MessageCount returns the number of messages in the transcript.
func (s *Store) MessageCount() int {
	return len(s.transcript)
}

// Snapshot returns a copy of the whole conversation state.
func (s *Store) Snapshot() State {
	return State{
		ID:         s.id,
		Transcript: s.Transcript(),
		Draft:      s.draft,
		Status:     s.status,
		LastError:  s.lastError,
		Generation: s.generation,
	}
}
