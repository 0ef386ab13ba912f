// Package widget binds a conversation Store to a Gateway.
//
// A turn is split in three steps so that the store is only ever touched from the
// owning event loop:
//
//	p, err := ctrl.Submit()      // event loop: stage the draft
//	outcome := p.Resolve(ctx)    // any goroutine: one gateway call
//	err = ctrl.Apply(outcome)    // event loop: commit or roll back
package widget

import (
	"context"

	"github.com/longkey1/bookchat/internal/bookchat"
	"github.com/longkey1/bookchat/internal/bookchat/conversation"
	"github.com/longkey1/bookchat/internal/bookchat/gateway"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Controller is one mounted widget instance.
type Controller struct {
	store     *conversation.Store
	gateway   bookchat.Gateway
	logger    zerolog.Logger
	storeOpts []conversation.Option
}

// Option configures a Controller.
type Option func(*Controller)

// WithStoreOptions passes options to the underlying conversation store.
func WithStoreOptions(opts ...conversation.Option) Option {
	return func(c *Controller) {
		c.storeOpts = append(c.storeOpts, opts...)
	}
}

// WithLogger replaces the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// New mounts a widget with an empty conversation.
func New(gw bookchat.Gateway, opts ...Option) *Controller {
	c := &Controller{
		gateway: gw,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.store = conversation.NewStore(c.storeOpts...)
	c.logger = c.logger.With().
		Str("component", "widget").
		Str("conversation", c.store.ShortID()).
		Logger()
	return c
}

// Pending is a staged submission waiting for its gateway call.
type Pending struct {
	Handle   conversation.Handle
	Question string
	gateway  bookchat.Gateway
}

// Outcome is the result of resolving a Pending submission.
type Outcome struct {
	Handle   conversation.Handle
	Question string
	Reply    *bookchat.Reply
	Err      error
}

// Resolve performs the gateway call. It does not touch the store and may run on
// any goroutine.
func (p *Pending) Resolve(ctx context.Context) Outcome {
	reply, err := p.gateway.Send(ctx, p.Question)
	if err == nil && reply == nil {
		err = errors.New("gateway returned no reply")
	}
	return Outcome{
		Handle:   p.Handle,
		Question: p.Question,
		Reply:    reply,
		Err:      err,
	}
}

// SetDraft replaces the unsent input.
func (c *Controller) SetDraft(text string) {
	c.store.SetDraft(text)
}

// Submit stages the current draft. It returns conversation.ErrEmptyQuestion or
// conversation.ErrRequestInFlight when the submission is rejected; the state is
// then unchanged.
func (c *Controller) Submit() (*Pending, error) {
	draft := c.store.Draft()
	h, err := c.store.Submit(draft)
	if err != nil {
		c.logger.Debug().Err(err).Str("status", c.store.Status().String()).Msg("Submission rejected")
		return nil, err
	}
	question, _ := bookchat.NormalizeQuestion(draft)
	c.logger.Debug().
		Uint64("generation", h.Generation).
		Uint64("seq", h.Seq).
		Msg("Question staged")
	return &Pending{Handle: h, Question: question, gateway: c.gateway}, nil
}

// Apply commits the outcome of a submission. Gateway failures roll back the staged
// question and set the error banner; they are not returned. The returned error is
// conversation.ErrStaleResult when the conversation was cleared in the meantime.
func (c *Controller) Apply(o Outcome) error {
	logger := c.logger.With().
		Uint64("generation", o.Handle.Generation).
		Uint64("seq", o.Handle.Seq).
		Logger()

	var err error
	if o.Err != nil {
		err = c.store.CommitFailure(o.Handle, gateway.UserMessage(o.Err))
		if err == nil {
			logger.Warn().Err(o.Err).Msg("Question failed, rolled back")
		}
	} else {
		err = c.store.CommitSuccess(o.Handle, o.Reply.Answer, o.Reply.Sources)
		if err == nil {
			logger.Debug().Int("messages", c.store.MessageCount()).Msg("Answer committed")
		}
	}

	if err != nil {
		logger.Debug().Err(err).Msg("Discarding result")
	}
	return err
}

// Ask runs a whole turn synchronously and returns the assistant message, or the
// rejection or gateway error.
func (c *Controller) Ask(ctx context.Context, text string) (bookchat.Message, error) {
	c.store.SetDraft(text)
	p, err := c.Submit()
	if err != nil {
		return bookchat.Message{}, err
	}

	o := p.Resolve(ctx)
	if err := c.Apply(o); err != nil {
		return bookchat.Message{}, err
	}
	if o.Err != nil {
		return bookchat.Message{}, o.Err
	}

	transcript := c.store.Transcript()
	return transcript[len(transcript)-1], nil
}

// DismissError hides the error banner.
func (c *Controller) DismissError() {
	c.store.DismissError()
}

// ClearAll resets the conversation. A request in flight is left to finish and
// its result is discarded by Apply.
func (c *Controller) ClearAll() {
	c.store.ClearAll()
	c.logger.Debug().Uint64("generation", c.store.Generation()).Msg("Conversation cleared")
}

// State returns a copy of the conversation state.
func (c *Controller) State() conversation.State {
	return c.store.Snapshot()
}

// Status returns the request status.
func (c *Controller) Status() conversation.Status {
	return c.store.Status()
}

// ShortID returns the short conversation ID.
func (c *Controller) ShortID() string {
	return c.store.ShortID()
}
