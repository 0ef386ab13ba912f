// Package gateway implements the client for the book answer service.
//
// Every call issues exactly one HTTP request and never retries. Failures are
// reported as *Error values whose Kind tells transport problems, server errors
// and unusable response bodies apart.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/longkey1/bookchat/internal/bookchat"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultEndpoint is the chat endpoint of a locally running answer service.
	DefaultEndpoint = "http://localhost:8000/api/chat"
	// DefaultTimeout bounds a call when no WithTimeout option is given.
	DefaultTimeout = 30 * time.Second

	// RequestIDHeader carries a per-call ID for correlating client and server logs.
	RequestIDHeader = "X-Request-ID"

	tracerName   = "github.com/longkey1/bookchat/internal/bookchat/gateway"
	maxBodyBytes = 1 << 20
	maxDetailLen = 200
)

// chatRequest is the request body of the chat endpoint
type chatRequest struct {
	Question string `json:"question"`
}

// chatResponse is the part of the chat endpoint response the widget uses.
// Fields are kept raw so a malformed optional field does not hide a good answer.
type chatResponse struct {
	Answer  json.RawMessage `json:"answer"`
	ChatID  json.RawMessage `json:"chat_id"`
	Sources json.RawMessage `json:"sources"`
}

// Client implements bookchat.Gateway over HTTP.
type Client struct {
	endpoint   string
	healthURL  string
	timeout    time.Duration
	httpClient *http.Client
	tracer     trace.Tracer
	logger     zerolog.Logger
}

var _ bookchat.Gateway = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every call. Expiry is reported as a KindTransport error.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithHealthURL sets the URL used by Ping.
func WithHealthURL(u string) Option {
	return func(c *Client) {
		c.healthURL = u
	}
}

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// WithLogger replaces the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the chat endpoint. An empty endpoint means DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		timeout:  DefaultTimeout,
		tracer:   otel.Tracer(tracerName),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	c.logger = c.logger.With().Str("component", "gateway").Logger()
	return c
}

// Endpoint returns the chat endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send posts question to the chat endpoint and returns the parsed reply.
func (c *Client) Send(ctx context.Context, question string) (*bookchat.Reply, error) {
	q, err := bookchat.NormalizeQuestion(question)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "gateway.Send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodPost),
			attribute.String("url.full", c.endpoint),
		),
	)
	defer span.End()

	reply, err := c.send(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("bookchat.sources", len(reply.Sources)))
	return reply, nil
}

func (c *Client) send(ctx context.Context, question string) (*bookchat.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	jsonData, err := json.Marshal(chatRequest{Question: question})
	if err != nil {
		return nil, errors.Wrap(err, "error marshaling request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Detail: "creating request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := c.prepare(ctx, req)

	logger := c.logger.With().Str("request_id", requestID).Logger()
	logger.Debug().Str("endpoint", c.endpoint).Int("question_len", len(question)).Msg("Sending question")

	start := time.Now()
	status, body, err := c.do(ctx, req)
	if err != nil {
		logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("Question failed")
		return nil, err
	}

	reply, err := decodeReply(body)
	if err != nil {
		logger.Warn().Err(err).Int("status", status).Msg("Unusable answer")
		return nil, err
	}
	logger.Debug().
		Int("status", status).
		Dur("elapsed", time.Since(start)).
		Int("sources", len(reply.Sources)).
		Msg("Received answer")
	return reply, nil
}

// Ping checks that the answer service is reachable and healthy.
func (c *Client) Ping(ctx context.Context) error {
	if c.healthURL == "" {
		return errors.New("health endpoint is not configured")
	}

	ctx, span := c.tracer.Start(ctx, "gateway.Ping",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodGet),
			attribute.String("url.full", c.healthURL),
		),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		err = &Error{Kind: KindTransport, Detail: "creating request", Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	req.Header.Set("Accept", "application/json")
	c.prepare(ctx, req)

	if _, _, err := c.do(ctx, req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// prepare sets the request ID and trace propagation headers and returns the request ID.
func (c *Client) prepare(ctx context.Context, req *http.Request) string {
	requestID := uuid.New().String()
	req.Header.Set(RequestIDHeader, requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("bookchat.request_id", requestID))
	return requestID
}

// do sends req and returns the status code and body of a 2xx response.
func (c *Client) do(ctx context.Context, req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, transportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, nil, &Error{
			Kind:       KindServer,
			StatusCode: resp.StatusCode,
			Detail:     truncate(strings.TrimSpace(string(body))),
		}
	}
	return resp.StatusCode, body, nil
}

func transportError(ctx context.Context, err error) *Error {
	e := &Error{Kind: KindTransport, Err: err}
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		e.timeout = true
		e.Detail = "request timed out"
	}
	return e
}

func decodeReply(body []byte) (*bookchat.Reply, error) {
	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &Error{Kind: KindMalformed, Detail: "response is not a JSON object", Err: err}
	}
	if len(result.Answer) == 0 {
		return nil, &Error{Kind: KindMalformed, Detail: "answer field is missing"}
	}

	var answer string
	if err := json.Unmarshal(result.Answer, &answer); err != nil {
		return nil, &Error{Kind: KindMalformed, Detail: "answer field is not a string", Err: err}
	}
	if strings.TrimSpace(answer) == "" {
		return nil, &Error{Kind: KindMalformed, Detail: "answer field is empty"}
	}

	reply := &bookchat.Reply{Answer: answer}

	// Optional fields are best effort.
	if len(result.ChatID) > 0 {
		_ = json.Unmarshal(result.ChatID, &reply.ChatID)
	}
	if len(result.Sources) > 0 {
		var sources []bookchat.Source
		if err := json.Unmarshal(result.Sources, &sources); err == nil {
			reply.Sources = sources
		}
	}
	return reply, nil
}

func truncate(s string) string {
	if len(s) <= maxDetailLen {
		return s
	}
	return s[:maxDetailLen] + "..."
}
