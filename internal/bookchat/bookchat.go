// Package bookchat provides the core types of the book assistant widget.
// This package defines the Message transcript entry and the Gateway interface that
// the answer service client (gateway package) implements.
package bookchat

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// ErrEmptyQuestion is returned when a question is empty or whitespace only.
var ErrEmptyQuestion = errors.New("question is empty")

// Source is a book passage the answer service used to build an answer.
type Source struct {
	ChunkID      string  `json:"chunk_id,omitempty"`
	ChapterTitle string  `json:"chapter_title"`
	SectionTitle string  `json:"section_title,omitempty"`
	Score        float64 `json:"score"`
	TextPreview  string  `json:"text_preview,omitempty"`
}

// Label returns "Chapter > Section", or just the chapter when no section is known.
func (s Source) Label() string {
	if s.SectionTitle == "" {
		return s.ChapterTitle
	}
	return s.ChapterTitle + " > " + s.SectionTitle
}

// Reply is a successful answer from the answer service.
type Reply struct {
	Answer  string
	ChatID  string
	Sources []Source
}

// Gateway sends one question to the answer service.
//
// Example usage:
//
//	gw := gateway.NewClient("http://localhost:8000/api/chat")
//	reply, err := gw.Send(ctx, "What is Physical AI?")
type Gateway interface {
	// Send issues exactly one request for question and waits for the reply.
	// It never retries.
	Send(ctx context.Context, question string) (*Reply, error)
}

// NormalizeQuestion trims question and reports ErrEmptyQuestion when nothing is left.
func NormalizeQuestion(question string) (string, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return "", ErrEmptyQuestion
	}
	return q, nil
}
