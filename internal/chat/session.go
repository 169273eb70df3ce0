// Package chat relays free-text finance questions to the backend query
// service and keeps the ordered conversation for the active session.
package chat

import (
	"context"
	"strings"

	"github.com/trackwise/trackwise-go/internal/logger"
	"github.com/trackwise/trackwise-go/internal/models"
)

// Fixed assistant texts. FallbackAnswer is used when the service returns no
// usable text; ApologyAnswer when the request fails outright.
const (
	FallbackAnswer = "I don't have an answer for that right now."
	ApologyAnswer  = "Sorry, something went wrong. Please try again."
)

// Querier forwards a question to the finance query service.
type Querier interface {
	ChatQuery(ctx context.Context, query string) (string, error)
}

// Session is one chat conversation: an append-only sequence of turns, never
// persisted past the session, read-only with respect to the ledger. A
// Session is not safe for concurrent use; Awaiting lets the caller block a
// second send while one is outstanding.
type Session struct {
	querier  Querier
	turns    []models.ConversationTurn
	awaiting bool
}

// NewSession creates an empty chat session.
func NewSession(querier Querier) *Session {
	return &Session{querier: querier}
}

// Turns returns a copy of the conversation so far, in order.
func (s *Session) Turns() []models.ConversationTurn {
	turns := make([]models.ConversationTurn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

// Awaiting reports whether a question is outstanding.
func (s *Session) Awaiting() bool {
	return s.awaiting
}

// Ask appends the user's turn, forwards the question, and appends exactly
// one assistant turn: the service's answer, the fixed fallback when the
// service returns no usable text, or the fixed apology when the request
// fails. An empty or whitespace-only question is a no-op. Failures surface
// only as the apology turn; the underlying error is logged.
func (s *Session) Ask(ctx context.Context, question string) {
	if strings.TrimSpace(question) == "" {
		return
	}
	if s.awaiting {
		return
	}

	s.awaiting = true
	defer func() { s.awaiting = false }()

	s.turns = append(s.turns, models.ConversationTurn{Role: models.RoleUser, Text: question})

	answer, err := s.querier.ChatQuery(ctx, question)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Chat query failed")
		s.turns = append(s.turns, models.ConversationTurn{Role: models.RoleAssistant, Text: ApologyAnswer})
		return
	}

	if strings.TrimSpace(answer) == "" {
		answer = FallbackAnswer
	}
	s.turns = append(s.turns, models.ConversationTurn{Role: models.RoleAssistant, Text: answer})
}
