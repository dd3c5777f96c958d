// Package chat implements the shopping assistant: a per-session transcript
// with a single outstanding request, and the adapter to the completion
// service that answers it.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"homiepro-storefront/internal/logger"
)

// Session is one browser session's chat. At most one gateway call is in
// flight at a time; a submission made while one is outstanding is dropped.
type Session struct {
	gateway Gateway

	mu         sync.Mutex
	transcript []Message
	pending    bool
}

// NewSession returns an idle session whose transcript holds the greeting.
func NewSession(gw Gateway) *Session {
	return &Session{
		gateway:    gw,
		transcript: []Message{{Role: RoleAssistant, Text: Greeting}},
	}
}

// Submit records text as a user turn, asks the gateway for a reply and
// records that as an assistant turn. It blocks until the reply is recorded
// and returns it. Gateway failures are answered with FailureReply and are
// never returned; the only errors are ErrEmptyMessage and ErrReplyPending,
// in which case nothing was recorded and the gateway was not called.
func (s *Session) Submit(ctx context.Context, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return Message{}, ErrReplyPending
	}
	history := make([]Message, len(s.transcript))
	copy(history, s.transcript)
	s.transcript = append(s.transcript, Message{Role: RoleUser, Text: text})
	s.pending = true
	s.mu.Unlock()

	reply := s.resolve(ctx, text, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, reply)
	s.pending = false
	return reply, nil
}

func (s *Session) resolve(ctx context.Context, text string, history []Message) Message {
	reply, err := s.call(ctx, text, history)
	if err != nil {
		logger.Warnf("chat gateway failed: %v", err)
		return Message{Role: RoleAssistant, Text: FailureReply}
	}
	if strings.TrimSpace(reply) == "" {
		return Message{Role: RoleAssistant, Text: EmptyReplyPrompt}
	}
	return Message{Role: RoleAssistant, Text: reply}
}

func (s *Session) call(ctx context.Context, text string, history []Message) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gateway panic: %v", r)
		}
	}()
	return s.gateway.Reply(ctx, text, history)
}

// Transcript returns a copy of the messages exchanged so far.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// State reports whether a reply is outstanding.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return StateAwaitingReply
	}
	return StateIdle
}
