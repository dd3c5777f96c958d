package chat

import (
	"context"
	"errors"
)

// Gateway produces an assistant reply for prompt given the transcript that
// preceded it. Implementations are stateless per call.
type Gateway interface {
	Reply(ctx context.Context, prompt string, history []Message) (string, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, prompt string, history []Message) (string, error)

// Reply calls f.
func (f GatewayFunc) Reply(ctx context.Context, prompt string, history []Message) (string, error) {
	return f(ctx, prompt, history)
}

// ErrUnavailable is returned by Unavailable.
var ErrUnavailable = errors.New("chat: assistant not configured")

// Unavailable is wired when no completion service is configured. Every call
// fails, so sessions answer with FailureReply.
var Unavailable Gateway = GatewayFunc(func(context.Context, string, []Message) (string, error) {
	return "", ErrUnavailable
})
