package chat

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionGreets(t *testing.T) {
	s := NewSession(Unavailable)
	assert.Equal(t, []Message{{Role: RoleAssistant, Text: Greeting}}, s.Transcript())
	assert.Equal(t, StateIdle, s.State())
}

func TestSubmitSuccess(t *testing.T) {
	var gotPrompt string
	var gotHistory []Message
	s := NewSession(GatewayFunc(func(_ context.Context, prompt string, history []Message) (string, error) {
		gotPrompt, gotHistory = prompt, history
		return "Try the Nordic Table Orb.", nil
	}))

	reply, err := s.Submit(context.Background(), "Which lamp for reading?")
	require.NoError(t, err)
	assert.Equal(t, Message{Role: RoleAssistant, Text: "Try the Nordic Table Orb."}, reply)

	assert.Equal(t, "Which lamp for reading?", gotPrompt)
	assert.Equal(t, []Message{{Role: RoleAssistant, Text: Greeting}}, gotHistory, "history excludes the new turn")

	assert.Equal(t, []Message{
		{Role: RoleAssistant, Text: Greeting},
		{Role: RoleUser, Text: "Which lamp for reading?"},
		{Role: RoleAssistant, Text: "Try the Nordic Table Orb."},
	}, s.Transcript())
	assert.Equal(t, StateIdle, s.State())
}

func TestSubmitRejectsBlankText(t *testing.T) {
	var calls int32
	s := NewSession(GatewayFunc(func(context.Context, string, []Message) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "x", nil
	}))

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := s.Submit(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Len(t, s.Transcript(), 1)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestSubmitEmptyReplyUsesPrompt(t *testing.T) {
	s := NewSession(GatewayFunc(func(context.Context, string, []Message) (string, error) {
		return "  ", nil
	}))
	reply, err := s.Submit(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, EmptyReplyPrompt, reply.Text)
}

func TestSubmitGatewayFailure(t *testing.T) {
	tests := []struct {
		name string
		gw   Gateway
	}{
		{"error", GatewayFunc(func(context.Context, string, []Message) (string, error) {
			return "", errors.New("network down")
		})},
		{"panic", GatewayFunc(func(context.Context, string, []Message) (string, error) {
			panic("client exploded")
		})},
		{"unavailable", Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(tt.gw)
			reply, err := s.Submit(context.Background(), "hi")
			require.NoError(t, err)
			assert.Equal(t, Message{Role: RoleAssistant, Text: FailureReply}, reply)

			tr := s.Transcript()
			require.Len(t, tr, 3)
			assert.Equal(t, RoleUser, tr[1].Role)
			assert.Equal(t, Message{Role: RoleAssistant, Text: FailureReply}, tr[2])
			assert.Equal(t, StateIdle, s.State())
		})
	}
}

func TestSubmitWhilePendingIsIgnored(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	s := NewSession(GatewayFunc(func(context.Context, string, []Message) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "done", nil
	}))

	done := make(chan Message, 1)
	go func() {
		reply, err := s.Submit(context.Background(), "first")
		assert.NoError(t, err)
		done <- reply
	}()

	require.Eventually(t, func() bool { return s.State() == StateAwaitingReply }, time.Second, time.Millisecond)

	_, err := s.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrReplyPending)
	assert.Len(t, s.Transcript(), 2, "greeting and first user turn only")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	close(release)
	select {
	case reply := <-done:
		assert.Equal(t, "done", reply.Text)
	case <-time.After(time.Second):
		t.Fatal("submit did not return")
	}
	assert.Equal(t, StateIdle, s.State())
	assert.Len(t, s.Transcript(), 3)

	_, err = s.Submit(context.Background(), "third")
	assert.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestTranscriptIsACopy(t *testing.T) {
	s := NewSession(Unavailable)
	tr := s.Transcript()
	tr[0].Text = "edited"
	assert.Equal(t, Greeting, s.Transcript()[0].Text)
}
