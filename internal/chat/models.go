package chat

import "errors"

// Role identifies who authored a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// State is the chat session's request state.
type State string

const (
	StateIdle          State = "idle"
	StateAwaitingReply State = "awaiting-reply"
)

const (
	// Greeting opens every new transcript.
	Greeting = "Hi! I'm HomiePro Assistant. Looking for interior design advice or need help choosing a lamp? Ask me anything!"

	// EmptyReplyPrompt stands in for a reply that came back without text.
	EmptyReplyPrompt = "I'm here to help! Could you tell me more about what you're looking for?"

	// FailureReply is appended when the gateway call fails for any reason.
	FailureReply = "I'm having a bit of trouble connecting to my design library. How else can I help you today?"

	// SystemInstruction is the persona sent with every completion request.
	SystemInstruction = `You are 'HomiePro Assistant', a professional interior designer and shopping expert for an upscale furniture, lamp, and bedding store called HomiePro.
Your goal is to help users choose products and give design advice.
Be professional, elegant, and helpful.
Refer to HomiePro's categories: Lamps, Bedsheets, and Furniture.
Keep responses concise and helpful.`
)

var (
	// ErrEmptyMessage rejects blank submissions before anything is recorded.
	ErrEmptyMessage = errors.New("chat: empty message")
	// ErrReplyPending rejects a submission while a reply is outstanding.
	ErrReplyPending = errors.New("chat: reply pending")
)
