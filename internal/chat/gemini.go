package chat

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

const (
	geminiRoleUser  = "user"
	geminiRoleModel = "model"
)

// generator is the part of the genai client the gateway uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGateway answers chat turns with the Gemini API.
type GeminiGateway struct {
	models       generator
	model        string
	timeout      time.Duration
	historyLimit int
}

// GeminiOption configures a GeminiGateway.
type GeminiOption func(*GeminiGateway)

// WithTimeout bounds each completion call. Zero disables the bound.
func WithTimeout(d time.Duration) GeminiOption {
	return func(g *GeminiGateway) { g.timeout = d }
}

// WithHistoryLimit caps how many prior messages are sent as context.
// Zero or less sends the whole transcript.
func WithHistoryLimit(n int) GeminiOption {
	return func(g *GeminiGateway) { g.historyLimit = n }
}

// NewGeminiGateway builds a gateway backed by the Gemini Developer API.
func NewGeminiGateway(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiGateway, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "gemini: create client")
	}
	return newGeminiGateway(client.Models, model, opts...), nil
}

func newGeminiGateway(models generator, model string, opts ...GeminiOption) *GeminiGateway {
	g := &GeminiGateway{models: models, model: model}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Reply sends the prior transcript and prompt as one stateless request.
func (g *GeminiGateway) Reply(ctx context.Context, prompt string, history []Message) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(ctx, g.model, g.contents(prompt, history), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: SystemInstruction}}},
	})
	if err != nil {
		return "", errors.Wrapf(err, "gemini: generate content with %s", g.model)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return EmptyReplyPrompt, nil
	}
	return text, nil
}

// contents maps the transcript to Gemini turns. The conversation has to
// open with a user turn, so assistant messages ahead of the first user
// message (the greeting) are dropped.
func (g *GeminiGateway) contents(prompt string, history []Message) []*genai.Content {
	if g.historyLimit > 0 && len(history) > g.historyLimit {
		history = history[len(history)-g.historyLimit:]
	}
	for len(history) > 0 && history[0].Role != RoleUser {
		history = history[1:]
	}

	out := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := geminiRoleUser
		if m.Role == RoleAssistant {
			role = geminiRoleModel
		}
		out = append(out, &genai.Content{Role: role, Parts: []*genai.Part{{Text: m.Text}}})
	}
	return append(out, &genai.Content{Role: geminiRoleUser, Parts: []*genai.Part{{Text: prompt}}})
}

// responseText joins the text parts of the first candidate, skipping
// thought summaries. Missing pieces yield "".
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
