package assistant

import (
	"context"
	"net/http"

	"github.com/anatolykoptev/go-kit/llm"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/config"
)

// Request is a single system+user completion
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer produces a completion for a request
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete implements Completer
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// NewLLMCompleter returns a Completer backed by an OpenAI-compatible chat API
// for the given model.
func NewLLMCompleter(cfg config.LLMConfig, model string) Completer {
	client := llm.NewClient(cfg.APIBase, cfg.APIKey, model,
		llm.WithFallbackKeys(cfg.FallbackKeys),
		llm.WithMaxTokens(cfg.MaxTokens),
		llm.WithTemperature(cfg.SummaryTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)

	return CompleterFunc(func(ctx context.Context, req Request) (string, error) {
		return client.Complete(ctx, req.System, req.Prompt,
			llm.WithChatTemperature(req.Temperature),
			llm.WithChatMaxTokens(req.MaxTokens),
		)
	})
}
