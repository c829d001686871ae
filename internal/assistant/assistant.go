// Package assistant turns transcripts into markdown study notes and answers
// questions about a note's transcript.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/tracing"
)

var (
	// ErrCompletion wraps failures of the completion backend
	ErrCompletion = errors.New("assistant: completion failed")
	// ErrEmptyResponse is returned when the model answered with no text
	ErrEmptyResponse = errors.New("assistant: empty response from model")
	// ErrEmptyTranscript is returned when there is nothing to summarize
	ErrEmptyTranscript = errors.New("transcript content is empty")
	// ErrNoTranscript is returned when chatting about a note without transcript
	ErrNoTranscript = errors.New("no transcript available for this video")
	// ErrEmptyMessage is returned for blank chat messages
	ErrEmptyMessage = errors.New("message is required")
)

// Options configures prompts and sampling
type Options struct {
	Model              string
	ChatModel          string
	MaxTokens          int
	SummaryTemperature float64
	ChatTemperature    float64
	MaxTranscriptChars int
	MaxChatContext     int
}

// Assistant generates study notes and chat replies
type Assistant struct {
	summarizer Completer
	chatter    Completer
	opts       Options
	logger     *logging.Logger
}

// New creates an Assistant. chat may be nil, in which case summary and chat
// share one completer.
func New(summary, chat Completer, opts Options, logger *logging.Logger) *Assistant {
	if chat == nil {
		chat = summary
	}
	if opts.ChatModel == "" {
		opts.ChatModel = opts.Model
	}
	if opts.MaxTranscriptChars <= 0 {
		opts.MaxTranscriptChars = 50000
	}
	if opts.MaxChatContext <= 0 {
		opts.MaxChatContext = 30000
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Assistant{
		summarizer: summary,
		chatter:    chat,
		opts:       opts,
		logger:     logger,
	}
}

// Summarize produces markdown study notes for a transcript. Transcripts longer
// than MaxTranscriptChars are cut and marked as truncated.
func (a *Assistant) Summarize(ctx context.Context, title, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyTranscript
	}

	var prompt strings.Builder
	if title != "" {
		fmt.Fprintf(&prompt, "Video title: %s\n\n", title)
	}
	prompt.WriteString("Here is the transcript:\n\n")
	prompt.WriteString(Truncate(transcript, a.opts.MaxTranscriptChars, truncationMarker))

	return a.complete(ctx, "summarize", a.opts.Model, a.summarizer, Request{
		System:      summarySystemPrompt,
		Prompt:      prompt.String(),
		Temperature: a.opts.SummaryTemperature,
		MaxTokens:   a.opts.MaxTokens,
	})
}

// Chat answers message using only the first MaxChatContext characters of
// the transcript as context.
func (a *Assistant) Chat(ctx context.Context, transcript, message string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrNoTranscript
	}
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	return a.complete(ctx, "chat", a.opts.ChatModel, a.chatter, Request{
		System:      fmt.Sprintf(chatSystemPromptTemplate, Truncate(transcript, a.opts.MaxChatContext, "")),
		Prompt:      message,
		Temperature: a.opts.ChatTemperature,
		MaxTokens:   a.opts.MaxTokens,
	})
}

func (a *Assistant) complete(ctx context.Context, operation, model string, c Completer, req Request) (string, error) {
	span, ctx := tracing.StartSpan(ctx, "assistant."+operation)
	tracing.SetTag(span, "model", model)
	start := time.Now()

	reply, err := c.Complete(ctx, req)
	reply = strings.TrimSpace(reply)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrCompletion, err)
	} else if reply == "" {
		err = ErrEmptyResponse
	}

	duration := time.Since(start)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordLLMRequest(operation, status, duration.Seconds())
	a.logger.LogLLMCall(operation, model, len(req.System)+len(req.Prompt), len(reply), duration, err)
	tracing.FinishSpan(span, err)

	if err != nil {
		return "", err
	}
	return reply, nil
}

// Truncate cuts s to at most max runes and appends marker when it did
func Truncate(s string, max int, marker string) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + marker
		}
		n++
	}
	return s
}
