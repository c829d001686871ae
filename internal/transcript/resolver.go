package transcript

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/tracing"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/youtube"
)

// Resolver runs strategies sequentially in a fixed order. The first strategy
// that returns non-blank text wins; later strategies are not invoked.
type Resolver struct {
	strategies []Strategy
	logger     *logging.Logger
}

// NewResolver creates a resolver over an ordered, non-empty strategy chain
func NewResolver(logger *logging.Logger, strategies ...Strategy) (*Resolver, error) {
	if len(strategies) == 0 {
		return nil, ErrNoStrategies
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Resolver{
		strategies: strategies,
		logger:     logger,
	}, nil
}

// Strategies returns the strategy names in the order they are tried
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve returns the transcript of videoID. Strategy failures are logged and
// skipped; if all strategies fail the error is ErrTranscriptUnavailable.
// A nil error always comes with non-empty text.
func (r *Resolver) Resolve(ctx context.Context, videoID string) (*Result, error) {
	if !youtube.IsValidID(videoID) {
		return nil, youtube.ErrInvalidReference
	}

	span, ctx := tracing.StartSpan(ctx, "transcript.resolve")
	tracing.SetTag(span, "video_id", videoID)

	var failures []*StrategyError
	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			tracing.FinishSpan(span, err)
			return nil, err
		}

		text, err := r.attempt(ctx, s, videoID)
		if err != nil {
			failures = append(failures, &StrategyError{Strategy: s.Name(), Err: err})
			continue
		}

		tracing.SetTag(span, "strategy", s.Name())
		tracing.FinishSpan(span, nil)
		metrics.RecordTranscriptResolved(s.Name(), len(text))
		return &Result{
			VideoID:  videoID,
			Text:     text,
			Strategy: s.Name(),
			Failures: failures,
		}, nil
	}

	metrics.RecordTranscriptUnavailable()
	r.logger.WithVideoID(videoID).
		WithField("attempts", len(failures)).
		Warn("All transcript strategies failed")
	tracing.FinishSpan(span, ErrTranscriptUnavailable)
	return nil, ErrTranscriptUnavailable
}

func (r *Resolver) attempt(ctx context.Context, s Strategy, videoID string) (string, error) {
	span, ctx := tracing.StartSpan(ctx, "transcript.strategy."+s.Name())
	start := time.Now()

	text, err := s.Attempt(ctx, videoID)
	text = strings.TrimSpace(text)
	if err == nil && text == "" {
		err = ErrEmptyTranscript
	}
	duration := time.Since(start)

	result := "success"
	switch {
	case errors.Is(err, ErrEmptyTranscript):
		result = "empty"
	case err != nil:
		result = "error"
	}

	metrics.RecordStrategyAttempt(s.Name(), result, duration.Seconds())
	r.logger.LogStrategyAttempt(s.Name(), videoID, len(text), duration, err)
	tracing.FinishSpan(span, err)

	if err != nil {
		return "", err
	}
	return text, nil
}
