// Package transcript resolves the plain-text transcript of a YouTube video by
// trying an ordered chain of retrieval strategies until one yields text.
package transcript

import (
	"context"
	"errors"
	"fmt"
)

// Strategy names, also used as metric and log labels
const (
	StrategyCaptions    = "captions"
	StrategyInnertube   = "innertube"
	StrategyYtDlpModule = "yt-dlp-module"
	StrategyYtDlpBinary = "yt-dlp-binary"
)

var (
	// ErrTranscriptUnavailable is returned when every strategy failed
	ErrTranscriptUnavailable = errors.New("could not retrieve transcript from any source: the video may have no captions, captions may be disabled, or all sources are blocked")
	// ErrEmptyTranscript marks a strategy that completed but produced no text
	ErrEmptyTranscript = errors.New("strategy returned an empty transcript")
	// ErrNoStrategies is returned when a resolver is built with an empty chain
	ErrNoStrategies = errors.New("transcript: no strategies configured")
)

// Strategy is one way of obtaining a transcript. Attempt returns the raw
// transcript text or an error; both are soft failures for the resolver.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, videoID string) (string, error)
}

// StrategyError records why a single strategy failed
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// Result is a resolved transcript
type Result struct {
	VideoID  string
	Text     string
	Strategy string
	// Failures holds the strategies tried before the winning one
	Failures []*StrategyError
}
