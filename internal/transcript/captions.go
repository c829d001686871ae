package transcript

import (
	"context"
	"strings"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/captions"
)

// CaptionFetcher is implemented by *captions.Client
type CaptionFetcher interface {
	FetchTranscript(ctx context.Context, videoID, lang string) ([]captions.Item, error)
}

// CaptionsStrategy reads the caption track published on the watch page
type CaptionsStrategy struct {
	fetcher  CaptionFetcher
	language string
}

// NewCaptionsStrategy creates a CaptionsStrategy for lang
func NewCaptionsStrategy(fetcher CaptionFetcher, lang string) *CaptionsStrategy {
	if lang == "" {
		lang = "en"
	}
	return &CaptionsStrategy{fetcher: fetcher, language: lang}
}

func (s *CaptionsStrategy) Name() string { return StrategyCaptions }

func (s *CaptionsStrategy) Attempt(ctx context.Context, videoID string) (string, error) {
	items, err := s.fetcher.FetchTranscript(ctx, videoID, s.language)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		if text := strings.TrimSpace(item.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
