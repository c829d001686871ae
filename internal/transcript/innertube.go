package transcript

import (
	"context"
)

// InnertubeStrategy loads the video through the player API, then asks for
// its transcript panel
type InnertubeStrategy struct {
	source InfoSource
}

// NewInnertubeStrategy creates an InnertubeStrategy
func NewInnertubeStrategy(source InfoSource) *InnertubeStrategy {
	return &InnertubeStrategy{source: source}
}

func (s *InnertubeStrategy) Name() string { return StrategyInnertube }

// Attempt joins the snippet texts of the initial segments. A response missing
// any level down to the segments fails with innertube.ErrMissingSegments.
func (s *InnertubeStrategy) Attempt(ctx context.Context, videoID string) (string, error) {
	info, err := s.source.GetInfo(ctx, videoID)
	if err != nil {
		return "", err
	}

	transcript, err := info.GetTranscript(ctx)
	if err != nil {
		return "", err
	}
	return transcript.Text()
}
