package transcript

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/youtube"
)

const testVideoID = "dQw4w9WgXcQ"

type fakeStrategy struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Attempt(ctx context.Context, videoID string) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestResolve_FirstStrategyWins(t *testing.T) {
	first := &fakeStrategy{name: "captions", text: "  hello world  "}
	second := &fakeStrategy{name: "innertube", text: "other"}
	third := &fakeStrategy{name: "yt-dlp-module", text: "other"}
	fourth := &fakeStrategy{name: "yt-dlp-binary", text: "other"}

	r, err := NewResolver(logging.Nop(), first, second, third, fourth)
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), testVideoID)
	require.NoError(t, err)

	assert.Equal(t, "hello world", res.Text)
	assert.Equal(t, "captions", res.Strategy)
	assert.Equal(t, testVideoID, res.VideoID)
	assert.Empty(t, res.Failures)

	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls)
	assert.Zero(t, third.calls)
	assert.Zero(t, fourth.calls)
}

func TestResolve_FallsThroughSoftFailures(t *testing.T) {
	metrics.TranscriptStrategyAttempts.Reset()

	first := &fakeStrategy{name: "captions", err: errors.New("captions disabled")}
	second := &fakeStrategy{name: "innertube", text: "   \n"}
	third := &fakeStrategy{name: "yt-dlp-module", text: "from subtitles"}
	fourth := &fakeStrategy{name: "yt-dlp-binary", text: "unused"}

	r, err := NewResolver(nil, first, second, third, fourth)
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), testVideoID)
	require.NoError(t, err)

	assert.Equal(t, "from subtitles", res.Text)
	assert.Equal(t, "yt-dlp-module", res.Strategy)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, "captions", res.Failures[0].Strategy)
	assert.ErrorIs(t, res.Failures[1], ErrEmptyTranscript)
	assert.Zero(t, fourth.calls)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TranscriptStrategyAttempts.WithLabelValues("captions", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TranscriptStrategyAttempts.WithLabelValues("innertube", "empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TranscriptStrategyAttempts.WithLabelValues("yt-dlp-module", "success")))
}

func TestResolve_AllFail(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "debug")

	strategies := []*fakeStrategy{
		{name: "captions", err: errors.New("no captions")},
		{name: "innertube", err: errors.New("missing segments")},
		{name: "yt-dlp-module", err: errors.New("python3 not found")},
		{name: "yt-dlp-binary", text: ""},
	}
	chain := make([]Strategy, len(strategies))
	for i, s := range strategies {
		chain[i] = s
	}

	r, err := NewResolver(logger, chain...)
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), testVideoID)
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrTranscriptUnavailable)
	assert.Contains(t, err.Error(), "captions may be disabled, or all sources are blocked")

	for _, s := range strategies {
		assert.Equal(t, 1, s.calls, s.name)
	}
	assert.Contains(t, buf.String(), "All transcript strategies failed")
	assert.Contains(t, buf.String(), "python3 not found")
}

func TestResolve_InvalidVideoID(t *testing.T) {
	s := &fakeStrategy{name: "captions", text: "x"}
	r, err := NewResolver(nil, s)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, youtube.ErrInvalidReference)
	assert.Zero(t, s.calls)
}

func TestResolve_ContextCanceled(t *testing.T) {
	s := &fakeStrategy{name: "captions", text: "x"}
	r, err := NewResolver(nil, s)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Resolve(ctx, testVideoID)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.calls)
}

func TestResolve_Idempotent(t *testing.T) {
	r, err := NewResolver(nil,
		&fakeStrategy{name: "captions", text: "same text every time"},
		&fakeStrategy{name: "innertube", text: "never"},
	)
	require.NoError(t, err)

	a, err := r.Resolve(context.Background(), testVideoID)
	require.NoError(t, err)
	b, err := r.Resolve(context.Background(), testVideoID)
	require.NoError(t, err)

	assert.Equal(t, a.Text, b.Text)
	assert.Equal(t, a.Strategy, b.Strategy)
}

func TestNewResolver_Empty(t *testing.T) {
	_, err := NewResolver(nil)
	assert.ErrorIs(t, err, ErrNoStrategies)
}

func TestResolverStrategies(t *testing.T) {
	r, err := NewResolver(nil, &fakeStrategy{name: "a"}, &fakeStrategy{name: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, r.Strategies())
}

func TestStrategyError(t *testing.T) {
	inner := errors.New("boom")
	err := &StrategyError{Strategy: "innertube", Err: inner}
	assert.Equal(t, "innertube: boom", err.Error())
	assert.ErrorIs(t, err, inner)
}
