// Package innertube talks to YouTube's internal player API the way the
// mobile and web clients do. The ANDROID client resolves basic video details;
// the WEB client walks the engagement panel to the transcript endpoint.
package innertube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sort"
	"time"
)

const (
	defaultBaseURL = "https://www.youtube.com/youtubei/v1"

	webClientVersion     = "2.20250222.10.00"
	androidClientVersion = "20.10.38"
	androidUserAgent     = "com.google.android.youtube/" + androidClientVersion + " (Linux; U; Android 11) gzip"
	webUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	maxResponseBytes = 3 * 1024 * 1024
)

var (
	// ErrVideoUnavailable is returned when the player response carries no video details
	ErrVideoUnavailable = errors.New("innertube: video unavailable")
	// ErrTranscriptEndpointMissing is returned when /next exposes no transcript panel
	ErrTranscriptEndpointMissing = errors.New("innertube: getTranscriptEndpoint not found in engagement panels")
)

// Config holds session configuration
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Language   string
	Region     string
	MaxRetries int
	RetryWait  time.Duration
}

// Session is a reusable, stateless-per-call innertube client
type Session struct {
	baseURL    string
	httpClient *http.Client
	hl         string
	gl         string
	retry      retryPolicy
}

// NewSession creates an innertube session
func NewSession(cfg Config) *Session {
	s := &Session{
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		hl:         cfg.Language,
		gl:         cfg.Region,
		retry:      defaultRetryPolicy,
	}
	if s.baseURL == "" {
		s.baseURL = defaultBaseURL
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	if s.hl == "" {
		s.hl = "en"
	}
	if s.gl == "" {
		s.gl = "US"
	}
	if cfg.MaxRetries > 0 {
		s.retry.maxRetries = cfg.MaxRetries
	}
	if cfg.RetryWait > 0 {
		s.retry.initialWait = cfg.RetryWait
	}
	return s
}

// Thumbnail is one thumbnail rendition
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// BasicInfo holds the video details exposed by the player endpoint.
// Thumbnail is ordered best-first.
type BasicInfo struct {
	ID        string
	Title     string
	Thumbnail []Thumbnail
}

// TranscriptFetcher requests the transcript panel of a video
type TranscriptFetcher interface {
	GetTranscript(ctx context.Context, videoID string) (*TranscriptInfo, error)
}

// Info is the result of GetInfo; it keeps the session so the transcript can
// be requested for the same video.
type Info struct {
	BasicInfo BasicInfo

	transcripts TranscriptFetcher
}

// NewInfo builds an Info whose transcript is requested from fetcher
func NewInfo(basic BasicInfo, fetcher TranscriptFetcher) *Info {
	return &Info{BasicInfo: basic, transcripts: fetcher}
}

// GetInfo loads basic video details through the ANDROID player endpoint
func (s *Session) GetInfo(ctx context.Context, videoID string) (*Info, error) {
	payload := playerRequest{
		VideoID: videoID,
		Context: playerContext{
			Client: androidClient{
				ClientName:        "ANDROID",
				ClientVersion:     androidClientVersion,
				AndroidSdkVersion: 30,
				Hl:                s.hl,
				Gl:                s.gl,
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	}

	data, err := s.post(ctx, "/player", payload, func(req *http.Request) {
		req.Header.Set("User-Agent", androidUserAgent)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", androidClientVersion)
	})
	if err != nil {
		return nil, err
	}

	var resp playerResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}

	if resp.VideoDetails == nil {
		if resp.PlayabilityStatus != nil && resp.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrVideoUnavailable, resp.PlayabilityStatus.Status, resp.PlayabilityStatus.Reason)
		}
		return nil, ErrVideoUnavailable
	}

	details := resp.VideoDetails
	thumbs := append([]Thumbnail(nil), details.Thumbnail.Thumbnails...)
	sort.SliceStable(thumbs, func(i, j int) bool {
		return thumbs[i].Width > thumbs[j].Width
	})

	id := details.VideoID
	if id == "" {
		id = videoID
	}

	return &Info{
		BasicInfo: BasicInfo{
			ID:        id,
			Title:     details.Title,
			Thumbnail: thumbs,
		},
		transcripts: s,
	}, nil
}

// GetTranscript requests the transcript panel of the video: /next yields the
// transcript endpoint params, /get_transcript returns the segments.
func (i *Info) GetTranscript(ctx context.Context) (*TranscriptInfo, error) {
	if i.transcripts == nil {
		return nil, ErrMissingSegments
	}
	return i.transcripts.GetTranscript(ctx, i.BasicInfo.ID)
}

// GetTranscript is GetTranscript without a prior GetInfo call
func (s *Session) GetTranscript(ctx context.Context, videoID string) (*TranscriptInfo, error) {
	visitorData := generateVisitorData()
	webCtx := s.webContext(visitorData)

	nextData, err := s.postWeb(ctx, "/next", map[string]any{
		"videoId": videoID,
		"context": webCtx,
	}, visitorData)
	if err != nil {
		return nil, fmt.Errorf("next: %w", err)
	}

	params, err := extractTranscriptParams(nextData)
	if err != nil {
		return nil, err
	}

	data, err := s.postWeb(ctx, "/get_transcript", map[string]any{
		"context": webCtx,
		"params":  params,
	}, visitorData)
	if err != nil {
		return nil, fmt.Errorf("get_transcript: %w", err)
	}

	var resp getTranscriptResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode transcript response: %w", err)
	}
	return resp.toTranscriptInfo(), nil
}

func (s *Session) webContext(visitorData string) map[string]any {
	return map[string]any{
		"client": webClient{
			ClientName:    "WEB",
			ClientVersion: webClientVersion,
			VisitorData:   visitorData,
			Hl:            s.hl,
			Gl:            s.gl,
		},
		"user":    map[string]bool{"enableSafetyMode": false},
		"request": map[string]bool{"useSsl": true},
	}
}

func (s *Session) postWeb(ctx context.Context, endpoint string, payload any, visitorData string) ([]byte, error) {
	return s.post(ctx, endpoint, payload, func(req *http.Request) {
		req.Header.Set("User-Agent", webUserAgent)
		req.Header.Set("X-Youtube-Client-Name", "1")
		req.Header.Set("X-Youtube-Client-Version", webClientVersion)
		req.Header.Set("X-Goog-Visitor-Id", visitorData)
		req.Header.Set("Origin", "https://www.youtube.com")
		req.Header.Set("Referer", "https://www.youtube.com/")
	})
}

func (s *Session) post(ctx context.Context, endpoint string, payload any, decorate func(*http.Request)) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := s.retry.do(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint+"?prettyPrint=false", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "*/*")
		decorate(req)
		return s.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("innertube %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("innertube %s: HTTP %d: %s", endpoint, resp.StatusCode, snippet)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}

// generateVisitorData creates a random 11-char visitor ID
func generateVisitorData() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, 11)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))] //nolint:gosec // not a secret
	}
	return string(b)
}
