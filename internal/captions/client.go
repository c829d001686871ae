// Package captions retrieves YouTube caption tracks through the public watch
// page: the embedded player response lists the caption tracks and each track
// points at a timed-text document.
package captions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultWatchURL  = "https://www.youtube.com/watch"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	playerResponseMarker = "ytInitialPlayerResponse = "

	maxWatchPageBytes = 6 * 1024 * 1024
	maxTimedTextBytes = 2 * 1024 * 1024
)

var (
	// ErrNoCaptions is returned when the video exposes no caption tracks
	ErrNoCaptions = errors.New("captions: video has no caption tracks")
	// ErrLanguageUnavailable is returned when no track matches the requested language
	ErrLanguageUnavailable = errors.New("captions: no track in requested language")
	// ErrPlayerResponseMissing is returned when the watch page carries no player response
	ErrPlayerResponseMissing = errors.New("captions: player response not found in watch page")
)

// Item is one caption cue
type Item struct {
	Text     string
	Start    float64
	Duration float64
}

// Config holds client configuration
type Config struct {
	WatchURL   string
	HTTPClient *http.Client
	UserAgent  string

	// AllowAnyLanguage falls back to the first usable track when none matches
	AllowAnyLanguage bool
}

// Client fetches caption items for a video
type Client struct {
	watchURL   string
	httpClient *http.Client
	userAgent  string
	anyLang    bool
}

// NewClient creates a caption client
func NewClient(cfg Config) *Client {
	c := &Client{
		watchURL:   cfg.WatchURL,
		httpClient: cfg.HTTPClient,
		userAgent:  cfg.UserAgent,
		anyLang:    cfg.AllowAnyLanguage,
	}
	if c.watchURL == "" {
		c.watchURL = defaultWatchURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	return c
}

// FetchTranscript returns the caption items of the track matching lang
func (c *Client) FetchTranscript(ctx context.Context, videoID, lang string) ([]Item, error) {
	page, err := c.fetchWatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}

	player, err := extractPlayerResponse(page)
	if err != nil {
		return nil, err
	}

	if player.Captions == nil || len(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoCaptions, player.PlayabilityStatus.Reason)
		}
		return nil, ErrNoCaptions
	}

	track, ok := pickTrack(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, lang, c.anyLang)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLanguageUnavailable, lang)
	}

	return c.fetchTimedText(ctx, track.BaseURL)
}

func (c *Client) fetchWatchPage(ctx context.Context, videoID string) ([]byte, error) {
	u, err := url.Parse(c.watchURL)
	if err != nil {
		return nil, fmt.Errorf("invalid watch URL: %w", err)
	}
	q := u.Query()
	q.Set("v", videoID)
	q.Set("hl", "en")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWatchPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}
	return body, nil
}

func (c *Client) fetchTimedText(ctx context.Context, baseURL string) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTimedTextBytes))
	if err != nil {
		return nil, fmt.Errorf("read timedtext: %w", err)
	}

	return ParseTimedText(body)
}

// extractPlayerResponse locates the inline script that assigns the player
// response and decodes the JSON object that follows the assignment.
func extractPlayerResponse(page []byte) (*playerResponse, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}

	var raw []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, playerResponseMarker)
		if idx < 0 {
			return true
		}
		raw = extractJSONObject([]byte(text[idx+len(playerResponseMarker):]))
		return raw == nil
	})
	if raw == nil {
		return nil, ErrPlayerResponseMissing
	}

	var player playerResponse
	if err := json.Unmarshal(raw, &player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	return &player, nil
}

// extractJSONObject returns the balanced {...} object at the start of data,
// skipping braces that appear inside string literals.
func extractJSONObject(data []byte) []byte {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	depth := 0
	inString := false
	escaped := false
	for i, b := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return data[:i+1]
			}
		}
	}
	return nil
}

// needsPoToken reports whether a caption track URL requires a proof-of-origin
// token; those tracks only load in a browser.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickTrack prefers a manual track in lang, then an auto-generated one, then
// any regional variant of lang (en-US, en-GB for "en"). With anyLang set the
// first usable track is the last resort.
func pickTrack(tracks []captionTrack, lang string, anyLang bool) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}

	for _, t := range usable {
		if t.LanguageCode == lang && t.Kind != "asr" {
			return t, true
		}
	}
	for _, t := range usable {
		if t.LanguageCode == lang {
			return t, true
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, lang+"-") {
			return t, true
		}
	}
	if anyLang && len(usable) > 0 {
		return usable[0], true
	}
	return captionTrack{}, false
}
