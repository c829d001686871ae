package innertube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const playerJSON = `{
  "playabilityStatus": {"status": "OK"},
  "videoDetails": {
    "videoId": "dQw4w9WgXcQ",
    "title": "Never Gonna Give You Up",
    "author": "Rick Astley",
    "lengthSeconds": "213",
    "thumbnail": {"thumbnails": [
      {"url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg", "width": 120, "height": 90},
      {"url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", "width": 1280, "height": 720},
      {"url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg", "width": 480, "height": 360}
    ]}
  }
}`

const nextJSON = `{"engagementPanels":[{"engagementPanelSectionListRenderer":{"content":{"continuationItemRenderer":{"continuationEndpoint":{"getTranscriptEndpoint":{"params":"CgtkUXc0dzlXZ1hjURIOQ2dBU0FtVnVHZ0E%3D"}}}}}}]}`

const getTranscriptJSON = `{"actions":[{"updateEngagementPanelAction":{"content":{"transcriptRenderer":{"content":{"transcriptSearchPanelRenderer":{"body":{"transcriptSegmentListRenderer":{"initialSegments":[
  {"transcriptSectionHeaderRenderer":{"startMs":"0"}},
  {"transcriptSegmentRenderer":{"startMs":"0","endMs":"1500","snippet":{"runs":[{"text":"We're no "},{"text":"strangers"}]}}},
  {"transcriptSegmentRenderer":{"startMs":"1500","endMs":"3000","snippet":{"runs":[{"text":"to love"}]}}}
]}}}}}}}}]}`

func newTestSession(t *testing.T, handler http.Handler) *Session {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSession(Config{BaseURL: srv.URL, RetryWait: time.Millisecond})
}

func TestGetInfo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/player", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "false", r.URL.Query().Get("prettyPrint"))
		assert.Equal(t, "3", r.Header.Get("X-Youtube-Client-Name"))
		assert.Equal(t, androidUserAgent, r.Header.Get("User-Agent"))

		var req playerRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "dQw4w9WgXcQ", req.VideoID)
		assert.Equal(t, "ANDROID", req.Context.Client.ClientName)
		assert.Equal(t, "en", req.Context.Client.Hl)

		fmt.Fprint(w, playerJSON)
	})
	s := newTestSession(t, mux)

	info, err := s.GetInfo(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "Never Gonna Give You Up", info.BasicInfo.Title)
	assert.Equal(t, "dQw4w9WgXcQ", info.BasicInfo.ID)
	require.Len(t, info.BasicInfo.Thumbnail, 3)
	assert.Equal(t, 1280, info.BasicInfo.Thumbnail[0].Width, "best thumbnail first")
	assert.Equal(t, 120, info.BasicInfo.Thumbnail[2].Width)
}

func TestGetInfo_Unavailable(t *testing.T) {
	s := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`)
	}))

	_, err := s.GetInfo(context.Background(), "xxxxxxxxxxx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVideoUnavailable))
	assert.Contains(t, err.Error(), "Video unavailable")
}

func TestGetInfo_RetriesServerErrors(t *testing.T) {
	var calls int32
	s := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, playerJSON)
	}))

	info, err := s.GetInfo(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Never Gonna Give You Up", info.BasicInfo.Title)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetInfo_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	s := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"bad"}`)
	}))

	_, err := s.GetInfo(context.Background(), "dQw4w9WgXcQ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetTranscript(t *testing.T) {
	var visitor atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/player", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, playerJSON)
	})
	mux.HandleFunc("/next", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.Header.Get("X-Youtube-Client-Name"))
		visitor.Store(r.Header.Get("X-Goog-Visitor-Id"))
		assert.Len(t, r.Header.Get("X-Goog-Visitor-Id"), 11)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dQw4w9WgXcQ", body["videoId"])
		fmt.Fprint(w, nextJSON)
	})
	mux.HandleFunc("/get_transcript", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, visitor.Load(), r.Header.Get("X-Goog-Visitor-Id"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CgtkUXc0dzlXZ1hjURIOQ2dBU0FtVnVHZ0E=", body["params"], "params are URL-decoded")
		fmt.Fprint(w, getTranscriptJSON)
	})
	s := newTestSession(t, mux)

	info, err := s.GetInfo(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)

	transcript, err := info.GetTranscript(context.Background())
	require.NoError(t, err)

	segments, err := transcript.Segments()
	require.NoError(t, err)
	require.Len(t, segments, 3)
	assert.Nil(t, segments[0].Snippet)
	assert.Equal(t, "1500", segments[1].EndMs)

	text, err := transcript.Text()
	require.NoError(t, err)
	assert.Equal(t, "We're no strangers to love", text)
}

func TestGetTranscript_EndpointMissing(t *testing.T) {
	s := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"contents":{}}`)
	}))

	_, err := s.GetTranscript(context.Background(), "dQw4w9WgXcQ")
	assert.True(t, errors.Is(err, ErrTranscriptEndpointMissing))
}

func TestGetTranscript_NoPanel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/next", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, nextJSON)
	})
	mux.HandleFunc("/get_transcript", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"actions":[{"openPopupAction":{}}]}`)
	})
	s := newTestSession(t, mux)

	transcript, err := s.GetTranscript(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Nil(t, transcript.Transcript)

	_, err = transcript.Text()
	assert.True(t, errors.Is(err, ErrMissingSegments))
}

func TestSegments_MissingLevels(t *testing.T) {
	tests := []struct {
		name string
		info *TranscriptInfo
	}{
		{"nil info", nil},
		{"no transcript", &TranscriptInfo{}},
		{"no content", &TranscriptInfo{Transcript: &Transcript{}}},
		{"no body", &TranscriptInfo{Transcript: &Transcript{Content: &Content{}}}},
		{"no segments", &TranscriptInfo{Transcript: &Transcript{Content: &Content{Body: &Body{}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.info.Segments()
			assert.ErrorIs(t, err, ErrMissingSegments)
		})
	}
}

func TestToTranscriptInfo_PartialResponse(t *testing.T) {
	var resp getTranscriptResponse
	require.NoError(t, json.Unmarshal([]byte(`{"actions":[{"updateEngagementPanelAction":{"content":{"transcriptRenderer":{"content":{"transcriptSearchPanelRenderer":{}}}}}}]}`), &resp))

	info := resp.toTranscriptInfo()
	require.NotNil(t, info.Transcript)
	require.NotNil(t, info.Transcript.Content)
	assert.Nil(t, info.Transcript.Content.Body)

	_, err := info.Segments()
	assert.ErrorIs(t, err, ErrMissingSegments)
}

func TestGenerateVisitorData(t *testing.T) {
	v := generateVisitorData()
	assert.Len(t, v, 11)
	assert.Regexp(t, `^[A-Za-z0-9_-]{11}$`, v)
}

func TestInfo_WithoutSession(t *testing.T) {
	info := NewInfo(BasicInfo{ID: "dQw4w9WgXcQ"}, nil)
	_, err := info.GetTranscript(context.Background())
	assert.True(t, errors.Is(err, ErrMissingSegments))
}
