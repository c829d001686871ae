package models

// Placeholder values used when metadata cannot be fetched
const (
	UnknownVideoTitle = "Unknown Title"
)

// VideoMetadata holds the display metadata of a YouTube video
type VideoMetadata struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// PlaceholderMetadata returns the degraded metadata used when the lookup fails
func PlaceholderMetadata(videoID string) VideoMetadata {
	return VideoMetadata{
		VideoID: videoID,
		Title:   UnknownVideoTitle,
	}
}

// Transcript is the plain text transcript of a video and the strategy that produced it
type Transcript struct {
	VideoID  string `json:"video_id"`
	Text     string `json:"text"`
	Strategy string `json:"strategy"`
}
