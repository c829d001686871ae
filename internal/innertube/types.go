package innertube

// ANDROID /player request and response

type playerRequest struct {
	VideoID        string        `json:"videoId"`
	Context        playerContext `json:"context"`
	RacyCheckOk    bool          `json:"racyCheckOk"`
	ContentCheckOk bool          `json:"contentCheckOk"`
}

type playerContext struct {
	Client androidClient `json:"client"`
}

type androidClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type playerResponse struct {
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails *struct {
		VideoID   string `json:"videoId"`
		Title     string `json:"title"`
		Thumbnail struct {
			Thumbnails []Thumbnail `json:"thumbnails"`
		} `json:"thumbnail"`
	} `json:"videoDetails"`
}

// WEB client context for /next and /get_transcript

type webClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	VisitorData   string `json:"visitorData,omitempty"`
	Hl            string `json:"hl,omitempty"`
	Gl            string `json:"gl,omitempty"`
}

// /get_transcript response. Every level is a pointer so an absent panel
// decodes to nil instead of a zero value.

type getTranscriptResponse struct {
	Actions []struct {
		UpdateEngagementPanelAction *struct {
			Content *struct {
				TranscriptRenderer *rawTranscriptRenderer `json:"transcriptRenderer"`
			} `json:"content"`
		} `json:"updateEngagementPanelAction"`
	} `json:"actions"`
}

type rawTranscriptRenderer struct {
	Content *struct {
		TranscriptSearchPanelRenderer *struct {
			Body *struct {
				TranscriptSegmentListRenderer *struct {
					InitialSegments []rawSegment `json:"initialSegments"`
				} `json:"transcriptSegmentListRenderer"`
			} `json:"body"`
		} `json:"transcriptSearchPanelRenderer"`
	} `json:"content"`
}

type rawSegment struct {
	TranscriptSegmentRenderer *struct {
		StartMs string `json:"startMs"`
		EndMs   string `json:"endMs"`
		Snippet *struct {
			Runs []struct {
				Text string `json:"text"`
			} `json:"runs"`
		} `json:"snippet"`
	} `json:"transcriptSegmentRenderer"`
}
