package transcript

import (
	"context"
	"strings"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/innertube"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

// InfoSource is implemented by *innertube.Session
type InfoSource interface {
	GetInfo(ctx context.Context, videoID string) (*innertube.Info, error)
}

// MetadataFetcher loads title and thumbnail for a video
type MetadataFetcher struct {
	source InfoSource
	logger *logging.Logger
}

// NewMetadataFetcher creates a MetadataFetcher
func NewMetadataFetcher(source InfoSource, logger *logging.Logger) *MetadataFetcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &MetadataFetcher{source: source, logger: logger}
}

// Fetch never fails: lookup errors degrade to the placeholder title and an
// empty thumbnail.
func (f *MetadataFetcher) Fetch(ctx context.Context, videoID string) models.VideoMetadata {
	info, err := f.source.GetInfo(ctx, videoID)
	if err != nil {
		f.logger.WithVideoID(videoID).WithError(err).Warn("Metadata lookup failed, using placeholder")
		return models.PlaceholderMetadata(videoID)
	}

	meta := models.PlaceholderMetadata(videoID)
	if title := strings.TrimSpace(info.BasicInfo.Title); title != "" {
		meta.Title = title
	}
	if len(info.BasicInfo.Thumbnail) > 0 {
		meta.ThumbnailURL = info.BasicInfo.Thumbnail[0].URL
	}
	return meta
}
