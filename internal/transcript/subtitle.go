package transcript

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/captions"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/youtube"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/ytdlp"
)

// Temp file prefixes of the two yt-dlp strategies
const (
	ModulePrefix = "yt-summary"
	BinaryPrefix = "yt-summary-wrapper"
)

// ErrNoSubtitleFile is returned when yt-dlp finished without writing subtitles
var ErrNoSubtitleFile = errors.New("no subtitle file written")

// subtitleExts lists accepted subtitle formats in order of preference
var subtitleExts = []string{".vtt", ".ttml", ".srv3"}

// SubtitleStrategy downloads subtitle files with yt-dlp into a temp
// directory, reads the first match and removes what it wrote.
type SubtitleStrategy struct {
	name       string
	downloader ytdlp.Downloader
	tempDir    string
	prefix     string
	logger     *logging.Logger
}

// SubtitleOptions configures a SubtitleStrategy
type SubtitleOptions struct {
	Name    string
	TempDir string
	Prefix  string
	Logger  *logging.Logger
}

// NewSubtitleStrategy creates a SubtitleStrategy over downloader
func NewSubtitleStrategy(downloader ytdlp.Downloader, opts SubtitleOptions) *SubtitleStrategy {
	s := &SubtitleStrategy{
		name:       opts.Name,
		downloader: downloader,
		tempDir:    opts.TempDir,
		prefix:     opts.Prefix,
		logger:     opts.Logger,
	}
	if s.name == "" {
		s.name = downloader.Name()
	}
	if s.tempDir == "" {
		s.tempDir = os.TempDir()
	}
	if s.prefix == "" {
		s.prefix = ModulePrefix
	}
	if s.logger == nil {
		s.logger = logging.Nop()
	}
	return s
}

func (s *SubtitleStrategy) Name() string { return s.name }

func (s *SubtitleStrategy) Attempt(ctx context.Context, videoID string) (string, error) {
	base := s.baseName(videoID)
	defer s.cleanup(base)

	if err := s.downloader.DownloadSubtitles(ctx, youtube.WatchURL(videoID), filepath.Join(s.tempDir, base)); err != nil {
		return "", err
	}

	path, err := s.findSubtitle(base)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read subtitle file: %w", err)
	}

	if strings.HasSuffix(path, ".srv3") {
		items, err := captions.ParseTimedText(data)
		if err != nil {
			return "", err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, item.Text)
		}
		return strings.Join(parts, " "), nil
	}
	return CleanVTT(string(data)), nil
}

// baseName is unique per attempt: video id, millisecond timestamp and a
// random suffix.
func (s *SubtitleStrategy) baseName(videoID string) string {
	return fmt.Sprintf("%s-%s-%d-%s", s.prefix, videoID, time.Now().UnixMilli(), uuid.NewString()[:8])
}

func (s *SubtitleStrategy) findSubtitle(base string) (string, error) {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		return "", fmt.Errorf("scan temp dir: %w", err)
	}

	for _, ext := range subtitleExts {
		for _, e := range entries {
			name := e.Name()
			if !e.IsDir() && strings.HasPrefix(name, base) && strings.HasSuffix(name, ext) {
				return filepath.Join(s.tempDir, name), nil
			}
		}
	}
	return "", ErrNoSubtitleFile
}

// cleanup removes every file written under base. Failures are logged only.
func (s *SubtitleStrategy) cleanup(base string) {
	matches, err := filepath.Glob(filepath.Join(s.tempDir, base+"*"))
	if err != nil {
		return
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.WithStrategy(s.name).WithError(err).
				WithField("path", path).
				Warn("Failed to remove subtitle file")
		}
	}
}
