// Package ytdlp wraps the yt-dlp downloader, either as the Python module
// (python3 -m yt_dlp) or as the standalone executable, for subtitle-only
// downloads.
package ytdlp

import (
	"strings"
	"time"
)

// Config holds the yt-dlp flags used for subtitle downloads
type Config struct {
	SkipDownload        bool
	WriteSubs           bool
	WriteAutoSubs       bool
	SubLangs            []string
	NoCheckCertificates bool
	NoWarnings          bool
	PreferFreeFormats   bool

	// Timeout bounds a single run; zero leaves it to the caller's context
	Timeout time.Duration
}

// NewConfig returns the subtitle-only configuration
func NewConfig(langs []string, timeout time.Duration) *Config {
	if len(langs) == 0 {
		langs = []string{"en", "en-US"}
	}
	return &Config{
		SkipDownload:        true,
		WriteSubs:           true,
		WriteAutoSubs:       true,
		SubLangs:            langs,
		NoCheckCertificates: true,
		NoWarnings:          true,
		PreferFreeFormats:   true,
		Timeout:             timeout,
	}
}

// BuildArgs builds the yt-dlp argument list. output is the --output template
// and may be empty.
func (c *Config) BuildArgs(url, output string) []string {
	args := make([]string, 0, 12)
	args = append(args, url)
	if c.SkipDownload {
		args = append(args, "--skip-download")
	}
	if c.WriteSubs {
		args = append(args, "--write-sub")
	}
	if c.WriteAutoSubs {
		args = append(args, "--write-auto-sub")
	}
	if len(c.SubLangs) > 0 {
		args = append(args, "--sub-lang", strings.Join(c.SubLangs, ","))
	}
	if output != "" {
		args = append(args, "--output", output)
	}
	if c.NoCheckCertificates {
		args = append(args, "--no-check-certificates")
	}
	if c.NoWarnings {
		args = append(args, "--no-warnings")
	}
	if c.PreferFreeFormats {
		args = append(args, "--prefer-free-formats")
	}
	return args
}
