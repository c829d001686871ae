package transcript

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/captions"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/config"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/innertube"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/ytdlp"
)

// Service bundles the resolver and the metadata fetcher built from config
type Service struct {
	Resolver *Resolver
	Metadata *MetadataFetcher
}

// NewService builds the default chain (captions, innertube, yt-dlp module,
// yt-dlp binary), skipping strategies disabled in cfg.
func NewService(ctx context.Context, cfg config.TranscriptConfig, logger *logging.Logger) (*Service, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	session := innertube.NewSession(innertube.Config{
		BaseURL:    cfg.InnertubeURL,
		HTTPClient: httpClient,
		Language:   cfg.Language,
	})

	ytCfg := ytdlp.NewConfig(cfg.SubtitleLangs, cfg.SubprocessTimeout)

	var strategies []Strategy
	if cfg.EnableCaptions {
		client := captions.NewClient(captions.Config{
			WatchURL:         cfg.WatchURL,
			HTTPClient:       httpClient,
			AllowAnyLanguage: cfg.AllowAnyLanguage,
		})
		strategies = append(strategies, NewCaptionsStrategy(client, cfg.Language))
	}
	if cfg.EnableInnertube {
		strategies = append(strategies, NewInnertubeStrategy(session))
	}
	if cfg.EnableYtDlpPy {
		strategies = append(strategies, NewSubtitleStrategy(ytdlp.NewModule(cfg.PythonPath, *ytCfg), SubtitleOptions{
			Name:    StrategyYtDlpModule,
			TempDir: cfg.TempDir,
			Prefix:  ModulePrefix,
			Logger:  logger,
		}))
	}
	if cfg.EnableYtDlpBin {
		command, path := "", cfg.YtDlpPath
		if !strings.ContainsRune(path, filepath.Separator) {
			command, path = path, ""
		}
		bin := ytdlp.NewBinary(command, path, *ytCfg)
		binaryVersion(ctx, bin, logger)
		strategies = append(strategies, NewSubtitleStrategy(bin, SubtitleOptions{
			Name:    StrategyYtDlpBinary,
			TempDir: cfg.TempDir,
			Prefix:  BinaryPrefix,
			Logger:  logger,
		}))
	}

	resolver, err := NewResolver(logger, strategies...)
	if err != nil {
		return nil, err
	}

	return &Service{
		Resolver: resolver,
		Metadata: NewMetadataFetcher(session, logger),
	}, nil
}

// binaryVersion logs the installed yt-dlp version, or a warning when the
// executable is missing. It returns "" when the version is unknown.
func binaryVersion(ctx context.Context, bin *ytdlp.Binary, logger *logging.Logger) string {
	if logger == nil {
		logger = logging.Nop()
	}
	if err := bin.CheckBinary(); err != nil {
		logger.WithError(err).Warn("yt-dlp binary not found, strategy will fail until installed")
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	version, err := bin.GetVersion(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to read yt-dlp version")
		return ""
	}
	logger.WithField("version", version).Info("yt-dlp binary found")
	return version
}
