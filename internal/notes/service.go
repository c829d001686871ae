// Package notes orchestrates study-note generation: transcript resolution,
// metadata lookup, summarization, persistence and export.
package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/database"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/tracing"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/transcript"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/youtube"
	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

var (
	// ErrExportUnavailable is returned for downloads when object storage is off
	ErrExportUnavailable = errors.New("note export is not available")
	// ErrAsyncDisabled is returned for async requests when no queue is configured
	ErrAsyncDisabled = errors.New("async note generation is not enabled")
	// ErrJobNotFound is returned for unknown, expired or foreign jobs
	ErrJobNotFound = errors.New("job not found")
)

// TranscriptResolver runs the transcript fallback chain
type TranscriptResolver interface {
	Resolve(ctx context.Context, videoID string) (*transcript.Result, error)
}

// MetadataSource looks up video title and thumbnail. It never fails.
type MetadataSource interface {
	Fetch(ctx context.Context, videoID string) models.VideoMetadata
}

// Assistant writes study notes and answers questions about a transcript
type Assistant interface {
	Summarize(ctx context.Context, title, transcript string) (string, error)
	Chat(ctx context.Context, transcript, message string) (string, error)
}

// NoteStore persists notes
type NoteStore interface {
	CreateNote(ctx context.Context, note *models.Note) error
	GetNote(ctx context.Context, id, userID string) (*models.Note, error)
	ListNotes(ctx context.Context, userID string, limit, offset int) ([]*models.NoteSummary, error)
	DeleteNote(ctx context.Context, id, userID string) error
	SetNoteExportKey(ctx context.Context, id, key string) error
}

// Cache holds transcripts, metadata and job state between requests
type Cache interface {
	GetTranscript(ctx context.Context, videoID string) (*models.Transcript, error)
	SetTranscript(ctx context.Context, t *models.Transcript) error
	GetMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, error)
	SetMetadata(ctx context.Context, meta models.VideoMetadata) error
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	SetJob(ctx context.Context, job *models.Job) error
	AcquireLock(ctx context.Context, resource string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, resource string) error
}

// Exporter writes notes to object storage
type Exporter interface {
	ExportNote(ctx context.Context, note *models.Note) (string, error)
	GetURL(ctx context.Context, objectName string) (string, error)
	Delete(ctx context.Context, objectName string) error
}

// Deps are the collaborators of a Service. Cache, Exporter, Publisher and
// Notifier are optional.
type Deps struct {
	Resolver  TranscriptResolver
	Metadata  MetadataSource
	Assistant Assistant
	Store     NoteStore
	Cache     Cache
	Exporter  Exporter
	Publisher JobPublisher
	Notifier  Notifier
	Logger    *logging.Logger
}

// Service generates and serves study notes
type Service struct {
	Deps
}

// NewService validates deps and builds a Service
func NewService(deps Deps) (*Service, error) {
	switch {
	case deps.Resolver == nil:
		return nil, errors.New("notes: transcript resolver is required")
	case deps.Metadata == nil:
		return nil, errors.New("notes: metadata source is required")
	case deps.Assistant == nil:
		return nil, errors.New("notes: assistant is required")
	case deps.Store == nil:
		return nil, errors.New("notes: note store is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	return &Service{Deps: deps}, nil
}

// Transcript returns the transcript for a video reference, consulting the
// cache before running the strategy chain.
func (s *Service) Transcript(ctx context.Context, ref string) (*models.Transcript, error) {
	videoID, err := youtube.ExtractVideoID(ref)
	if err != nil {
		return nil, err
	}
	return s.transcript(ctx, videoID)
}

func (s *Service) transcript(ctx context.Context, videoID string) (*models.Transcript, error) {
	logger := s.Logger.WithVideoID(videoID)

	if s.Cache != nil {
		cached, err := s.Cache.GetTranscript(ctx, videoID)
		if err != nil {
			logger.WithError(err).Warn("Transcript cache lookup failed")
		} else if cached != nil && cached.Text != "" {
			return cached, nil
		}
	}

	result, err := s.Resolver.Resolve(ctx, videoID)
	if err != nil {
		return nil, err
	}

	t := &models.Transcript{
		VideoID:  result.VideoID,
		Text:     result.Text,
		Strategy: result.Strategy,
	}

	if s.Cache != nil {
		if err := s.Cache.SetTranscript(ctx, t); err != nil {
			logger.WithError(err).Warn("Failed to cache transcript")
		}
	}
	return t, nil
}

func (s *Service) metadata(ctx context.Context, videoID string) models.VideoMetadata {
	if s.Cache != nil {
		if cached, err := s.Cache.GetMetadata(ctx, videoID); err == nil && cached != nil {
			return *cached
		}
	}

	meta := s.Metadata.Fetch(ctx, videoID)

	if s.Cache != nil {
		if err := s.Cache.SetMetadata(ctx, meta); err != nil {
			s.Logger.WithVideoID(videoID).WithError(err).Warn("Failed to cache metadata")
		}
	}
	return meta
}

// CreateNote generates study notes for a video and stores them for userID.
// Metadata lookup and transcript resolution run concurrently; only the
// transcript can fail the request.
func (s *Service) CreateNote(ctx context.Context, userID, videoRef string) (*models.Note, error) {
	note, err := s.generate(ctx, userID, videoRef)
	if err != nil {
		return nil, err
	}
	metrics.RecordNoteCreated("sync")
	return note, nil
}

func (s *Service) generate(ctx context.Context, userID, videoRef string) (*models.Note, error) {
	videoID, err := youtube.ExtractVideoID(videoRef)
	if err != nil {
		return nil, err
	}

	span, ctx := tracing.StartSpan(ctx, "notes.generate")
	tracing.SetTag(span, "video_id", videoID)

	var (
		meta models.VideoMetadata
		t    *models.Transcript
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta = s.metadata(gctx, videoID)
		return nil
	})
	g.Go(func() error {
		var err error
		t, err = s.transcript(gctx, videoID)
		return err
	})
	if err := g.Wait(); err != nil {
		tracing.FinishSpan(span, err)
		return nil, err
	}

	summary, err := s.Assistant.Summarize(ctx, meta.Title, t.Text)
	if err != nil {
		tracing.FinishSpan(span, err)
		return nil, err
	}

	note := &models.Note{
		UserID:       userID,
		VideoID:      videoID,
		VideoURL:     youtube.WatchURL(videoID),
		VideoTitle:   meta.Title,
		ThumbnailURL: meta.ThumbnailURL,
		Summary:      summary,
		Transcript:   t.Text,
		Strategy:     t.Strategy,
	}
	if err := s.Store.CreateNote(ctx, note); err != nil {
		tracing.FinishSpan(span, err)
		return nil, fmt.Errorf("failed to save note: %w", err)
	}

	s.export(ctx, note)

	s.Logger.WithUserID(userID).WithVideoID(videoID).
		WithFields(map[string]interface{}{"note_id": note.ID, "strategy": note.Strategy}).
		Info("Study notes created")
	tracing.FinishSpan(span, nil)
	return note, nil
}

// export writes the markdown copy; failures only cost the download link
func (s *Service) export(ctx context.Context, note *models.Note) {
	if s.Exporter == nil {
		return
	}

	key, err := s.Exporter.ExportNote(ctx, note)
	if err != nil {
		s.Logger.WithError(err).WithField("note_id", note.ID).Warn("Failed to export note")
		return
	}
	if err := s.Store.SetNoteExportKey(ctx, note.ID, key); err != nil {
		s.Logger.WithError(err).WithField("note_id", note.ID).Warn("Failed to record export key")
		return
	}
	note.ExportKey = key
}

// GetNote returns one of the user's notes
func (s *Service) GetNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	return s.Store.GetNote(ctx, noteID, userID)
}

// ListNotes returns the user's note history, newest first
func (s *Service) ListNotes(ctx context.Context, userID string, limit, offset int) ([]*models.NoteSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Store.ListNotes(ctx, userID, limit, offset)
}

// DeleteNote removes a note and, best-effort, its exported copy
func (s *Service) DeleteNote(ctx context.Context, userID, noteID string) error {
	note, err := s.Store.GetNote(ctx, noteID, userID)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteNote(ctx, noteID, userID); err != nil {
		return err
	}

	if s.Exporter != nil && note.ExportKey != "" {
		if err := s.Exporter.Delete(ctx, note.ExportKey); err != nil {
			s.Logger.WithError(err).WithField("note_id", noteID).Warn("Failed to delete exported note")
		}
	}
	return nil
}

// DownloadURL returns a presigned link to the note's markdown export,
// exporting it first if an earlier export failed.
func (s *Service) DownloadURL(ctx context.Context, userID, noteID string) (string, error) {
	if s.Exporter == nil {
		return "", ErrExportUnavailable
	}

	note, err := s.Store.GetNote(ctx, noteID, userID)
	if err != nil {
		return "", err
	}

	if note.ExportKey == "" {
		s.export(ctx, note)
		if note.ExportKey == "" {
			return "", ErrExportUnavailable
		}
	}
	return s.Exporter.GetURL(ctx, note.ExportKey)
}

// Chat answers a question about the video behind one of the user's notes
func (s *Service) Chat(ctx context.Context, userID, noteID, message string) (*models.ChatReply, error) {
	note, err := s.Store.GetNote(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	reply, err := s.Assistant.Chat(ctx, note.Transcript, message)
	if err != nil {
		return nil, err
	}
	return &models.ChatReply{NoteID: note.ID, Message: reply}, nil
}

// IsNotFound reports whether err means the requested note does not exist
// for this user
func IsNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound) || errors.Is(err, ErrJobNotFound)
}
